package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// RoleName is the normalized role identifier carried in session tokens
// and checked by the role middleware.
type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleUser  RoleName = "user"
)

// Valid reports whether r is one of the seeded roles.
func (r RoleName) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Permission names attached to the seeded roles.
const (
	PermViewProfile        = "view_profile"
	PermEditProfile        = "edit_profile"
	PermBookTickets        = "book_tickets"
	PermCancelBooking      = "cancel_booking"
	PermViewBookingHistory = "view_booking_history"
	PermManageMovies       = "manage_movies"
	PermManageTheaters     = "manage_theaters"
	PermManageUsers        = "manage_users"
	PermViewReports        = "view_reports"
	PermAssignMovies       = "assign_movies"
)

// Role is a named permission bundle stored in the `roles` collection.
//
// Fields:
//  ID          – document identifier referenced by users.role.
//  Name        – unique role name (admin or user).
//  Permissions – permission names granted by the role.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        RoleName           `bson:"name" json:"name"`
	Permissions []string           `bson:"permissions" json:"permissions"`
}

// DefaultRoles returns the roles seeded into an empty roles collection.
func DefaultRoles() []Role {
	return []Role{
		{
			Name: RoleAdmin,
			Permissions: []string{
				PermManageUsers,
				PermManageMovies,
				PermManageTheaters,
				PermViewReports,
				PermAssignMovies,
			},
		},
		{
			Name: RoleUser,
			Permissions: []string{
				PermViewProfile,
				PermEditProfile,
				PermBookTickets,
				PermCancelBooking,
				PermViewBookingHistory,
			},
		},
	}
}
