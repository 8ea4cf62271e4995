package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an application user stored in the `users` collection.
// The password hash and the pending verification token never leave the
// service layer; handlers respond with UserView instead.
//
// Fields:
//  ID                – document identifier.
//  Name              – display name.
//  Email             – unique, lower-cased login address.
//  Phone             – contact number, digits only.
//  Password          – bcrypt hash.
//  ProfilePicture    – public path of the uploaded picture, if any.
//  IsVerified        – set once the email verification link was followed.
//  VerificationToken – token mailed at registration, cleared on verification.
//  Role              – reference into the roles collection.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Email             string             `bson:"email"`
	Phone             string             `bson:"phone"`
	Password          string             `bson:"password"`
	ProfilePicture    string             `bson:"profilePicture,omitempty"`
	IsVerified        bool               `bson:"isVerified"`
	VerificationToken string             `bson:"verificationToken,omitempty"`
	Role              primitive.ObjectID `bson:"role"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

// UserView is the public representation of a user with the role
// reference resolved to its name.
type UserView struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
	IsVerified     bool               `json:"isVerified"`
	Role           RoleName           `json:"role"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// View builds the public representation of u.
func (u *User) View(role RoleName) UserView {
	return UserView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		Role:           role,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
