package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusBooked    BookingStatus = "Booked"
	StatusCancelled BookingStatus = "Cancelled"
)

// Booking is a ticket purchase in the `bookings` collection. User, Movie
// and Theater are plain references; nothing cascades when they go away.
type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Movie           primitive.ObjectID `bson:"movie" json:"movie"`
	Theater         primitive.ObjectID `bson:"theater" json:"theater"`
	ShowTime        string             `bson:"showTime" json:"showTime"`
	NumberOfTickets int                `bson:"numberOfTickets" json:"numberOfTickets"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          BookingStatus      `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BookingView is a booking joined with display fields of the user, movie
// and theater it references. The summaries keep the referenced id even
// when the document behind it was deleted.
type BookingView struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	User            UserSummary        `bson:"user" json:"user"`
	Movie           MovieSummary       `bson:"movie" json:"movie"`
	Theater         TheaterSummary     `bson:"theater" json:"theater"`
	ShowTime        string             `bson:"showTime" json:"showTime"`
	NumberOfTickets int                `bson:"numberOfTickets" json:"numberOfTickets"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          BookingStatus      `bson:"status" json:"status"`
	ScreenNumber    int                `bson:"-" json:"screenNumber,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// ResolveScreen fills ScreenNumber from the theater's assignment list.
func (v *BookingView) ResolveScreen() {
	v.ScreenNumber = ScreenFor(v.Theater.Movies, v.Movie.ID)
}

type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

type MovieSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	MovieName string             `bson:"moviename" json:"moviename"`
	Genre     string             `bson:"genre" json:"genre"`
	Language  string             `bson:"language" json:"language"`
	Duration  string             `bson:"duration" json:"duration,omitempty"`
}

type TheaterSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TheaterName string             `bson:"theatername" json:"theatername"`
	Location    string             `bson:"location" json:"location"`
	Movies      []ScreenAssignment `bson:"movies" json:"-"`
}

// TheaterBookingSummary aggregates bookings per (theater, movie, show time).
type TheaterBookingSummary struct {
	TheaterID     primitive.ObjectID `bson:"theaterId" json:"theaterId"`
	TheaterName   string             `bson:"theatername" json:"theatername"`
	MovieID       primitive.ObjectID `bson:"movieId" json:"movieId"`
	MovieName     string             `bson:"moviename" json:"moviename"`
	ShowTime      string             `bson:"showTime" json:"showTime"`
	TotalTickets  int                `bson:"totalTickets" json:"totalTickets"`
	TotalBookings int                `bson:"totalBookings" json:"totalBookings"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
}

// MovieBookingTotal aggregates bookings per movie across all theaters.
type MovieBookingTotal struct {
	MovieID       primitive.ObjectID `bson:"movieId" json:"movieId"`
	MovieName     string             `bson:"moviename" json:"moviename"`
	TotalTickets  int                `bson:"totalTickets" json:"totalTickets"`
	TotalBookings int                `bson:"totalBookings" json:"totalBookings"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
}
