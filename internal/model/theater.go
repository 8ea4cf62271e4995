package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Theater is a venue in the `theaters` collection. Screen assignments are
// embedded sub-documents; ScreenNumber is unique within one theater.
//
// Fields:
//  ID          – document identifier.
//  TheaterName – display name, 2 to 100 characters.
//  Location    – address line, 5 to 200 characters.
//  Screens     – number of screens, 1 to 20.
//  Movies      – movies currently assigned to screens.
type Theater struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TheaterName string             `bson:"theatername" json:"theatername"`
	Location    string             `bson:"location" json:"location"`
	Screens     int                `bson:"screens" json:"screens"`
	Movies      []ScreenAssignment `bson:"movies" json:"movies"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ScreenAssignment binds a movie to one screen of a theater.
type ScreenAssignment struct {
	Movie        primitive.ObjectID `bson:"movie" json:"movie"`
	ScreenNumber int                `bson:"screenNumber" json:"screenNumber"`
	ShowTimings  []string           `bson:"showTimings" json:"showTimings"`
}

// ScreenTaken reports whether screen already carries a movie.
func (t *Theater) ScreenTaken(screen int) bool {
	for _, a := range t.Movies {
		if a.ScreenNumber == screen {
			return true
		}
	}
	return false
}

// HighestScreen returns the largest assigned screen number, or 0.
func (t *Theater) HighestScreen() int {
	highest := 0
	for _, a := range t.Movies {
		if a.ScreenNumber > highest {
			highest = a.ScreenNumber
		}
	}
	return highest
}

// ScreenFor returns the screen number that shows movie, or 0 when the
// movie is not assigned in the given list.
func ScreenFor(assignments []ScreenAssignment, movie primitive.ObjectID) int {
	for _, a := range assignments {
		if a.Movie == movie {
			return a.ScreenNumber
		}
	}
	return 0
}

// TheaterView is a theater with its movie references expanded.
type TheaterView struct {
	ID          primitive.ObjectID     `json:"id"`
	TheaterName string                 `json:"theatername"`
	Location    string                 `json:"location"`
	Screens     int                    `json:"screens"`
	Movies      []ScreenAssignmentView `json:"movies"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// ScreenAssignmentView carries the resolved movie. Movie is nil when the
// referenced movie no longer exists.
type ScreenAssignmentView struct {
	Movie        *Movie   `json:"movie"`
	ScreenNumber int      `json:"screenNumber"`
	ShowTimings  []string `json:"showTimings"`
}

// MovieTheaterRow is one line of the movie/theater details report: a
// single (theater, assigned movie) pair flattened into display fields.
type MovieTheaterRow struct {
	MovieName    string   `bson:"moviename" json:"moviename"`
	Genre        string   `bson:"genre" json:"genre"`
	Language     string   `bson:"language" json:"language"`
	Duration     string   `bson:"duration" json:"duration"`
	Cast         []string `bson:"cast" json:"cast"`
	Director     string   `bson:"director" json:"director"`
	TheaterName  string   `bson:"theatername" json:"theatername"`
	Location     string   `bson:"location" json:"location"`
	Screens      int      `bson:"screens" json:"screens"`
	ScreenNumber int      `bson:"screenNumber" json:"screenNumber"`
	ShowTimings  []string `bson:"showTimings" json:"showTimings"`
}
