package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date format used for release dates on the wire.
const DateLayout = "2006-01-02"

// Movie is a catalog entry in the `movies` collection.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MovieName   string             `bson:"moviename" json:"moviename"`
	Genre       string             `bson:"genre" json:"genre"`
	Language    string             `bson:"language" json:"language"`
	Duration    string             `bson:"duration" json:"duration"`
	Cast        []string           `bson:"cast" json:"cast"`
	Director    string             `bson:"director" json:"director"`
	ReleaseDate time.Time          `bson:"releaseDate" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MarshalJSON renders the release date as a calendar date.
func (m Movie) MarshalJSON() ([]byte, error) {
	type plain Movie
	return jsonAPI.Marshal(struct {
		plain
		ReleaseDate string `json:"releaseDate"`
	}{plain: plain(m), ReleaseDate: FormatDate(m.ReleaseDate)})
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
