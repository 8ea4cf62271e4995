// Package notify carries the transactional email notifications: the
// message type, the Sender capability the services depend on, an
// asynchronous dispatcher, and the SMTP mailer.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

// Kind selects the email template.
type Kind string

const (
	KindVerifyEmail      Kind = "verify_email"
	KindWelcome          Kind = "welcome"
	KindBookingConfirmed Kind = "booking_confirmed"
	KindBookingCancelled Kind = "booking_cancelled"
)

func (k Kind) valid() bool {
	switch k {
	case KindVerifyEmail, KindWelcome, KindBookingConfirmed, KindBookingCancelled:
		return true
	}
	return false
}

// Message is a single notification. It is self-contained so it can travel
// over the queue without further lookups.
type Message struct {
	Kind      Kind            `json:"kind"`
	To        string          `json:"to"`
	Name      string          `json:"name"`
	VerifyURL string          `json:"verifyUrl,omitempty"`
	Booking   *BookingDetails `json:"booking,omitempty"`
}

// BookingDetails is the booking snapshot rendered into booking emails.
type BookingDetails struct {
	BookingID       string    `json:"bookingId"`
	MovieName       string    `json:"moviename"`
	Genre           string    `json:"genre,omitempty"`
	Duration        string    `json:"duration,omitempty"`
	TheaterName     string    `json:"theatername"`
	Location        string    `json:"location"`
	ShowTime        string    `json:"showTime"`
	ScreenNumber    int       `json:"screenNumber,omitempty"`
	NumberOfTickets int       `json:"numberOfTickets"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BookingDetailsFromView snapshots a joined booking view.
func BookingDetailsFromView(v model.BookingView) *BookingDetails {
	return &BookingDetails{
		BookingID:       v.ID.Hex(),
		MovieName:       v.Movie.MovieName,
		Genre:           v.Movie.Genre,
		Duration:        v.Movie.Duration,
		TheaterName:     v.Theater.TheaterName,
		Location:        v.Theater.Location,
		ShowTime:        v.ShowTime,
		ScreenNumber:    v.ScreenNumber,
		NumberOfTickets: v.NumberOfTickets,
		TotalAmount:     v.TotalAmount,
		Status:          string(v.Status),
		CreatedAt:       v.CreatedAt,
	}
}

// Validate checks that m can be rendered.
func (m Message) Validate() error {
	if !m.Kind.valid() {
		return fmt.Errorf("unknown notification kind %q", m.Kind)
	}
	if strings.TrimSpace(m.To) == "" {
		return errors.New("notification has no recipient")
	}
	switch m.Kind {
	case KindVerifyEmail:
		if m.VerifyURL == "" {
			return errors.New("verification notification has no link")
		}
	case KindBookingConfirmed, KindBookingCancelled:
		if m.Booking == nil {
			return errors.New("booking notification has no booking")
		}
	}
	return nil
}
