package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/movie-booking/internal/config"
)

func bookingMessage(kind Kind) Message {
	return Message{
		Kind: kind,
		To:   "alice@example.com",
		Name: "Alice",
		Booking: &BookingDetails{
			BookingID:       "65a1f0c2e4b0a1b2c3d4e5f6",
			MovieName:       "Inception",
			TheaterName:     "PVR Downtown",
			Location:        "12 Main Street",
			ShowTime:        "2024-12-25T18:00:00Z",
			ScreenNumber:    3,
			NumberOfTickets: 2,
			TotalAmount:     500,
			Status:          "Booked",
			CreatedAt:       time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"booking ok", bookingMessage(KindBookingConfirmed), false},
		{"welcome ok", Message{Kind: KindWelcome, To: "a@example.com"}, false},
		{"unknown kind", Message{Kind: "sms", To: "a@example.com"}, true},
		{"no recipient", Message{Kind: KindWelcome}, true},
		{"verify without link", Message{Kind: KindVerifyEmail, To: "a@example.com"}, true},
		{"booking without details", Message{Kind: KindBookingCancelled, To: "a@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRenderBookingConfirmed(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(bookingMessage(KindBookingConfirmed))
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmed - Inception", out.Subject)
	assert.Contains(t, out.Text, "| Movie | Inception |")
	assert.Contains(t, out.Text, "| Screen | 3 |")
	assert.Contains(t, out.Text, "₹500.00")
	assert.Contains(t, out.HTML, "<table>")
	assert.Contains(t, out.HTML, "<td>PVR Downtown</td>")
	assert.Contains(t, out.HTML, "Wed, 25 Dec 2024 18:00 UTC")
}

func TestRenderVerifyEmailLink(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(Message{
		Kind:      KindVerifyEmail,
		To:        "alice@example.com",
		Name:      "Alice",
		VerifyURL: "http://localhost:3000/verify-email/abc.def",
	})
	require.NoError(t, err)

	assert.Equal(t, "Verify Your Email - Movie Booking System", out.Subject)
	assert.Contains(t, out.HTML, `<a href="http://localhost:3000/verify-email/abc.def">Verify my email</a>`)
}

func TestRenderCancelledWithoutScreen(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg := bookingMessage(KindBookingCancelled)
	msg.Booking.ScreenNumber = 0
	msg.Booking.Status = "Cancelled"

	out, err := r.Render(msg)
	require.NoError(t, err)
	assert.Equal(t, "Booking Cancelled - Inception", out.Subject)
	assert.Contains(t, out.Text, "| Screen | N/A |")
}

func TestMailerSend(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var sent []*mail.Msg
	m := &Mailer{
		from:     "noreply@example.com",
		fromName: "Movie Booking System",
		renderer: r,
		deliver: func(_ context.Context, msgs ...*mail.Msg) error {
			sent = append(sent, msgs...)
			return nil
		},
	}

	require.NoError(t, m.Send(context.Background(), bookingMessage(KindBookingConfirmed)))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"<alice@example.com>"}, sent[0].GetToString())
	assert.Equal(t, []string{"Booking Confirmed - Inception"}, sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestMailerSendFailures(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	m := &Mailer{
		from:     "noreply@example.com",
		renderer: r,
		deliver: func(context.Context, ...*mail.Msg) error {
			return errors.New("connection refused")
		},
	}

	err = m.Send(context.Background(), bookingMessage(KindBookingConfirmed))
	assert.ErrorContains(t, err, "connection refused")

	err = m.Send(context.Background(), Message{Kind: KindWelcome, To: "not an address"})
	assert.ErrorContains(t, err, "recipient address")
}

func TestNewMailerRequiresHost(t *testing.T) {
	_, err := NewMailer(config.MailConfig{From: "noreply@example.com"}, nil)
	assert.Error(t, err)
}

func TestAsyncLogsFailuresAndReturnsImmediately(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []Kind

	a := NewAsync(SenderFunc(func(ctx context.Context, m Message) error {
		<-release
		mu.Lock()
		seen = append(seen, m.Kind)
		mu.Unlock()
		if m.Kind == KindWelcome {
			return errors.New("smtp down")
		}
		return ctx.Err()
	}), zap.New(core), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Send(ctx, Message{Kind: KindWelcome, To: "a@example.com"}))
	require.NoError(t, a.Send(ctx, bookingMessage(KindBookingConfirmed)))
	// the request finishing must not abort the background send
	cancel()
	close(release)

	require.NoError(t, a.Close(context.Background()))
	assert.ElementsMatch(t, []Kind{KindWelcome, KindBookingConfirmed}, seen)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notification not delivered", logs.All()[0].Message)
}

func TestAsyncCloseHonoursDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	a := NewAsync(SenderFunc(func(context.Context, Message) error {
		<-block
		return nil
	}), zap.NewNop(), time.Minute)
	require.NoError(t, a.Send(context.Background(), Message{Kind: KindWelcome, To: "a@example.com"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)
}
