package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/notify"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg notify.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func welcome() notify.Message {
	return notify.Message{Kind: notify.KindWelcome, To: "alice@example.com", Name: "Alice"}
}

func TestCodecRoundTrip(t *testing.T) {
	in := notify.Message{
		Kind: notify.KindBookingCancelled,
		To:   "alice@example.com",
		Name: "Alice",
		Booking: &notify.BookingDetails{
			BookingID:       "65a1f0c2e4b0a1b2c3d4e5f6",
			MovieName:       "Inception",
			NumberOfTickets: 2,
			TotalAmount:     500,
			Status:          "Cancelled",
			CreatedAt:       time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	body, err := encode(in)
	require.NoError(t, err)
	out, err := decode(body)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConsumerHandle(t *testing.T) {
	valid, err := encode(welcome())
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		sendErr     error
		expectSend  bool
		want        outcome
	}{
		{name: "delivered", body: valid, expectSend: true, want: ack},
		{name: "malformed json", body: []byte("{"), want: drop},
		{name: "invalid message", body: []byte(`{"kind":"sms","to":"a@example.com"}`), want: drop},
		{name: "first failure requeues", body: valid, sendErr: errors.New("smtp down"), expectSend: true, want: requeue},
		{name: "second failure drops", body: valid, redelivered: true, sendErr: errors.New("smtp down"), expectSend: true, want: drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// setup
			sender := &mockSender{}
			if tt.expectSend {
				sender.On("Send", mock.Anything, welcome()).Return(tt.sendErr).Once()
			}
			c := NewConsumer("amqp://unused", "notifications.email", sender, zap.NewNop())

			// act
			got := c.handle(context.Background(), tt.body, tt.redelivered)

			// assert
			assert.Equal(t, tt.want, got)
			sender.AssertExpectations(t)
			if !tt.expectSend {
				sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPublisherRejectsInvalidMessage(t *testing.T) {
	p := NewPublisher("amqp://unused", "notifications.email")
	err := p.Send(context.Background(), notify.Message{Kind: notify.KindWelcome})
	assert.Error(t, err)
}

func TestSleepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Minute))
	assert.True(t, sleep(context.Background(), time.Millisecond))
}
