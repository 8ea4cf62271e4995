package servicetest

import (
	"context"
	"sync"

	"github.com/iliyamo/movie-booking/internal/notify"
)

// Outbox is a notify.Sender that records every message it is given.
type Outbox struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (o *Outbox) Send(_ context.Context, m notify.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

// Messages returns a copy of the recorded messages.
func (o *Outbox) Messages() []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]notify.Message(nil), o.msgs...)
}

// Last returns the most recent message of kind, if any.
func (o *Outbox) Last(kind notify.Kind) (notify.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].Kind == kind {
			return o.msgs[i], true
		}
	}
	return notify.Message{}, false
}
