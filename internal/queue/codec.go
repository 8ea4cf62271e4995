// Package queue moves notifications through RabbitMQ: the server publishes
// them and the notifier worker consumes and delivers them.
package queue

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/iliyamo/movie-booking/internal/notify"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func encode(m notify.Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return b, nil
}

func decode(body []byte) (notify.Message, error) {
	var m notify.Message
	if err := json.Unmarshal(body, &m); err != nil {
		return notify.Message{}, fmt.Errorf("unmarshal notification: %w", err)
	}
	if err := m.Validate(); err != nil {
		return notify.Message{}, err
	}
	return m, nil
}
