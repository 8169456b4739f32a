package event

import (
	"encoding/json"
	"errors"
)

// Name identifies an event type on the channel.
type Name string

// Well-known event names. The set is open-ended: unknown names must be
// ignored by consumers, not treated as errors.
const (
	// NotificationReceived is emitted when a new notification is stored
	// for a subscriber. Payload: the notification record.
	NotificationReceived Name = "notification_received"

	// UnseenCountChanged is emitted when a subscriber's unseen count
	// changes. Payload: UnseenCount.
	UnseenCountChanged Name = "unseen_count_changed"
)

// Event is a single named event with its JSON-encoded payload.
type Event struct {
	Name    Name            `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UnseenCount is the payload of UnseenCountChanged events.
type UnseenCount struct {
	UnseenCount int `json:"unseenCount"`
}

// New builds an event with the payload encoded as JSON.
// A nil payload produces an event without a payload.
func New(name Name, payload any) (Event, error) {
	if name == "" {
		return Event{}, ErrMissingName
	}
	if payload == nil {
		return Event{Name: name}, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedPayload, err)
	}
	return Event{Name: name, Payload: data}, nil
}

// NewUnseenCountChanged builds an UnseenCountChanged event for the count.
func NewUnseenCountChanged(count int) Event {
	// Marshaling a flat struct of primitives cannot fail.
	e, _ := New(UnseenCountChanged, UnseenCount{UnseenCount: count})
	return e
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return ErrMalformedPayload
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errors.Join(ErrMalformedPayload, err)
	}
	return nil
}
