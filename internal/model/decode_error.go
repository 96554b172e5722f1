package model

import (
	"errors"
	"fmt"

	"isafeDashboard/internal/events"
)

// DecodeError records a decode failure for one indexer record.
type DecodeError struct {
	ID        int64
	EventType string
	Err       error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, events.ErrUnknownEventType) {
		return fmt.Sprintf("Unknown event type: %s for event ID: %d", e.EventType, e.ID)
	}
	return fmt.Sprintf("decode event %d (%s): %v", e.ID, e.EventType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
