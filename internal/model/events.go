package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"isafeDashboard/internal/events"
)

// RawEvent is one event record as served by the indexer.
type RawEvent struct {
	ID             int64  `json:"id"`
	AccountAddress string `json:"accountAddress"`
	FiringTxDigest string `json:"firingTxDigest"`
	EventType      string `json:"eventType"`
	EventData      string `json:"eventData"`
	Timestamp      int64  `json:"timestamp"`
}

// Bytes returns the base64-decoded BCS payload.
func (r RawEvent) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(r.EventData)
	if err != nil {
		return nil, fmt.Errorf("event %d: decode base64: %w", r.ID, err)
	}
	return b, nil
}

// Event is a decoded account event. Data is always the payload type fixed by
// EventType.
type Event struct {
	AccountAddress string         `json:"accountAddress"`
	FiredInTx      string         `json:"firedInTx"`
	EventType      events.Tag     `json:"eventType"`
	Data           events.Payload `json:"data"`
	Timestamp      time.Time      `json:"timestamp"`
}

// UnmarshalJSON restores Data with the concrete payload type for EventType.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire struct {
		AccountAddress string          `json:"accountAddress"`
		FiredInTx      string          `json:"firedInTx"`
		EventType      events.Tag      `json:"eventType"`
		Data           json.RawMessage `json:"data"`
		Timestamp      time.Time       `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	payload, err := events.UnmarshalPayload(string(wire.EventType), wire.Data)
	if err != nil {
		return err
	}
	*e = Event{
		AccountAddress: wire.AccountAddress,
		FiredInTx:      wire.FiredInTx,
		EventType:      wire.EventType,
		Data:           payload,
		Timestamp:      wire.Timestamp,
	}
	return nil
}

// DecodeEvent turns a wire record into an Event. Unknown tags and malformed
// payloads fail with a *DecodeError naming the record.
func DecodeEvent(raw RawEvent) (Event, error) {
	if !events.Tag(raw.EventType).Known() {
		err := fmt.Errorf("%w: %s", events.ErrUnknownEventType, raw.EventType)
		return Event{}, &DecodeError{ID: raw.ID, EventType: raw.EventType, Err: err}
	}
	b, err := raw.Bytes()
	if err != nil {
		return Event{}, &DecodeError{ID: raw.ID, EventType: raw.EventType, Err: err}
	}
	payload, err := events.Decode(raw.EventType, b)
	if err != nil {
		return Event{}, &DecodeError{ID: raw.ID, EventType: raw.EventType, Err: err}
	}
	return Event{
		AccountAddress: raw.AccountAddress,
		FiredInTx:      raw.FiringTxDigest,
		EventType:      events.Tag(raw.EventType),
		Data:           payload,
		Timestamp:      time.UnixMilli(raw.Timestamp).UTC(),
	}, nil
}

// EncodeEvent is the inverse of DecodeEvent, used for fixtures and replays.
func EncodeEvent(id int64, ev Event) RawEvent {
	return RawEvent{
		ID:             id,
		AccountAddress: ev.AccountAddress,
		FiringTxDigest: ev.FiredInTx,
		EventType:      string(ev.Data.Tag()),
		EventData:      base64.StdEncoding.EncodeToString(ev.Data.Encode()),
		Timestamp:      ev.Timestamp.UnixMilli(),
	}
}
