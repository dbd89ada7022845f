package models

import "time"

// NATS subjects
const (
	SubjectEventPublished   = "event.published"
	SubjectEventCanceled    = "event.canceled"
	SubjectRequestCreated   = "request.created"
	SubjectRequestConfirmed = "request.confirmed"
	SubjectRequestRejected  = "request.rejected"
)

// EventPublishedMessage is emitted when an admin publishes an event
type EventPublishedMessage struct {
	EventID     int64     `json:"event_id"`
	InitiatorID int64     `json:"initiator_id"`
	Title       string    `json:"title"`
	EventDate   time.Time `json:"event_date"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventCanceledMessage is emitted when an event is rejected or canceled
type EventCanceledMessage struct {
	EventID   int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestStatusMessage is emitted for request lifecycle changes
type RequestStatusMessage struct {
	RequestID   int64         `json:"request_id"`
	EventID     int64         `json:"event_id"`
	RequesterID int64         `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Timestamp   time.Time     `json:"timestamp"`
}
