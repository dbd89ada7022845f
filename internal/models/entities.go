package models

import (
	"time"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// StateAction is a requested lifecycle transition carried in an update.
type StateAction string

const (
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
)

// RequestStatus is the lifecycle state of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending   CommentStatus = "PENDING"
	CommentStatusPublished CommentStatus = "PUBLISHED"
	CommentStatusRejected  CommentStatus = "REJECTED"
)

// User represents a registered user
type User struct {
	ID    int64  `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}

// Category represents an event category
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Location represents a geographic point, deduplicated by (lat, lon)
type Location struct {
	ID  int64   `json:"-" db:"id"`
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// Event represents a schedulable activity users can join.
// ConfirmedRequests and Views are derived at read time and never persisted.
type Event struct {
	ID                int64      `db:"id"`
	Annotation        string     `db:"annotation"`
	Description       *string    `db:"description"`
	Title             string     `db:"title"`
	CategoryID        int64      `db:"category_id"`
	InitiatorID       int64      `db:"initiator_id"`
	LocationID        int64      `db:"location_id"`
	EventDate         time.Time  `db:"event_date"`
	CreatedOn         time.Time  `db:"created_on"`
	PublishedOn       *time.Time `db:"published_on"`
	Paid              bool       `db:"paid"`
	ParticipantLimit  int        `db:"participant_limit"`
	RequestModeration bool       `db:"request_moderation"`
	State             EventState `db:"state"`
}

// Request represents a user's application to join an event
type Request struct {
	ID          int64         `json:"id" db:"id"`
	EventID     int64         `json:"event" db:"event_id"`
	RequesterID int64         `json:"requester" db:"requester_id"`
	Created     time.Time     `json:"created" db:"created"`
	Status      RequestStatus `json:"status" db:"status"`
}

// Compilation represents a curated set of events
type Compilation struct {
	ID     int64  `db:"id"`
	Title  string `db:"title"`
	Pinned bool   `db:"pinned"`
}

// Comment represents a user comment on an event
type Comment struct {
	ID       int64         `json:"id" db:"id"`
	EventID  int64         `json:"eventId" db:"event_id"`
	AuthorID int64         `json:"authorId" db:"author_id"`
	Text     string        `json:"text" db:"text"`
	Created  time.Time     `json:"created" db:"created"`
	Status   CommentStatus `json:"status" db:"status"`
}

// Subscription links a user to an initiator whose events they follow
type Subscription struct {
	ID       int64 `json:"id" db:"id"`
	UserID   int64 `json:"userId" db:"user_id"`
	TargetID int64 `json:"targetId" db:"target_id"`
}
