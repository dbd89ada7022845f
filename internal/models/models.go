package models

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format for every datetime in the public API.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime marshals as "2006-01-02 15:04:05" instead of RFC 3339
type DateTime struct {
	time.Time
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + dt.Format(DateTimeLayout) + `"`), nil
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "null" || str == "" {
		dt.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(DateTimeLayout, str)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", str, err)
	}
	dt.Time = parsed
	return nil
}

// NewDateTime wraps t for API serialization
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// NewEventRequest - payload for POST /users/{userId}/events
type NewEventRequest struct {
	Annotation        string    `json:"annotation" binding:"required,min=20,max=2000"`
	CategoryID        int64     `json:"category" binding:"required"`
	Description       *string   `json:"description"`
	EventDate         DateTime  `json:"eventDate" binding:"required"`
	Location          *Location `json:"location" binding:"required"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             string    `json:"title" binding:"required,min=3,max=120"`
}

// UpdateEventRequest - patch payload for admin and owner event updates
type UpdateEventRequest struct {
	Annotation        *string     `json:"annotation" binding:"omitempty,min=20,max=2000"`
	CategoryID        *int64      `json:"category"`
	Description       *string     `json:"description"`
	EventDate         *DateTime   `json:"eventDate"`
	Location          *Location   `json:"location"`
	Paid              *bool       `json:"paid"`
	ParticipantLimit  *int        `json:"participantLimit"`
	RequestModeration *bool       `json:"requestModeration"`
	StateAction       StateAction `json:"stateAction" binding:"omitempty,oneof=PUBLISH_EVENT REJECT_EVENT SEND_TO_REVIEW CANCEL_REVIEW"`
	Title             *string     `json:"title" binding:"omitempty,min=3,max=120"`
}

// EventFull - full event view returned by admin, owner and public detail reads.
// ConfirmedRequests and Views are computed at read time.
type EventFull struct {
	ID                int64      `json:"id"`
	Annotation        string     `json:"annotation"`
	Category          Category   `json:"category"`
	ConfirmedRequests int64      `json:"confirmedRequests"`
	CreatedOn         DateTime   `json:"createdOn"`
	Description       *string    `json:"description,omitempty"`
	EventDate         DateTime   `json:"eventDate"`
	Initiator         User       `json:"initiator"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	PublishedOn       *DateTime  `json:"publishedOn,omitempty"`
	RequestModeration bool       `json:"requestModeration"`
	State             EventState `json:"state"`
	Title             string     `json:"title"`
	Views             int64      `json:"views"`
}

// EventFilter holds the filter parameters shared by admin and public event
// listings. Variant-specific fields live in the composing structs.
type EventFilter struct {
	CategoryIDs []int64
	RangeStart  *time.Time
	RangeEnd    *time.Time
	From        int
	Size        int
}

// AdminEventFilter - GET /admin/events
type AdminEventFilter struct {
	EventFilter
	UserIDs []int64
	States  []EventState
}

// PublicEventFilter - GET /events. IDs narrows the result to a candidate set
// when the text filter was resolved through the search index first.
type PublicEventFilter struct {
	EventFilter
	Text          string
	Paid          *bool
	OnlyAvailable bool
	IDs           []int64
}

// ParticipationRequest - request view returned by request endpoints
type ParticipationRequest struct {
	ID        int64         `json:"id"`
	Event     int64         `json:"event"`
	Requester int64         `json:"requester"`
	Created   DateTime      `json:"created"`
	Status    RequestStatus `json:"status"`
}

// RequestStatusUpdate - payload for PATCH /users/{userId}/events/{eventId}/requests
type RequestStatusUpdate struct {
	RequestIDs []int64       `json:"requestIds" binding:"required"`
	Status     RequestStatus `json:"status" binding:"required,oneof=CONFIRMED REJECTED"`
}

// RequestStatusUpdateResult - the two outcome lists of a bulk status update
type RequestStatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequest `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequest `json:"rejectedRequests"`
}

// NewUserRequest - payload for POST /admin/users
type NewUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2,max=250"`
}

// NewCategoryRequest - payload for POST /admin/categories and PATCH
type NewCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// NewCompilationRequest - payload for POST /admin/compilations
type NewCompilationRequest struct {
	EventIDs []int64 `json:"events"`
	Pinned   bool    `json:"pinned"`
	Title    string  `json:"title" binding:"required,min=1,max=50"`
}

// UpdateCompilationRequest - patch payload for PATCH /admin/compilations/{compId}
type UpdateCompilationRequest struct {
	EventIDs *[]int64 `json:"events"`
	Pinned   *bool    `json:"pinned"`
	Title    *string  `json:"title" binding:"omitempty,min=1,max=50"`
}

// CompilationView - compilation with its events expanded
type CompilationView struct {
	ID     int64       `json:"id"`
	Title  string      `json:"title"`
	Pinned bool        `json:"pinned"`
	Events []EventFull `json:"events"`
}

// NewCommentRequest - payload for comment creation and edits
type NewCommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// UpdateCommentStatusRequest - admin moderation payload
type UpdateCommentStatusRequest struct {
	Status CommentStatus `json:"status" binding:"required,oneof=PENDING PUBLISHED REJECTED"`
}

// ErrorResponse - structured error body returned by both services
type ErrorResponse struct {
	Message   string   `json:"message"`
	Reason    string   `json:"reason"`
	Status    int      `json:"status"`
	Timestamp DateTime `json:"timestamp"`
}
