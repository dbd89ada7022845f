package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business error for HTTP mapping.
type Kind int

const (
	KindNotFound Kind = iota
	KindBadRequest
	KindConflict
	KindInternal
)

// Error is a typed business error. Reason is a stable machine-readable code,
// Message is human-readable detail.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(reason, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(reason, format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func Conflict(reason, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// As unwraps err into *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Stable reason codes used across the services.
const (
	ReasonUserNotFound        = "USER_NOT_FOUND"
	ReasonEventNotFound       = "EVENT_NOT_FOUND"
	ReasonCategoryNotFound    = "CATEGORY_NOT_FOUND"
	ReasonRequestNotFound     = "REQUEST_NOT_FOUND"
	ReasonCompilationNotFound = "COMPILATION_NOT_FOUND"
	ReasonCommentNotFound     = "COMMENT_NOT_FOUND"

	ReasonUserExists        = "USER_ALREADY_EXISTS"
	ReasonCategoryNameTaken = "CATEGORY_NAME_TAKEN"
	ReasonCategoryInUse     = "CATEGORY_IN_USE"
	ReasonAlreadyPublished  = "EVENT_ALREADY_PUBLISHED"
	ReasonCannotPublish     = "EVENT_CANCELED_CANT_PUBLISH"
	ReasonNotEditable       = "EVENT_NOT_EDITABLE"
	ReasonEventDate         = "EVENT_DATE_TOO_SOON"
	ReasonNotPublished      = "EVENT_NOT_PUBLISHED"
	ReasonDuplicateRequest  = "REQUEST_ALREADY_EXISTS"
	ReasonSelfAttend        = "REQUEST_SELF_ATTEND"
	ReasonLimitReached      = "PARTICIPANT_LIMIT_REACHED"
	ReasonRequestNotPending = "REQUEST_NOT_PENDING"
	ReasonSelfSubscribe     = "SELF_SUBSCRIBE"
	ReasonNotSubscribed     = "NOT_SUBSCRIBED"

	ReasonInvalidFilter = "INVALID_FILTER"
	ReasonInvalidRange  = "INVALID_DATE_RANGE"
)
