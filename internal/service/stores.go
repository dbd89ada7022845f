package service

import (
	"context"
	"time"

	"afisha/internal/models"
)

// Transactor runs a function inside a database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// The store interfaces below are what the services need from the persistence
// layer. They are satisfied by the repository package; tests swap in fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, ids []int64, from, size int) ([]models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, category *models.Category) error
	InUse(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, from, size int) ([]models.Category, error)
}

type LocationStore interface {
	GetOrCreate(ctx context.Context, lat, lon float64) (*models.Location, error)
	GetByID(ctx context.Context, id int64) (*models.Location, error)
}

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*models.Event, error)
	GetByIDAndInitiatorForUpdate(ctx context.Context, id, initiatorID int64) (*models.Event, error)
	GetByIDAndState(ctx context.Context, id int64, state models.EventState) (*models.Event, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	ListByInitiator(ctx context.Context, initiatorID int64, from, size int) ([]models.Event, error)
	ListByInitiators(ctx context.Context, initiatorIDs []int64, from, size int) ([]models.Event, error)
	FindAdmin(ctx context.Context, filter models.AdminEventFilter) ([]models.Event, error)
	FindPublic(ctx context.Context, filter models.PublicEventFilter) ([]models.Event, error)
}

type RequestStore interface {
	Create(ctx context.Context, request *models.Request) error
	ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID int64) (bool, error)
	CountConfirmed(ctx context.Context, eventID int64) (int64, error)
	CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
	GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*models.Request, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error
	UpdateStatusByIDs(ctx context.Context, ids []int64, eventID int64, status models.RequestStatus) error
	RejectAllPending(ctx context.Context, eventID int64) error
	FindByIDs(ctx context.Context, ids []int64, eventID int64) ([]models.Request, error)
	FindByRequester(ctx context.Context, requesterID int64) ([]models.Request, error)
	FindByEvent(ctx context.Context, eventID int64) ([]models.Request, error)
}

type CompilationStore interface {
	Create(ctx context.Context, compilation *models.Compilation) error
	GetByID(ctx context.Context, id int64) (*models.Compilation, error)
	Update(ctx context.Context, compilation *models.Compilation) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, pinned *bool, from, size int) ([]models.Compilation, error)
	SetEvents(ctx context.Context, compilationID int64, eventIDs []int64) error
	EventIDs(ctx context.Context, compilationID int64) ([]int64, error)
	CountExisting(ctx context.Context, eventIDs []int64) (int, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByIDEventAndAuthor(ctx context.Context, id, eventID, authorID int64) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByIDEventAndAuthor(ctx context.Context, id, eventID, authorID int64) (bool, error)
	ListPublishedByEvent(ctx context.Context, eventID int64, from, size int) ([]models.Comment, error)
	ListByAuthor(ctx context.Context, authorID int64, from, size int) ([]models.Comment, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	Delete(ctx context.Context, userID, targetID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	TargetIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Collaborator interfaces. All of them are optional at runtime: a nil field
// disables the integration and the services carry on without it.

// Publisher emits domain events to the message bus.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// StatsGateway records and reads page views through the stats service.
type StatsGateway interface {
	AddHit(ctx context.Context, uri, ip string) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error)
}

// EventIndexer maintains the full-text index of published events.
type EventIndexer interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	SearchIDs(ctx context.Context, text string, size int) ([]int64, error)
}

// ListingCache drops cached public listings when events change visibility.
type ListingCache interface {
	InvalidateEventsLists(ctx context.Context) error
}
