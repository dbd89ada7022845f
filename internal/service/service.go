package service

import (
	"afisha/internal/cache"
	"afisha/internal/database"
	"afisha/internal/external"
	"afisha/internal/messaging"
	"afisha/internal/repository"
	"afisha/internal/search"
)

type Services struct {
	Users         *UserService
	Categories    *CategoryService
	Events        *EventService
	Requests      *RequestService
	Compilations  *CompilationService
	Comments      *CommentService
	Subscriptions *SubscriptionService
}

// Collaborators are the optional integrations of the API service. Nil fields
// are allowed and simply disable the corresponding feature.
type Collaborators struct {
	Stats  *external.StatsClient
	NATS   *messaging.NATSClient
	Search *search.Client
	Cache  *cache.Client
}

func NewServices(db *database.DB, repos *repository.Repositories, collab Collaborators) *Services {
	// Wrap concrete clients only when present so a nil pointer never hides
	// behind a non-nil interface.
	var stats StatsGateway
	if collab.Stats != nil {
		stats = collab.Stats
	}
	var nats Publisher
	if collab.NATS != nil {
		nats = collab.NATS
	}
	var indexer EventIndexer
	if collab.Search != nil {
		indexer = collab.Search
	}
	var listing ListingCache
	if collab.Cache != nil {
		listing = collab.Cache
	}

	eventService := NewEventService(db, repos.Events, repos.Users, repos.Categories,
		repos.Locations, repos.Requests, repos.Subscriptions).
		WithCollaborators(stats, nats, indexer, listing)
	requestService := NewRequestService(db, repos.Requests, repos.Events, repos.Users).
		WithPublisher(nats)

	return &Services{
		Users:         NewUserService(repos.Users),
		Categories:    NewCategoryService(repos.Categories),
		Events:        eventService,
		Requests:      requestService,
		Compilations:  NewCompilationService(db, repos.Compilations, repos.Events, eventService),
		Comments:      NewCommentService(repos.Comments, repos.Events, repos.Users),
		Subscriptions: NewSubscriptionService(repos.Subscriptions, repos.Users),
	}
}
