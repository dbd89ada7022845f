package repository

import (
	"afisha/internal/database"
)

type Repositories struct {
	Users         *UserRepository
	Categories    *CategoryRepository
	Locations     *LocationRepository
	Events        *EventRepository
	Requests      *RequestRepository
	Compilations  *CompilationRepository
	Comments      *CommentRepository
	Subscriptions *SubscriptionRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Categories:    NewCategoryRepository(db),
		Locations:     NewLocationRepository(db),
		Events:        NewEventRepository(db),
		Requests:      NewRequestRepository(db),
		Compilations:  NewCompilationRepository(db),
		Comments:      NewCommentRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
	}
}
