package service

import (
	"context"
	"fmt"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type CompilationService struct {
	tx           Transactor
	compilations CompilationStore
	events       EventStore
	eventViews   *EventService
}

func NewCompilationService(tx Transactor, compilations CompilationStore, events EventStore, eventViews *EventService) *CompilationService {
	return &CompilationService{
		tx:           tx,
		compilations: compilations,
		events:       events,
		eventViews:   eventViews,
	}
}

func (s *CompilationService) Create(ctx context.Context, req *models.NewCompilationRequest) (*models.CompilationView, error) {
	if err := s.checkEventIDs(ctx, req.EventIDs); err != nil {
		return nil, err
	}

	compilation := &models.Compilation{Title: req.Title, Pinned: req.Pinned}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.compilations.Create(ctx, compilation); err != nil {
			return fmt.Errorf("failed to create compilation: %w", err)
		}
		if len(req.EventIDs) > 0 {
			if err := s.compilations.SetEvents(ctx, compilation.ID, req.EventIDs); err != nil {
				return fmt.Errorf("failed to attach events: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toView(ctx, compilation)
}

func (s *CompilationService) Update(ctx context.Context, id int64, req *models.UpdateCompilationRequest) (*models.CompilationView, error) {
	compilation, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get compilation: %w", err)
	}
	if compilation == nil {
		return nil, apperr.NotFound(apperr.ReasonCompilationNotFound, "compilation with id=%d was not found", id)
	}

	if req.Title != nil {
		compilation.Title = *req.Title
	}
	if req.Pinned != nil {
		compilation.Pinned = *req.Pinned
	}
	if req.EventIDs != nil {
		if err := s.checkEventIDs(ctx, *req.EventIDs); err != nil {
			return nil, err
		}
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.compilations.Update(ctx, compilation); err != nil {
			return fmt.Errorf("failed to update compilation: %w", err)
		}
		if req.EventIDs != nil {
			if err := s.compilations.SetEvents(ctx, id, *req.EventIDs); err != nil {
				return fmt.Errorf("failed to replace events: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.toView(ctx, compilation)
}

func (s *CompilationService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.compilations.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete compilation: %w", err)
	}
	if !deleted {
		return apperr.NotFound(apperr.ReasonCompilationNotFound, "compilation with id=%d was not found", id)
	}
	return nil
}

func (s *CompilationService) GetByID(ctx context.Context, id int64) (*models.CompilationView, error) {
	compilation, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get compilation: %w", err)
	}
	if compilation == nil {
		return nil, apperr.NotFound(apperr.ReasonCompilationNotFound, "compilation with id=%d was not found", id)
	}
	return s.toView(ctx, compilation)
}

func (s *CompilationService) List(ctx context.Context, pinned *bool, from, size int) ([]models.CompilationView, error) {
	compilations, err := s.compilations.List(ctx, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list compilations: %w", err)
	}

	result := make([]models.CompilationView, 0, len(compilations))
	for i := range compilations {
		view, err := s.toView(ctx, &compilations[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *view)
	}
	return result, nil
}

func (s *CompilationService) checkEventIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.compilations.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check events: %w", err)
	}
	if count != len(ids) {
		return apperr.NotFound(apperr.ReasonEventNotFound, "some of the listed events were not found")
	}
	return nil
}

func (s *CompilationService) toView(ctx context.Context, compilation *models.Compilation) (*models.CompilationView, error) {
	ids, err := s.compilations.EventIDs(ctx, compilation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get compilation events: %w", err)
	}

	view := &models.CompilationView{
		ID:     compilation.ID,
		Title:  compilation.Title,
		Pinned: compilation.Pinned,
		Events: []models.EventFull{},
	}
	if len(ids) == 0 {
		return view, nil
	}

	events, err := s.events.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	view.Events, err = s.eventViews.ToViews(ctx, events)
	if err != nil {
		return nil, err
	}
	return view, nil
}
