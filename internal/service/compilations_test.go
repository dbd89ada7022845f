package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type fakeCompilations struct {
	m      map[int64]models.Compilation
	events map[int64][]int64
	known  *fakeEvents
	next   int64
}

func newFakeCompilations(known *fakeEvents) *fakeCompilations {
	return &fakeCompilations{
		m:      make(map[int64]models.Compilation),
		events: make(map[int64][]int64),
		known:  known,
	}
}

func (f *fakeCompilations) Create(_ context.Context, compilation *models.Compilation) error {
	f.next++
	compilation.ID = f.next
	f.m[compilation.ID] = *compilation
	return nil
}

func (f *fakeCompilations) GetByID(_ context.Context, id int64) (*models.Compilation, error) {
	if c, ok := f.m[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCompilations) Update(_ context.Context, compilation *models.Compilation) error {
	f.m[compilation.ID] = *compilation
	return nil
}

func (f *fakeCompilations) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.m[id]; !ok {
		return false, nil
	}
	delete(f.m, id)
	delete(f.events, id)
	return true, nil
}

func (f *fakeCompilations) List(_ context.Context, pinned *bool, from, size int) ([]models.Compilation, error) {
	var compilations []models.Compilation
	for _, c := range f.m {
		if pinned != nil && c.Pinned != *pinned {
			continue
		}
		compilations = append(compilations, c)
	}
	return page(compilations, from, size), nil
}

func (f *fakeCompilations) SetEvents(_ context.Context, compilationID int64, eventIDs []int64) error {
	f.events[compilationID] = append([]int64(nil), eventIDs...)
	return nil
}

func (f *fakeCompilations) EventIDs(_ context.Context, compilationID int64) ([]int64, error) {
	return f.events[compilationID], nil
}

func (f *fakeCompilations) CountExisting(_ context.Context, eventIDs []int64) (int, error) {
	count := 0
	for _, id := range eventIDs {
		if _, ok := f.known.m[id]; ok {
			count++
		}
	}
	return count, nil
}

func newCompilationFixture(events ...models.Event) (*CompilationService, *fakeCompilations) {
	fe := newFakeEvents(events...)
	users := newFakeUsers(models.User{ID: 1, Email: "ann@example.com", Name: "Ann"})
	categories := newFakeCategories(models.Category{ID: 1, Name: "music"})
	locations := newFakeLocations()
	locations.GetOrCreate(context.Background(), 55.75, 37.62)

	eventSvc := NewEventService(fakeTx{}, fe, users, categories, locations,
		newFakeRequests(), newFakeSubscriptions())

	comps := newFakeCompilations(fe)
	return NewCompilationService(fakeTx{}, comps, fe, eventSvc), comps
}

func TestCreateCompilation(t *testing.T) {
	svc, _ := newCompilationFixture(
		publishedEvent(10, 1, 0, false),
		publishedEvent(11, 1, 0, false),
	)

	view, err := svc.Create(context.Background(), &models.NewCompilationRequest{
		Title:    "Weekend picks",
		Pinned:   true,
		EventIDs: []int64{10, 11},
	})

	require.NoError(t, err)
	assert.Equal(t, "Weekend picks", view.Title)
	assert.True(t, view.Pinned)
	require.Len(t, view.Events, 2)
	assert.Equal(t, "music", view.Events[0].Category.Name)
	assert.Equal(t, "Ann", view.Events[0].Initiator.Name)
}

func TestCreateCompilationUnknownEvent(t *testing.T) {
	svc, _ := newCompilationFixture(publishedEvent(10, 1, 0, false))

	_, err := svc.Create(context.Background(), &models.NewCompilationRequest{
		Title:    "Weekend picks",
		EventIDs: []int64{10, 99},
	})

	assertAppErr(t, err, apperr.KindNotFound, apperr.ReasonEventNotFound)
}

func TestUpdateCompilationReplacesEvents(t *testing.T) {
	svc, comps := newCompilationFixture(
		publishedEvent(10, 1, 0, false),
		publishedEvent(11, 1, 0, false),
	)
	created, err := svc.Create(context.Background(), &models.NewCompilationRequest{
		Title:    "Weekend picks",
		EventIDs: []int64{10},
	})
	require.NoError(t, err)

	newIDs := []int64{11}
	pinned := true
	view, err := svc.Update(context.Background(), created.ID, &models.UpdateCompilationRequest{
		Pinned:   &pinned,
		EventIDs: &newIDs,
	})

	require.NoError(t, err)
	assert.True(t, view.Pinned)
	require.Len(t, view.Events, 1)
	assert.Equal(t, int64(11), view.Events[0].ID)
	assert.Equal(t, []int64{11}, comps.events[created.ID])
}

func TestDeleteCompilationNotFound(t *testing.T) {
	svc, _ := newCompilationFixture()

	err := svc.Delete(context.Background(), 5)

	assertAppErr(t, err, apperr.KindNotFound, apperr.ReasonCompilationNotFound)
}

func TestListCompilationsFiltersPinned(t *testing.T) {
	svc, _ := newCompilationFixture(publishedEvent(10, 1, 0, false))
	_, err := svc.Create(context.Background(), &models.NewCompilationRequest{Title: "Pinned", Pinned: true})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &models.NewCompilationRequest{Title: "Plain"})
	require.NoError(t, err)

	pinned := true
	views, err := svc.List(context.Background(), &pinned, 0, 10)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Pinned", views[0].Title)
	assert.NotNil(t, views[0].Events)
}
