package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"afisha/internal/models"
)

// In-memory fakes backing the service tests.

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.published = append(p.published, subject)
	return nil
}

type fakeUsers struct {
	m    map[int64]models.User
	next int64
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{m: make(map[int64]models.User)}
	for _, u := range users {
		f.m[u.ID] = u
		if u.ID > f.next {
			f.next = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.next++
	user.ID = f.next
	f.m[user.ID] = *user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.m[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.m {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) List(_ context.Context, ids []int64, from, size int) ([]models.User, error) {
	var users []models.User
	for _, u := range f.m {
		if len(ids) == 0 || containsID(ids, u.ID) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, from, size), nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.m[id]; !ok {
		return false, nil
	}
	delete(f.m, id)
	return true, nil
}

type fakeCategories struct {
	m     map[int64]models.Category
	next  int64
	inUse map[int64]bool
}

func newFakeCategories(categories ...models.Category) *fakeCategories {
	f := &fakeCategories{m: make(map[int64]models.Category), inUse: make(map[int64]bool)}
	for _, c := range categories {
		f.m[c.ID] = c
		if c.ID > f.next {
			f.next = c.ID
		}
	}
	return f
}

func (f *fakeCategories) Create(_ context.Context, category *models.Category) error {
	f.next++
	category.ID = f.next
	f.m[category.ID] = *category
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	if c, ok := f.m[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCategories) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range f.m {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategories) Update(_ context.Context, category *models.Category) error {
	f.m[category.ID] = *category
	return nil
}

func (f *fakeCategories) InUse(_ context.Context, id int64) (bool, error) {
	return f.inUse[id], nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.m[id]; !ok {
		return false, nil
	}
	delete(f.m, id)
	return true, nil
}

func (f *fakeCategories) List(_ context.Context, from, size int) ([]models.Category, error) {
	var categories []models.Category
	for _, c := range f.m {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return page(categories, from, size), nil
}

type fakeLocations struct {
	m    map[int64]models.Location
	next int64
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{m: make(map[int64]models.Location)}
}

func (f *fakeLocations) GetOrCreate(_ context.Context, lat, lon float64) (*models.Location, error) {
	for _, l := range f.m {
		if l.Lat == lat && l.Lon == lon {
			return &l, nil
		}
	}
	f.next++
	location := models.Location{ID: f.next, Lat: lat, Lon: lon}
	f.m[location.ID] = location
	return &location, nil
}

func (f *fakeLocations) GetByID(_ context.Context, id int64) (*models.Location, error) {
	if l, ok := f.m[id]; ok {
		return &l, nil
	}
	return nil, nil
}

type fakeEvents struct {
	m    map[int64]models.Event
	next int64
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{m: make(map[int64]models.Event)}
	for _, e := range events {
		f.m[e.ID] = e
		if e.ID > f.next {
			f.next = e.ID
		}
	}
	return f
}

func (f *fakeEvents) Create(_ context.Context, event *models.Event) error {
	f.next++
	event.ID = f.next
	f.m[event.ID] = *event
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if e, ok := f.m[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeEvents) GetByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEvents) GetByIDAndInitiator(_ context.Context, id, initiatorID int64) (*models.Event, error) {
	if e, ok := f.m[id]; ok && e.InitiatorID == initiatorID {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeEvents) GetByIDAndInitiatorForUpdate(ctx context.Context, id, initiatorID int64) (*models.Event, error) {
	return f.GetByIDAndInitiator(ctx, id, initiatorID)
}

func (f *fakeEvents) GetByIDAndState(_ context.Context, id int64, state models.EventState) (*models.Event, error) {
	if e, ok := f.m[id]; ok && e.State == state {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeEvents) GetByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	var events []models.Event
	for _, id := range ids {
		if e, ok := f.m[id]; ok {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (f *fakeEvents) Update(_ context.Context, event *models.Event) error {
	f.m[event.ID] = *event
	return nil
}

func (f *fakeEvents) ListByInitiator(_ context.Context, initiatorID int64, from, size int) ([]models.Event, error) {
	var events []models.Event
	for _, e := range f.m {
		if e.InitiatorID == initiatorID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return page(events, from, size), nil
}

func (f *fakeEvents) ListByInitiators(_ context.Context, initiatorIDs []int64, from, size int) ([]models.Event, error) {
	var events []models.Event
	for _, e := range f.m {
		if e.State == models.EventStatePublished && containsID(initiatorIDs, e.InitiatorID) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].EventDate.Before(events[j].EventDate) })
	return page(events, from, size), nil
}

func (f *fakeEvents) FindAdmin(_ context.Context, filter models.AdminEventFilter) ([]models.Event, error) {
	var events []models.Event
	for _, e := range f.m {
		if len(filter.UserIDs) > 0 && !containsID(filter.UserIDs, e.InitiatorID) {
			continue
		}
		if len(filter.States) > 0 && !containsState(filter.States, e.State) {
			continue
		}
		if !matchesBase(e, filter.EventFilter) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return page(events, filter.From, filter.Size), nil
}

func (f *fakeEvents) FindPublic(_ context.Context, filter models.PublicEventFilter) ([]models.Event, error) {
	var events []models.Event
	for _, e := range f.m {
		if e.State != models.EventStatePublished {
			continue
		}
		if len(filter.IDs) > 0 && !containsID(filter.IDs, e.ID) {
			continue
		}
		if filter.Text != "" {
			text := strings.ToLower(filter.Text)
			desc := ""
			if e.Description != nil {
				desc = *e.Description
			}
			if !strings.Contains(strings.ToLower(e.Annotation), text) &&
				!strings.Contains(strings.ToLower(desc), text) {
				continue
			}
		}
		if filter.Paid != nil && e.Paid != *filter.Paid {
			continue
		}
		if filter.RangeStart == nil && filter.RangeEnd == nil && !e.EventDate.After(time.Now()) {
			continue
		}
		if !matchesBase(e, filter.EventFilter) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].EventDate.Before(events[j].EventDate) })
	return page(events, filter.From, filter.Size), nil
}

type fakeRequests struct {
	m    map[int64]models.Request
	next int64
}

func newFakeRequests(requests ...models.Request) *fakeRequests {
	f := &fakeRequests{m: make(map[int64]models.Request)}
	for _, r := range requests {
		f.m[r.ID] = r
		if r.ID > f.next {
			f.next = r.ID
		}
	}
	return f
}

func (f *fakeRequests) Create(_ context.Context, request *models.Request) error {
	f.next++
	request.ID = f.next
	f.m[request.ID] = *request
	return nil
}

func (f *fakeRequests) ExistsByRequesterAndEvent(_ context.Context, requesterID, eventID int64) (bool, error) {
	for _, r := range f.m {
		if r.RequesterID == requesterID && r.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequests) CountConfirmed(_ context.Context, eventID int64) (int64, error) {
	var count int64
	for _, r := range f.m {
		if r.EventID == eventID && r.Status == models.RequestStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (f *fakeRequests) CountConfirmedByEventIDs(_ context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, r := range f.m {
		if containsID(eventIDs, r.EventID) && r.Status == models.RequestStatusConfirmed {
			counts[r.EventID]++
		}
	}
	return counts, nil
}

func (f *fakeRequests) GetByIDAndRequester(_ context.Context, id, requesterID int64) (*models.Request, error) {
	if r, ok := f.m[id]; ok && r.RequesterID == requesterID {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id int64, status models.RequestStatus) error {
	r := f.m[id]
	r.Status = status
	f.m[id] = r
	return nil
}

func (f *fakeRequests) UpdateStatusByIDs(_ context.Context, ids []int64, eventID int64, status models.RequestStatus) error {
	for _, id := range ids {
		if r, ok := f.m[id]; ok && r.EventID == eventID && r.Status == models.RequestStatusPending {
			r.Status = status
			f.m[id] = r
		}
	}
	return nil
}

func (f *fakeRequests) RejectAllPending(_ context.Context, eventID int64) error {
	for id, r := range f.m {
		if r.EventID == eventID && r.Status == models.RequestStatusPending {
			r.Status = models.RequestStatusRejected
			f.m[id] = r
		}
	}
	return nil
}

func (f *fakeRequests) FindByIDs(_ context.Context, ids []int64, eventID int64) ([]models.Request, error) {
	var requests []models.Request
	for _, r := range f.m {
		if containsID(ids, r.ID) && r.EventID == eventID {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (f *fakeRequests) FindByRequester(_ context.Context, requesterID int64) ([]models.Request, error) {
	var requests []models.Request
	for _, r := range f.m {
		if r.RequesterID == requesterID {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (f *fakeRequests) FindByEvent(_ context.Context, eventID int64) ([]models.Request, error) {
	var requests []models.Request
	for _, r := range f.m {
		if r.EventID == eventID {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

type fakeSubscriptions struct {
	m    map[int64]models.Subscription
	next int64
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{m: make(map[int64]models.Subscription)}
}

func (f *fakeSubscriptions) Create(_ context.Context, subscription *models.Subscription) error {
	for _, s := range f.m {
		if s.UserID == subscription.UserID && s.TargetID == subscription.TargetID {
			subscription.ID = s.ID
			return nil
		}
	}
	f.next++
	subscription.ID = f.next
	f.m[subscription.ID] = *subscription
	return nil
}

func (f *fakeSubscriptions) Delete(_ context.Context, userID, targetID int64) (bool, error) {
	for id, s := range f.m {
		if s.UserID == userID && s.TargetID == targetID {
			delete(f.m, id)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubscriptions) ListByUser(_ context.Context, userID int64) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	for _, s := range f.m {
		if s.UserID == userID {
			subscriptions = append(subscriptions, s)
		}
	}
	sort.Slice(subscriptions, func(i, j int) bool { return subscriptions[i].ID < subscriptions[j].ID })
	return subscriptions, nil
}

func (f *fakeSubscriptions) TargetIDs(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, s := range f.m {
		if s.UserID == userID {
			ids = append(ids, s.TargetID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsState(states []models.EventState, state models.EventState) bool {
	for _, v := range states {
		if v == state {
			return true
		}
	}
	return false
}

func matchesBase(e models.Event, base models.EventFilter) bool {
	if len(base.CategoryIDs) > 0 && !containsID(base.CategoryIDs, e.CategoryID) {
		return false
	}
	if base.RangeStart != nil && e.EventDate.Before(*base.RangeStart) {
		return false
	}
	if base.RangeEnd != nil && e.EventDate.After(*base.RangeEnd) {
		return false
	}
	return true
}

func page[T any](items []T, from, size int) []T {
	if from >= len(items) {
		return nil
	}
	items = items[from:]
	if size > 0 && size < len(items) {
		items = items[:size]
	}
	return items
}
