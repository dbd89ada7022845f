package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type fakeComments struct {
	m    map[int64]models.Comment
	next int64
}

func newFakeComments(comments ...models.Comment) *fakeComments {
	f := &fakeComments{m: make(map[int64]models.Comment)}
	for _, c := range comments {
		f.m[c.ID] = c
		if c.ID > f.next {
			f.next = c.ID
		}
	}
	return f
}

func (f *fakeComments) Create(_ context.Context, comment *models.Comment) error {
	f.next++
	comment.ID = f.next
	f.m[comment.ID] = *comment
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	if c, ok := f.m[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeComments) GetByIDEventAndAuthor(_ context.Context, id, eventID, authorID int64) (*models.Comment, error) {
	if c, ok := f.m[id]; ok && c.EventID == eventID && c.AuthorID == authorID {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeComments) Update(_ context.Context, comment *models.Comment) error {
	f.m[comment.ID] = *comment
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.m[id]; !ok {
		return false, nil
	}
	delete(f.m, id)
	return true, nil
}

func (f *fakeComments) DeleteByIDEventAndAuthor(_ context.Context, id, eventID, authorID int64) (bool, error) {
	if c, ok := f.m[id]; ok && c.EventID == eventID && c.AuthorID == authorID {
		delete(f.m, id)
		return true, nil
	}
	return false, nil
}

func (f *fakeComments) ListPublishedByEvent(_ context.Context, eventID int64, from, size int) ([]models.Comment, error) {
	var comments []models.Comment
	for _, c := range f.m {
		if c.EventID == eventID && c.Status == models.CommentStatusPublished {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return page(comments, from, size), nil
}

func (f *fakeComments) ListByAuthor(_ context.Context, authorID int64, from, size int) ([]models.Comment, error) {
	var comments []models.Comment
	for _, c := range f.m {
		if c.AuthorID == authorID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return page(comments, from, size), nil
}

func newCommentService(comments *fakeComments, events *fakeEvents, users *fakeUsers) *CommentService {
	svc := NewCommentService(comments, events, users)
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateCommentStartsPending(t *testing.T) {
	users := newFakeUsers(models.User{ID: 2, Email: "d@e.f", Name: "Bob"})
	events := newFakeEvents(publishedEvent(10, 1, 0, false))
	comments := newFakeComments()
	svc := newCommentService(comments, events, users)

	comment, err := svc.Create(context.Background(), 2, 10, &models.NewCommentRequest{Text: "Great lineup"})

	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusPending, comment.Status)
	assert.Equal(t, int64(2), comment.AuthorID)
	assert.Equal(t, int64(10), comment.EventID)
}

func TestCreateCommentRejectsUnpublishedEvent(t *testing.T) {
	users := newFakeUsers(models.User{ID: 2, Email: "d@e.f", Name: "Bob"})
	event := publishedEvent(10, 1, 0, false)
	event.State = models.EventStatePending
	event.PublishedOn = nil
	events := newFakeEvents(event)
	svc := newCommentService(newFakeComments(), events, users)

	_, err := svc.Create(context.Background(), 2, 10, &models.NewCommentRequest{Text: "Great lineup"})

	assertAppErr(t, err, apperr.KindConflict, apperr.ReasonNotPublished)
}

func TestUpdateOwnCommentResetsModeration(t *testing.T) {
	users := newFakeUsers(models.User{ID: 2, Email: "d@e.f", Name: "Bob"})
	events := newFakeEvents(publishedEvent(10, 1, 0, false))
	comments := newFakeComments(models.Comment{
		ID: 1, EventID: 10, AuthorID: 2, Text: "Great lineup", Status: models.CommentStatusPublished,
	})
	svc := newCommentService(comments, events, users)

	comment, err := svc.UpdateOwn(context.Background(), 2, 10, 1, &models.NewCommentRequest{Text: "Even better lineup"})

	require.NoError(t, err)
	assert.Equal(t, "Even better lineup", comment.Text)
	assert.Equal(t, models.CommentStatusPending, comment.Status)
}

func TestUpdateForeignCommentNotFound(t *testing.T) {
	users := newFakeUsers(models.User{ID: 3, Email: "x@y.z", Name: "Eve"})
	events := newFakeEvents(publishedEvent(10, 1, 0, false))
	comments := newFakeComments(models.Comment{
		ID: 1, EventID: 10, AuthorID: 2, Text: "Great lineup", Status: models.CommentStatusPublished,
	})
	svc := newCommentService(comments, events, users)

	_, err := svc.UpdateOwn(context.Background(), 3, 10, 1, &models.NewCommentRequest{Text: "hijack"})

	assertAppErr(t, err, apperr.KindNotFound, apperr.ReasonCommentNotFound)
}

func TestModerateComment(t *testing.T) {
	users := newFakeUsers()
	events := newFakeEvents()
	comments := newFakeComments(models.Comment{
		ID: 1, EventID: 10, AuthorID: 2, Text: "Great lineup", Status: models.CommentStatusPending,
	})
	svc := newCommentService(comments, events, users)

	comment, err := svc.Moderate(context.Background(), 1, models.CommentStatusPublished)

	require.NoError(t, err)
	assert.Equal(t, models.CommentStatusPublished, comment.Status)
}

func TestListPublishedHidesPending(t *testing.T) {
	users := newFakeUsers()
	events := newFakeEvents(publishedEvent(10, 1, 0, false))
	comments := newFakeComments(
		models.Comment{ID: 1, EventID: 10, AuthorID: 2, Text: "visible", Status: models.CommentStatusPublished},
		models.Comment{ID: 2, EventID: 10, AuthorID: 3, Text: "awaiting", Status: models.CommentStatusPending},
	)
	svc := newCommentService(comments, events, users)

	list, err := svc.ListPublished(context.Background(), 10, 0, 10)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "visible", list[0].Text)
}

func TestDeleteOwnCommentIdempotenceMiss(t *testing.T) {
	users := newFakeUsers()
	events := newFakeEvents()
	svc := newCommentService(newFakeComments(), events, users)

	err := svc.DeleteOwn(context.Background(), 2, 10, 99)

	assertAppErr(t, err, apperr.KindNotFound, apperr.ReasonCommentNotFound)
}
