package repository

import (
	"context"
	"database/sql"

	"afisha/internal/database"
	"afisha/internal/models"

	"github.com/lib/pq"
)

type RequestRepository struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, event_id, requester_id, created, status`

func scanRequest(row interface{ Scan(...any) error }) (*models.Request, error) {
	request := &models.Request{}
	err := row.Scan(
		&request.ID,
		&request.EventID,
		&request.RequesterID,
		&request.Created,
		&request.Status,
	)
	return request, err
}

func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	query := `
		INSERT INTO requests (event_id, requester_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.Q(ctx).QueryRowContext(ctx, query,
		request.EventID,
		request.RequesterID,
		request.Created,
		request.Status,
	).Scan(&request.ID)
}

func (r *RequestRepository) ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM requests WHERE requester_id = $1 AND event_id = $2)`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, requesterID, eventID).Scan(&exists)
	return exists, err
}

// CountConfirmed returns the number of CONFIRMED requests for the event. The
// admission-control capacity check runs this inside the event-locking
// transaction so the count cannot move under it.
func (r *RequestRepository) CountConfirmed(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = 'CONFIRMED'`

	err := r.db.Q(ctx).QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

// CountConfirmedByEventIDs returns confirmed counts grouped by event for
// read-time enrichment.
func (r *RequestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	query := `
		SELECT event_id, COUNT(*)
		FROM requests
		WHERE event_id = ANY($1) AND status = 'CONFIRMED'
		GROUP BY event_id`

	rows, err := r.db.Q(ctx).QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, count int64
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, err
		}
		counts[eventID] = count
	}

	return counts, rows.Err()
}

func (r *RequestRepository) GetByIDAndRequester(ctx context.Context, id, requesterID int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 AND requester_id = $2`

	request, err := scanRequest(r.db.Q(ctx).QueryRowContext(ctx, query, id, requesterID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return request, err
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	_, err := r.db.Q(ctx).ExecContext(ctx,
		`UPDATE requests SET status = $1 WHERE id = $2`, status, id)
	return err
}

// UpdateStatusByIDs applies status to every request in ids that belongs to
// the event and is still PENDING. Mismatched ids are silently ignored.
func (r *RequestRepository) UpdateStatusByIDs(ctx context.Context, ids []int64, eventID int64, status models.RequestStatus) error {
	query := `
		UPDATE requests
		SET status = $1
		WHERE id = ANY($2) AND event_id = $3 AND status = 'PENDING'`

	_, err := r.db.Q(ctx).ExecContext(ctx, query, status, pq.Array(ids), eventID)
	return err
}

// RejectAllPending rejects every remaining PENDING request of the event.
// Used for the capacity-exhaustion cascade.
func (r *RequestRepository) RejectAllPending(ctx context.Context, eventID int64) error {
	query := `
		UPDATE requests
		SET status = 'REJECTED'
		WHERE event_id = $1 AND status = 'PENDING'`

	_, err := r.db.Q(ctx).ExecContext(ctx, query, eventID)
	return err
}

// FindByIDs returns the requests of the event whose ids are in ids, in id
// order. Ids that belong to other events simply do not match.
func (r *RequestRepository) FindByIDs(ctx context.Context, ids []int64, eventID int64) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
		WHERE id = ANY($1) AND event_id = $2
		ORDER BY id`

	return r.queryRequests(ctx, query, pq.Array(ids), eventID)
}

func (r *RequestRepository) FindByRequester(ctx context.Context, requesterID int64) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
		WHERE requester_id = $1
		ORDER BY id`

	return r.queryRequests(ctx, query, requesterID)
}

func (r *RequestRepository) FindByEvent(ctx context.Context, eventID int64) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
		WHERE event_id = $1
		ORDER BY id`

	return r.queryRequests(ctx, query, eventID)
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := r.db.Q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}

	return requests, rows.Err()
}
