package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
)

const requestColumns = `
	request_id,
	customer_id,
	worker_id,
	issue_type,
	description,
	street, city, state, pincode,
	images,
	ST_X(location::geometry),
	ST_Y(location::geometry),
	status,
	rejected_by,
	created_at,
	started_at,
	completed_at,
	rejected_at`

type RequestRepo struct {
	db *DB
}

func NewRequestRepo(db *DB) ports.IRequestRepo {
	return &RequestRepo{db: db}
}

func (rr *RequestRepo) Create(ctx context.Context, m model.ServiceRequest) (string, error) {
	q := `
	INSERT INTO service_requests(
		customer_id,
		issue_type,
		description,
		street, city, state, pincode,
		images,
		location,
		status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		ST_SetSRID(ST_MakePoint($9, $10), 4326)::geography,
		$11)
	RETURNING request_id`

	conn := rr.db.conn
	row := conn.QueryRow(ctx, q,
		m.CustomerID,
		m.IssueType,
		m.Description,
		m.Address.Street,
		m.Address.City,
		m.Address.State,
		m.Address.Pincode,
		m.Images,
		m.Location.Longitude,
		m.Location.Latitude,
		m.Status,
	)

	requestId := ""
	if err := row.Scan(&requestId); err != nil {
		return "", err
	}
	return requestId, nil
}

func (rr *RequestRepo) FindById(ctx context.Context, requestId string) (model.ServiceRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM service_requests WHERE request_id = $1`

	row := rr.db.conn.QueryRow(ctx, q, requestId)
	m, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ServiceRequest{}, myerrors.ErrNotFound
		}
		return model.ServiceRequest{}, err
	}
	return m, nil
}

// ConditionalTransition is the row-level compare-and-swap every lifecycle
// move goes through: one UPDATE guarded on the expected status. With
// concurrent callers the database serializes the row writes, so exactly
// one guard passes and the rest see no row and come back as a conflict.
func (rr *RequestRepo) ConditionalTransition(ctx context.Context, requestId, expectedStatus string, mut model.TransitionMutation) (model.ServiceRequest, error) {
	q := `
	UPDATE service_requests
	SET
		status       = $3,
		worker_id    = COALESCE($4, worker_id),
		rejected_by  = CASE WHEN $5 THEN '{}'::text[] ELSE rejected_by END,
		started_at   = COALESCE($6, started_at),
		completed_at = COALESCE($7, completed_at)
	WHERE request_id = $1 AND status = $2
	RETURNING ` + requestColumns

	row := rr.db.conn.QueryRow(ctx, q,
		requestId,
		expectedStatus,
		mut.NewStatus,
		mut.WorkerID,
		mut.ClearRejections,
		mut.StartedAt,
		mut.CompletedAt,
	)

	m, err := scanRequest(row)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.ServiceRequest{}, err
	}

	// Guard failed: tell an unknown id apart from a lost race.
	exists := false
	if err := rr.db.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM service_requests WHERE request_id = $1)`, requestId,
	).Scan(&exists); err != nil {
		return model.ServiceRequest{}, err
	}
	if !exists {
		return model.ServiceRequest{}, myerrors.ErrNotFound
	}
	return model.ServiceRequest{}, myerrors.ErrConflict
}

func (rr *RequestRepo) AppendRejection(ctx context.Context, requestId, workerId string) error {
	q := `
	UPDATE service_requests
	SET
		rejected_by = array_append(rejected_by, $2),
		rejected_at = NOW()
	WHERE request_id = $1
	  AND status = 'pending'
	  AND NOT ($2 = ANY(rejected_by))`

	tag, err := rr.db.conn.Exec(ctx, q, requestId, workerId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var (
		status   string
		rejected bool
	)
	row := rr.db.conn.QueryRow(ctx,
		`SELECT status, $2 = ANY(rejected_by) FROM service_requests WHERE request_id = $1`,
		requestId, workerId)
	if err := row.Scan(&status, &rejected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return myerrors.ErrNotFound
		}
		return err
	}
	if rejected {
		return myerrors.ErrAlreadyRejected
	}
	return myerrors.ErrConflict
}

func (rr *RequestRepo) FindNearbyPending(ctx context.Context, workerId string, origin model.GeoPoint, maxMeters float64) ([]model.MatchCandidate, error) {
	q := `
	SELECT ` + requestColumns + `,
		ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance
	FROM service_requests
	WHERE status = 'pending'
	  AND NOT ($3 = ANY(rejected_by))
	  AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $4)`

	rows, err := rr.db.conn.Query(ctx, q, origin.Longitude, origin.Latitude, workerId, maxMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.MatchCandidate
	for rows.Next() {
		c := model.MatchCandidate{}
		m, err := scanRequestFromRows(rows, &c.DistanceMeters)
		if err != nil {
			return nil, err
		}
		c.Request = m
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (rr *RequestRepo) ListByCustomer(ctx context.Context, customerId string, offset, limit int) ([]model.ServiceRequest, int64, error) {
	countQ := `SELECT COUNT(*) FROM service_requests WHERE customer_id = $1`
	listQ := `SELECT ` + requestColumns + `
		FROM service_requests
		WHERE customer_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`

	return rr.list(ctx, countQ, listQ, []any{customerId}, offset, limit)
}

func (rr *RequestRepo) ListByWorker(ctx context.Context, workerId string, statuses []string, offset, limit int) ([]model.ServiceRequest, int64, error) {
	countQ := `SELECT COUNT(*) FROM service_requests WHERE worker_id = $1 AND status = ANY($2)`
	listQ := `SELECT ` + requestColumns + `
		FROM service_requests
		WHERE worker_id = $1 AND status = ANY($2)
		ORDER BY COALESCE(completed_at, created_at) DESC
		OFFSET $3 LIMIT $4`

	return rr.list(ctx, countQ, listQ, []any{workerId, statuses}, offset, limit)
}

func (rr *RequestRepo) list(ctx context.Context, countQ, listQ string, args []any, offset, limit int) ([]model.ServiceRequest, int64, error) {
	var total int64
	if err := rr.db.conn.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := rr.db.conn.Query(ctx, listQ, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []model.ServiceRequest
	for rows.Next() {
		m, err := scanRequestFromRows(rows, nil)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func scanRequest(row pgx.Row) (model.ServiceRequest, error) {
	return scanInto(row.Scan, nil)
}

func scanRequestFromRows(rows pgx.Rows, distance *float64) (model.ServiceRequest, error) {
	return scanInto(rows.Scan, distance)
}

func scanInto(scan func(dest ...any) error, distance *float64) (model.ServiceRequest, error) {
	var (
		m        model.ServiceRequest
		workerId sql.NullString
	)

	dest := []any{
		&m.ID,
		&m.CustomerID,
		&workerId,
		&m.IssueType,
		&m.Description,
		&m.Address.Street,
		&m.Address.City,
		&m.Address.State,
		&m.Address.Pincode,
		&m.Images,
		&m.Location.Longitude,
		&m.Location.Latitude,
		&m.Status,
		&m.RejectedBy,
		&m.CreatedAt,
		&m.StartedAt,
		&m.CompletedAt,
		&m.RejectedAt,
	}
	if distance != nil {
		dest = append(dest, distance)
	}

	if err := scan(dest...); err != nil {
		return model.ServiceRequest{}, fmt.Errorf("scan service request: %w", err)
	}
	m.WorkerID = workerId.String
	return m, nil
}
