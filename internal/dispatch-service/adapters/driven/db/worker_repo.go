package db

import (
	"context"
	"database/sql"
	"errors"

	"instantfix/internal/dispatch-service/core/domain/model"
	"instantfix/internal/dispatch-service/core/myerrors"
	"instantfix/internal/dispatch-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type WorkerRepo struct {
	db *DB
}

func NewWorkerRepo(db *DB) ports.IWorkerRepo {
	return &WorkerRepo{db: db}
}

func (wr *WorkerRepo) FindById(ctx context.Context, workerId string) (model.Worker, error) {
	q := `
	SELECT
		worker_id,
		skills,
		is_available,
		approved,
		ST_X(location::geometry),
		ST_Y(location::geometry)
	FROM workers
	WHERE worker_id = $1`

	var (
		w        model.Worker
		lng, lat sql.NullFloat64
	)

	row := wr.db.conn.QueryRow(ctx, q, workerId)
	if err := row.Scan(&w.ID, &w.Skills, &w.IsAvailable, &w.Approved, &lng, &lat); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Worker{}, myerrors.ErrNotFound
		}
		return model.Worker{}, err
	}

	if lng.Valid && lat.Valid {
		w.Location = &model.GeoPoint{Longitude: lng.Float64, Latitude: lat.Float64}
	}
	return w, nil
}

func (wr *WorkerRepo) SetLocation(ctx context.Context, workerId string, loc model.GeoPoint) error {
	q := `
	UPDATE workers
	SET
		location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		last_active_at = NOW()
	WHERE worker_id = $1`

	tag, err := wr.db.conn.Exec(ctx, q, workerId, loc.Longitude, loc.Latitude)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.ErrNotFound
	}
	return nil
}

func (wr *WorkerRepo) SetAvailability(ctx context.Context, workerId string, isAvailable bool) error {
	q := `
	UPDATE workers
	SET
		is_available = $2,
		last_active_at = NOW()
	WHERE worker_id = $1`

	tag, err := wr.db.conn.Exec(ctx, q, workerId, isAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.ErrNotFound
	}
	return nil
}
