package postgres

import (
	"context"
	"encoding/json"

	"github.com/greenloop/ecopickup/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

const createTableStmt = `
    CREATE TABLE IF NOT EXISTS pickup_requests (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        user_name TEXT NOT NULL,
        user_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
        items JSONB NOT NULL,
        total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
        address TEXT NOT NULL DEFAULT '',
        distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
        scheduled_at TIMESTAMPTZ NOT NULL,
        urgency TEXT NOT NULL,
        status TEXT NOT NULL,
        pickup_type TEXT NOT NULL,
        payment_status TEXT NOT NULL,
        estimated_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        accepted_by TEXT,
        completed_at TIMESTAMPTZ,
        notes TEXT
    )`

const insertStmt = `
    INSERT INTO pickup_requests (
        id, user_id, user_name, user_rating, items, total_amount, address,
        distance_km, scheduled_at, urgency, status, pickup_type,
        payment_status, estimated_weight, created_at, updated_at,
        accepted_by, completed_at, notes
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
        $11, $12, $13, $14, $15, $16, $17, $18, $19
    )
    ON CONFLICT (id) DO UPDATE SET
        status = EXCLUDED.status,
        payment_status = EXCLUDED.payment_status,
        updated_at = EXCLUDED.updated_at,
        accepted_by = EXCLUDED.accepted_by,
        completed_at = EXCLUDED.completed_at,
        notes = EXCLUDED.notes`

func (r *RequestRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createTableStmt)
	return err
}

func (r *RequestRepository) BulkCreate(ctx context.Context, requests []models.PickupRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, request := range requests {
		items, err := json.Marshal(request.Items)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insertStmt,
			request.ID,
			request.UserID,
			request.UserName,
			request.UserRating,
			items,
			request.TotalAmount,
			request.Address,
			request.DistanceKm,
			request.ScheduledAt,
			request.Urgency,
			request.Status,
			request.PickupType,
			request.PaymentStatus,
			request.EstimatedWeight,
			request.CreatedAt,
			request.UpdatedAt,
			nullable(request.AcceptedBy),
			request.CompletedAt,
			nullable(request.Notes),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *RequestRepository) Create(ctx context.Context, request models.PickupRequest) error {
	items, err := json.Marshal(request.Items)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertStmt,
		request.ID,
		request.UserID,
		request.UserName,
		request.UserRating,
		items,
		request.TotalAmount,
		request.Address,
		request.DistanceKm,
		request.ScheduledAt,
		request.Urgency,
		request.Status,
		request.PickupType,
		request.PaymentStatus,
		request.EstimatedWeight,
		request.CreatedAt,
		request.UpdatedAt,
		nullable(request.AcceptedBy),
		request.CompletedAt,
		nullable(request.Notes),
	)
	return err
}

func (r *RequestRepository) GetAll(ctx context.Context) ([]models.PickupRequest, error) {
	query := `
        SELECT
            id, user_id, user_name, user_rating, items, total_amount, address,
            distance_km, scheduled_at, urgency, status, pickup_type,
            payment_status, estimated_weight, created_at, updated_at,
            accepted_by, completed_at, notes
        FROM pickup_requests
        ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.PickupRequest
	for rows.Next() {
		var request models.PickupRequest
		var items []byte
		var acceptedBy, notes *string
		err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.UserName,
			&request.UserRating,
			&items,
			&request.TotalAmount,
			&request.Address,
			&request.DistanceKm,
			&request.ScheduledAt,
			&request.Urgency,
			&request.Status,
			&request.PickupType,
			&request.PaymentStatus,
			&request.EstimatedWeight,
			&request.CreatedAt,
			&request.UpdatedAt,
			&acceptedBy,
			&request.CompletedAt,
			&notes,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &request.Items); err != nil {
			return nil, err
		}
		if acceptedBy != nil {
			request.AcceptedBy = *acceptedBy
		}
		if notes != nil {
			request.Notes = *notes
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *RequestRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pickup_requests`).Scan(&count)
	return count, err
}

func (r *RequestRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pickup_requests`)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
