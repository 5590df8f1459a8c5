// Package repository provides pgx-backed persistence for order lead quotas.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Quota is the requested lead count for one (order, lead type).
type Quota struct {
	LeadType  string
	Requested int
}

// SetQuotas replaces the full quota set for an order in one transaction, so
// partial writes never leave an order with a mixed old/new request.
func (r *Repository) SetQuotas(ctx context.Context, orderID uuid.UUID, quotas []Quota) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_lead_requests WHERE order_id = $1`, orderID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, quota := range quotas {
		batch.Queue(`
			INSERT INTO order_lead_requests (order_id, lead_type, requested, updated_at)
			VALUES ($1, $2, $3, now())`,
			orderID, quota.LeadType, quota.Requested,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetQuotas returns the requested counts keyed by lead type.
func (r *Repository) GetQuotas(ctx context.Context, orderID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lead_type, requested FROM order_lead_requests WHERE order_id = $1`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := make(map[string]int)
	for rows.Next() {
		var leadType string
		var requested int
		if err := rows.Scan(&leadType, &requested); err != nil {
			return nil, err
		}
		quotas[leadType] = requested
	}
	return quotas, rows.Err()
}
