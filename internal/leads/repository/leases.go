package repository

import (
	"context"
	"errors"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const proxyLeaseColumns = `id, lead_id, proxy_id, order_id, status, assigned_at, completed_at`

func scanProxyLease(row rowScanner) (domain.ProxyLease, error) {
	var (
		lease  domain.ProxyLease
		status string
	)
	err := row.Scan(
		&lease.ID, &lease.LeadID, &lease.ProxyID, &lease.OrderID,
		&status, &lease.AssignedAt, &lease.CompletedAt,
	)
	lease.Status = domain.ProxyLeaseStatus(status)
	return lease, err
}

// InsertProxyLease appends an active lease unless one already exists for the
// (lead, order) pair. The partial unique index turns the concurrent case into
// a unique violation, reported as leased=false just like the sequential case.
func (r *Repository) InsertProxyLease(ctx context.Context, leadID, proxyID, orderID uuid.UUID) (bool, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_proxy_leases (lead_id, proxy_id, order_id)
		VALUES ($1, $2, $3)
	`, leadID, proxyID, orderID)
	if isUniqueViolation(err, "uq_proxy_lease_active") {
		return false, nil
	}
	if isForeignKeyViolation(err) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ActiveProxyLease returns the active lease for (lead, order), or nil.
func (r *Repository) ActiveProxyLease(ctx context.Context, leadID, orderID uuid.UUID) (*domain.ProxyLease, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+proxyLeaseColumns+` FROM lead_proxy_leases
		WHERE lead_id = $1 AND order_id = $2 AND status = 'active'
	`, leadID, orderID)

	lease, err := scanProxyLease(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// CompleteProxyLease transitions the active lease for (lead, order) to the
// given terminal status. Returns false when no active lease exists.
func (r *Repository) CompleteProxyLease(ctx context.Context, leadID, orderID uuid.UUID, status domain.ProxyLeaseStatus) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE lead_proxy_leases
		SET status = $3, completed_at = now()
		WHERE lead_id = $1 AND order_id = $2 AND status = 'active'
	`, leadID, orderID, string(status))
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *Repository) ListProxyLeases(ctx context.Context, leadID uuid.UUID) ([]domain.ProxyLease, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proxyLeaseColumns+` FROM lead_proxy_leases
		WHERE lead_id = $1 ORDER BY assigned_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leases := make([]domain.ProxyLease, 0)
	for rows.Next() {
		lease, err := scanProxyLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, lease)
	}

	return leases, rows.Err()
}

// GetFingerprint returns the lead's fingerprint reference, or nil.
func (r *Repository) GetFingerprint(ctx context.Context, leadID uuid.UUID) (*domain.Fingerprint, error) {
	var fingerprint domain.Fingerprint
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, device_type, created_by, created_at
		FROM lead_fingerprints WHERE lead_id = $1
	`, leadID).Scan(
		&fingerprint.ID, &fingerprint.LeadID, &fingerprint.DeviceType,
		&fingerprint.CreatedBy, &fingerprint.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fingerprint, nil
}

type InsertFingerprintParams struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	DeviceType string
	CreatedBy  uuid.UUID
}

// InsertFingerprint stores the fingerprint reference and caches the device
// type on the lead. The unique constraint on lead_id rejects a second
// fingerprint even under concurrent callers.
func (r *Repository) InsertFingerprint(ctx context.Context, params InsertFingerprintParams) (domain.Fingerprint, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Fingerprint{}, err
	}
	defer tx.Rollback(ctx)

	var fingerprint domain.Fingerprint
	err = tx.QueryRow(ctx, `
		INSERT INTO lead_fingerprints (id, lead_id, device_type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, device_type, created_by, created_at
	`, params.ID, params.LeadID, params.DeviceType, params.CreatedBy).Scan(
		&fingerprint.ID, &fingerprint.LeadID, &fingerprint.DeviceType,
		&fingerprint.CreatedBy, &fingerprint.CreatedAt,
	)
	if isUniqueViolation(err, "uq_fingerprint_per_lead") {
		return domain.Fingerprint{}, ErrFingerprintExists
	}
	if isForeignKeyViolation(err) {
		return domain.Fingerprint{}, ErrNotFound
	}
	if err != nil {
		return domain.Fingerprint{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET fingerprint_id = $2, device_type = $3, updated_at = now()
		WHERE id = $1
	`, params.LeadID, fingerprint.ID, params.DeviceType); err != nil {
		return domain.Fingerprint{}, err
	}

	return fingerprint, tx.Commit(ctx)
}

// ReplaceFingerprint swaps the lead's fingerprint reference for a new one in
// a single transaction; the old external resource is destroyed by the caller.
func (r *Repository) ReplaceFingerprint(ctx context.Context, params InsertFingerprintParams) (domain.Fingerprint, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Fingerprint{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockLead(ctx, tx, params.LeadID); err != nil {
		return domain.Fingerprint{}, err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM lead_fingerprints WHERE lead_id = $1
	`, params.LeadID); err != nil {
		return domain.Fingerprint{}, err
	}

	var fingerprint domain.Fingerprint
	err = tx.QueryRow(ctx, `
		INSERT INTO lead_fingerprints (id, lead_id, device_type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, device_type, created_by, created_at
	`, params.ID, params.LeadID, params.DeviceType, params.CreatedBy).Scan(
		&fingerprint.ID, &fingerprint.LeadID, &fingerprint.DeviceType,
		&fingerprint.CreatedBy, &fingerprint.CreatedAt,
	)
	if err != nil {
		return domain.Fingerprint{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET fingerprint_id = $2, device_type = $3, updated_at = now()
		WHERE id = $1
	`, params.LeadID, fingerprint.ID, params.DeviceType); err != nil {
		return domain.Fingerprint{}, err
	}

	return fingerprint, tx.Commit(ctx)
}
