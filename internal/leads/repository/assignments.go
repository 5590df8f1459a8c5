package repository

import (
	"context"
	"errors"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const brokerAssignmentColumns = `id, seq, lead_id, client_broker_id, order_id, assigned_by,
	intermediary_network_id, injection_status, domain, assigned_at`

const networkAssignmentColumns = `id, seq, lead_id, client_network_id, order_id, assigned_by,
	injection_status, injection_type, domain, injection_notes, assigned_at`

func scanBrokerAssignment(row rowScanner) (domain.BrokerAssignment, error) {
	var (
		record domain.BrokerAssignment
		status string
	)
	err := row.Scan(
		&record.ID, &record.Seq, &record.LeadID, &record.ClientBrokerID, &record.OrderID,
		&record.AssignedBy, &record.IntermediaryNetworkID, &status, &record.Domain, &record.AssignedAt,
	)
	record.Status = domain.InjectionStatus(status)
	return record, err
}

func scanNetworkAssignment(row rowScanner) (domain.NetworkAssignment, error) {
	var (
		record        domain.NetworkAssignment
		status        string
		injectionType *string
	)
	err := row.Scan(
		&record.ID, &record.Seq, &record.LeadID, &record.ClientNetworkID, &record.OrderID,
		&record.AssignedBy, &status, &injectionType, &record.Domain, &record.Notes, &record.AssignedAt,
	)
	record.Status = domain.NetworkInjectionStatus(status)
	if injectionType != nil {
		typed := domain.InjectionType(*injectionType)
		record.Type = &typed
	}
	return record, err
}

type AssignBrokerParams struct {
	LeadID                uuid.UUID
	ClientBrokerID        uuid.UUID
	OrderID               uuid.UUID
	AssignedBy            uuid.UUID
	IntermediaryNetworkID *uuid.UUID
	Domain                *string
}

// AssignBroker performs the broker assignment transaction: the active set add
// is idempotent, the history append always happens. Both run under a row lock
// on the lead so concurrent assignments against one lead serialize.
func (r *Repository) AssignBroker(ctx context.Context, params AssignBrokerParams) (domain.BrokerAssignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.BrokerAssignment{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockLead(ctx, tx, params.LeadID); err != nil {
		return domain.BrokerAssignment{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_active_brokers (lead_id, client_broker_id)
		VALUES ($1, $2)
		ON CONFLICT (lead_id, client_broker_id) DO NOTHING
	`, params.LeadID, params.ClientBrokerID); err != nil {
		return domain.BrokerAssignment{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO lead_broker_assignments
			(lead_id, client_broker_id, order_id, assigned_by, intermediary_network_id, domain)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+brokerAssignmentColumns,
		params.LeadID, params.ClientBrokerID, params.OrderID, params.AssignedBy,
		params.IntermediaryNetworkID, params.Domain,
	)
	record, err := scanBrokerAssignment(row)
	if err != nil {
		return domain.BrokerAssignment{}, err
	}

	return record, tx.Commit(ctx)
}

// RemoveActiveBroker drops the broker from the active set only; history rows
// are never touched.
func (r *Repository) RemoveActiveBroker(ctx context.Context, leadID, brokerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM lead_active_brokers WHERE lead_id = $1 AND client_broker_id = $2
	`, leadID, brokerID)
	return err
}

func (r *Repository) ActiveBrokerIDs(ctx context.Context, leadID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT client_broker_id FROM lead_active_brokers WHERE lead_id = $1 ORDER BY added_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *Repository) IsActiveBroker(ctx context.Context, leadID, brokerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM lead_active_brokers WHERE lead_id = $1 AND client_broker_id = $2)
	`, leadID, brokerID).Scan(&exists)
	return exists, err
}

func (r *Repository) ListBrokerAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.BrokerAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+brokerAssignmentColumns+` FROM lead_broker_assignments
		WHERE lead_id = $1 ORDER BY seq ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.BrokerAssignment, 0)
	for rows.Next() {
		record, err := scanBrokerAssignment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// BrokersEverAssigned returns the distinct brokers present anywhere in the
// lead's placement history.
func (r *Repository) BrokersEverAssigned(ctx context.Context, leadID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT client_broker_id FROM lead_broker_assignments WHERE lead_id = $1
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// UpdateLatestInjection sets the injection outcome on the most recently
// appended history record for (lead, order). Returns false when no record
// matches; the caller treats that as a silent no-op so stale callbacks from
// the injection subsystem never fail.
func (r *Repository) UpdateLatestInjection(ctx context.Context, leadID, orderID uuid.UUID, status domain.InjectionStatus, domainName *string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE lead_broker_assignments
		SET injection_status = $3, domain = COALESCE($4, domain)
		WHERE id = (
			SELECT id FROM lead_broker_assignments
			WHERE lead_id = $1 AND order_id = $2
			ORDER BY seq DESC
			LIMIT 1
		)
	`, leadID, orderID, string(status), domainName)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

type AssignNetworkParams struct {
	LeadID          uuid.UUID
	ClientNetworkID uuid.UUID
	OrderID         uuid.UUID
	AssignedBy      uuid.UUID
	InjectionType   *domain.InjectionType
}

// AppendNetworkAssignment inserts a pending network record. The unique
// constraint on (lead, network, order) makes concurrent duplicate attempts
// race-safe: exactly one insert wins, the rest observe the duplicate.
func (r *Repository) AppendNetworkAssignment(ctx context.Context, params AssignNetworkParams) (domain.NetworkAssignment, error) {
	var injectionType *string
	if params.InjectionType != nil {
		value := string(*params.InjectionType)
		injectionType = &value
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_network_assignments (lead_id, client_network_id, order_id, assigned_by, injection_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+networkAssignmentColumns,
		params.LeadID, params.ClientNetworkID, params.OrderID, params.AssignedBy, injectionType,
	)

	record, err := scanNetworkAssignment(row)
	if isUniqueViolation(err, "uq_network_assignment_per_order") {
		return domain.NetworkAssignment{}, ErrDuplicateNetworkAssignment
	}
	if isForeignKeyViolation(err) {
		return domain.NetworkAssignment{}, ErrNotFound
	}
	return record, err
}

func (r *Repository) ListNetworkAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.NetworkAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+networkAssignmentColumns+` FROM lead_network_assignments
		WHERE lead_id = $1 ORDER BY seq ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.NetworkAssignment, 0)
	for rows.Next() {
		record, err := scanNetworkAssignment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

type NetworkResultParams struct {
	Status        domain.NetworkInjectionStatus
	InjectionType *domain.InjectionType
	Domain        *string
	Notes         *string
}

// SetNetworkInjectionResult records the delivery outcome on the (network,
// order) record. Returns false when no record matches.
func (r *Repository) SetNetworkInjectionResult(ctx context.Context, leadID, networkID, orderID uuid.UUID, params NetworkResultParams) (bool, error) {
	var injectionType *string
	if params.InjectionType != nil {
		value := string(*params.InjectionType)
		injectionType = &value
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE lead_network_assignments
		SET injection_status = $4,
			injection_type = COALESCE($5, injection_type),
			domain = COALESCE($6, domain),
			injection_notes = COALESCE($7, injection_notes)
		WHERE lead_id = $1 AND client_network_id = $2 AND order_id = $3
	`, leadID, networkID, orderID, string(params.Status), injectionType, params.Domain, params.Notes)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func lockLead(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT id FROM leads WHERE id = $1 AND deleted_at IS NULL FOR UPDATE
	`, leadID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
