package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound                   = errors.New("lead not found")
	ErrDuplicateEmail             = errors.New("a lead with this email already exists")
	ErrDuplicateNetworkAssignment = errors.New("network already assigned for this order")
	ErrFingerprintExists          = errors.New("lead already has a fingerprint")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, email, first_name, last_name, phone, country, lead_type,
	is_assigned, assigned_to, assigned_at,
	broker_availability_status, sleep_put_at, sleep_reason, sleep_last_checked_at,
	fingerprint_id, device_type, ftd_sin, ftd_document_keys,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var (
		lead         domain.Lead
		leadType     string
		status       string
		sleepPutAt   *time.Time
		sleepReason  *string
		sleepChecked *time.Time
		ftdSIN       *string
		documentKeys []string
	)

	err := row.Scan(
		&lead.ID, &lead.Email, &lead.FirstName, &lead.LastName, &lead.Phone, &lead.Country, &leadType,
		&lead.IsAssigned, &lead.AssignedTo, &lead.AssignedAt,
		&status, &sleepPutAt, &sleepReason, &sleepChecked,
		&lead.FingerprintID, &lead.DeviceType, &ftdSIN, &documentKeys,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Type = domain.LeadType(leadType)
	lead.AvailabilityStatus = domain.AvailabilityStatus(status)
	if lead.AvailabilityStatus.Asleep() && sleepPutAt != nil {
		details := domain.SleepDetails{PutToSleepAt: *sleepPutAt}
		if sleepReason != nil {
			details.Reason = *sleepReason
		}
		if sleepChecked != nil {
			details.LastCheckedAt = *sleepChecked
		}
		lead.Sleep = &details
	}
	if lead.Type == domain.LeadTypeFTD {
		profile := domain.FTDProfile{DocumentKeys: documentKeys}
		if ftdSIN != nil {
			profile.SIN = *ftdSIN
		}
		lead.FTD = &profile
	}

	return lead, nil
}

type CreateLeadParams struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Country   string
	LeadType  domain.LeadType
	FTDSin    *string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO leads (email, first_name, last_name, phone, country, lead_type, ftd_sin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, leadColumns),
		params.Email, params.FirstName, params.LastName, params.Phone, params.Country,
		string(params.LeadType), params.FTDSin,
	)

	lead, err := scanLead(row)
	if isUniqueViolation(err, "idx_leads_email") {
		return domain.Lead{}, ErrDuplicateEmail
	}
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, leadColumns), id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM leads WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, leadColumns), email)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

type ListParams struct {
	LeadType   *domain.LeadType
	IsAssigned *bool
	Status     *domain.AvailabilityStatus
	Search     string
	Offset     int
	Limit      int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClauses := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argIdx := 1

	if params.LeadType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("lead_type = $%d", argIdx))
		args = append(args, string(*params.LeadType))
		argIdx++
	}
	if params.IsAssigned != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_assigned = $%d", argIdx))
		args = append(args, *params.IsAssigned)
		argIdx++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("broker_availability_status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d OR phone ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// ListSleeping returns a page of leads parked in sleep or
// not_available_brokers, oldest check first so the sweep revisits the most
// stale leads before recent ones.
func (r *Repository) ListSleeping(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE broker_availability_status IN ('sleep', 'not_available_brokers') AND deleted_at IS NULL
		ORDER BY sleep_last_checked_at ASC NULLS FIRST
		LIMIT $1 OFFSET $2
	`, leadColumns), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// SetAgentAssignment sets or clears the agent-level assignment. Passing a nil
// agent clears is_assigned and both assignment fields.
func (r *Repository) SetAgentAssignment(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET
			is_assigned = $2::uuid IS NOT NULL,
			assigned_to = $2,
			assigned_at = CASE WHEN $2::uuid IS NULL THEN NULL ELSE now() END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s
	`, leadColumns), id, agentID)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// SetAvailability writes the availability status and the sleep sub-structure
// in one statement. A nil details clears all sleep fields.
func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, status domain.AvailabilityStatus, details *domain.SleepDetails) (domain.Lead, error) {
	var (
		putAt     *time.Time
		reason    *string
		checkedAt *time.Time
	)
	if details != nil {
		putAt = &details.PutToSleepAt
		reason = &details.Reason
		checkedAt = &details.LastCheckedAt
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET
			broker_availability_status = $2,
			sleep_put_at = $3,
			sleep_reason = $4,
			sleep_last_checked_at = $5,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s
	`, leadColumns), id, string(status), putAt, reason, checkedAt)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// AppendDocumentKey records an uploaded identity-document object key on an
// FTD lead.
func (r *Repository) AppendDocumentKey(ctx context.Context, id uuid.UUID, key string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET ftd_document_keys = array_append(ftd_document_keys, $2), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, key)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
