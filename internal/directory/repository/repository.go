// Package repository provides pgx-backed persistence for the directory.
package repository

import (
	"context"
	"errors"

	"leadops_backend/internal/directory/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("directory entry not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Brokers

type CreateBrokerParams struct {
	Name    string
	Domain  string
	Enabled bool
}

func (r *Repository) CreateBroker(ctx context.Context, params CreateBrokerParams) (domain.ClientBroker, error) {
	var broker domain.ClientBroker
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_brokers (name, domain, enabled)
		VALUES ($1, $2, $3)
		RETURNING id, name, domain, enabled, created_at, updated_at`,
		params.Name, params.Domain, params.Enabled,
	).Scan(&broker.ID, &broker.Name, &broker.Domain, &broker.Enabled, &broker.CreatedAt, &broker.UpdatedAt)
	return broker, err
}

func (r *Repository) GetBroker(ctx context.Context, id uuid.UUID) (domain.ClientBroker, error) {
	var broker domain.ClientBroker
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, domain, enabled, created_at, updated_at
		FROM client_brokers WHERE id = $1`,
		id,
	).Scan(&broker.ID, &broker.Name, &broker.Domain, &broker.Enabled, &broker.CreatedAt, &broker.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ClientBroker{}, ErrNotFound
	}
	return broker, err
}

func (r *Repository) ListBrokers(ctx context.Context) ([]domain.ClientBroker, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, domain, enabled, created_at, updated_at
		FROM client_brokers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brokers []domain.ClientBroker
	for rows.Next() {
		var broker domain.ClientBroker
		if err := rows.Scan(&broker.ID, &broker.Name, &broker.Domain, &broker.Enabled, &broker.CreatedAt, &broker.UpdatedAt); err != nil {
			return nil, err
		}
		brokers = append(brokers, broker)
	}
	return brokers, rows.Err()
}

func (r *Repository) EnabledBrokerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM client_brokers WHERE enabled`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetBrokerEnabled flips the enabled flag, reporting the updated broker.
func (r *Repository) SetBrokerEnabled(ctx context.Context, id uuid.UUID, enabled bool) (domain.ClientBroker, error) {
	var broker domain.ClientBroker
	err := r.pool.QueryRow(ctx, `
		UPDATE client_brokers
		SET enabled = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, domain, enabled, created_at, updated_at`,
		id, enabled,
	).Scan(&broker.ID, &broker.Name, &broker.Domain, &broker.Enabled, &broker.CreatedAt, &broker.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ClientBroker{}, ErrNotFound
	}
	return broker, err
}

// Networks

func (r *Repository) CreateNetwork(ctx context.Context, name string, enabled bool) (domain.ClientNetwork, error) {
	var network domain.ClientNetwork
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_networks (name, enabled)
		VALUES ($1, $2)
		RETURNING id, name, enabled, created_at, updated_at`,
		name, enabled,
	).Scan(&network.ID, &network.Name, &network.Enabled, &network.CreatedAt, &network.UpdatedAt)
	return network, err
}

func (r *Repository) ListNetworks(ctx context.Context) ([]domain.ClientNetwork, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, enabled, created_at, updated_at
		FROM client_networks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var networks []domain.ClientNetwork
	for rows.Next() {
		var network domain.ClientNetwork
		if err := rows.Scan(&network.ID, &network.Name, &network.Enabled, &network.CreatedAt, &network.UpdatedAt); err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return networks, rows.Err()
}
