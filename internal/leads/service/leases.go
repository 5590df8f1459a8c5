package service

import (
	"context"
	"errors"

	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/apperr"
	"leadops_backend/platform/logger"

	"github.com/google/uuid"
)

// Leases manages the external resources a lead holds: at most one browser
// fingerprint per lead, and at most one active proxy per (lead, order).
type Leases struct {
	reader       repository.LeadReader
	fingerprints repository.FingerprintStore
	proxies      repository.ProxyLeaseStore
	factory      ports.FingerprintFactory
	log          *logger.Logger
}

func NewLeases(reader repository.LeadReader, fingerprints repository.FingerprintStore, proxies repository.ProxyLeaseStore, factory ports.FingerprintFactory, log *logger.Logger) *Leases {
	return &Leases{reader: reader, fingerprints: fingerprints, proxies: proxies, factory: factory, log: log}
}

// AssignFingerprint provisions a fingerprint profile for a lead that has
// none. A lead that already holds one must go through UpdateDeviceType
// instead, so an accidental double-provision surfaces as a conflict.
func (s *Leases) AssignFingerprint(ctx context.Context, leadID uuid.UUID, deviceType string, createdBy uuid.UUID) (domain.Fingerprint, error) {
	if deviceType == "" {
		return domain.Fingerprint{}, apperr.Validation("device type is required")
	}
	if createdBy == uuid.Nil {
		return domain.Fingerprint{}, apperr.Validation("creator is required")
	}
	if _, err := s.reader.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Fingerprint{}, ErrLeadNotFound
		}
		return domain.Fingerprint{}, err
	}

	profileID, err := s.factory.CreateProfile(ctx, leadID, deviceType)
	if err != nil {
		return domain.Fingerprint{}, apperr.Wrap(apperr.KindInternal, "create fingerprint profile", err)
	}

	record, err := s.fingerprints.InsertFingerprint(ctx, repository.InsertFingerprintParams{
		ID:         profileID,
		LeadID:     leadID,
		DeviceType: deviceType,
		CreatedBy:  createdBy,
	})
	if errors.Is(err, repository.ErrFingerprintExists) {
		// Lost the race to a concurrent assignment. The freshly created
		// profile is orphaned; clean it up best-effort.
		if cleanupErr := s.factory.DeleteProfile(ctx, profileID); cleanupErr != nil {
			s.log.Warn("orphaned fingerprint profile cleanup failed",
				"fingerprint_id", profileID.String(), "error", cleanupErr.Error())
		}
		return domain.Fingerprint{}, ErrAlreadyAssigned
	}
	if err != nil {
		return domain.Fingerprint{}, err
	}
	return record, nil
}

func (s *Leases) Fingerprint(ctx context.Context, leadID uuid.UUID) (*domain.Fingerprint, error) {
	return s.fingerprints.GetFingerprint(ctx, leadID)
}

// UpdateDeviceType swaps a lead's fingerprint for one matching the new
// device type. Fingerprint resources are immutable in the external factory,
// so a change means destroy-and-recreate. Requesting the current device type
// is a no-op.
func (s *Leases) UpdateDeviceType(ctx context.Context, leadID uuid.UUID, deviceType string, createdBy uuid.UUID) (domain.Fingerprint, error) {
	if deviceType == "" {
		return domain.Fingerprint{}, apperr.Validation("device type is required")
	}
	if createdBy == uuid.Nil {
		return domain.Fingerprint{}, apperr.Validation("creator is required")
	}

	current, err := s.fingerprints.GetFingerprint(ctx, leadID)
	if err != nil {
		return domain.Fingerprint{}, err
	}
	if current == nil {
		return domain.Fingerprint{}, apperr.NotFound("lead has no fingerprint assigned")
	}
	if current.DeviceType == deviceType {
		return *current, nil
	}

	profileID, err := s.factory.CreateProfile(ctx, leadID, deviceType)
	if err != nil {
		return domain.Fingerprint{}, apperr.Wrap(apperr.KindInternal, "create fingerprint profile", err)
	}

	record, err := s.fingerprints.ReplaceFingerprint(ctx, repository.InsertFingerprintParams{
		ID:         profileID,
		LeadID:     leadID,
		DeviceType: deviceType,
		CreatedBy:  createdBy,
	})
	if err != nil {
		if cleanupErr := s.factory.DeleteProfile(ctx, profileID); cleanupErr != nil {
			s.log.Warn("orphaned fingerprint profile cleanup failed",
				"fingerprint_id", profileID.String(), "error", cleanupErr.Error())
		}
		return domain.Fingerprint{}, err
	}

	// The old profile is now unreferenced. Destroying it is best-effort;
	// the factory tolerates repeat deletes.
	if err := s.factory.DeleteProfile(ctx, current.ID); err != nil {
		s.log.Warn("stale fingerprint profile cleanup failed",
			"fingerprint_id", current.ID.String(), "error", err.Error())
	}
	return record, nil
}

// AssignProxy leases a proxy to a lead for one order. If the lead already
// holds an active lease for that order, the existing lease is returned and
// leased reports false.
func (s *Leases) AssignProxy(ctx context.Context, leadID, proxyID, orderID uuid.UUID) (domain.ProxyLease, bool, error) {
	leased, err := s.proxies.InsertProxyLease(ctx, leadID, proxyID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ProxyLease{}, false, ErrLeadNotFound
		}
		return domain.ProxyLease{}, false, err
	}

	lease, err := s.proxies.ActiveProxyLease(ctx, leadID, orderID)
	if err != nil {
		return domain.ProxyLease{}, false, err
	}
	if lease == nil {
		// Leased then lost between insert and read; treat as completed in
		// the interim and report the insert outcome.
		return domain.ProxyLease{}, leased, nil
	}

	if leased {
		s.log.Assignment("assign_proxy", leadID.String(), proxyID.String(), orderID.String())
	}
	return *lease, leased, nil
}

func (s *Leases) ActiveProxy(ctx context.Context, leadID, orderID uuid.UUID) (*domain.ProxyLease, error) {
	return s.proxies.ActiveProxyLease(ctx, leadID, orderID)
}

func (s *Leases) ProxyHistory(ctx context.Context, leadID uuid.UUID) ([]domain.ProxyLease, error) {
	return s.proxies.ListProxyLeases(ctx, leadID)
}

// CompleteProxyAssignment closes the active lease for (lead, order) with a
// terminal status. Completing when no lease is active reports false; lease
// completions can arrive from retried automation runs, so that is not an
// error.
func (s *Leases) CompleteProxyAssignment(ctx context.Context, leadID, orderID uuid.UUID, status domain.ProxyLeaseStatus) (bool, error) {
	if !status.Terminal() {
		return false, apperr.Validation("proxy lease completion requires a terminal status")
	}

	closed, err := s.proxies.CompleteProxyLease(ctx, leadID, orderID, status)
	if err != nil {
		return false, err
	}
	if !closed {
		s.log.Warn("proxy lease completion matched no active lease",
			"lead_id", leadID.String(), "order_id", orderID.String())
	}
	return closed, nil
}
