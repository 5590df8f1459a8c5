package service

import (
	"context"
	"errors"
	"time"

	"leadops_backend/internal/events"
	"leadops_backend/internal/leads/domain"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/leads/repository"
	"leadops_backend/platform/apperr"
	"leadops_backend/platform/logger"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
)

const (
	sweepPageSize         = 200
	sweepCheckConcurrency = 8
)

// Availability runs the sleep/wake state machine. A lead sleeps when no
// enabled client broker can take it; the sweep re-checks sleeping leads
// against the current broker inventory and wakes the ones that became
// placeable.
type Availability struct {
	reader    repository.LeadReader
	writer    repository.LeadWriter
	brokers   repository.BrokerAssignmentStore
	directory ports.BrokerDirectory
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func NewAvailability(reader repository.LeadReader, writer repository.LeadWriter, brokers repository.BrokerAssignmentStore, directory ports.BrokerDirectory, bus events.Bus, log *logger.Logger) *Availability {
	return &Availability{
		reader:    reader,
		writer:    writer,
		brokers:   brokers,
		directory: directory,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// PutToSleep parks a lead. Re-sleeping an already-sleeping lead is
// re-entrant: the original sleep timestamp survives, the reason and check
// time are refreshed.
func (s *Availability) PutToSleep(ctx context.Context, leadID uuid.UUID, reason string) (domain.Lead, error) {
	if reason == "" {
		return domain.Lead{}, apperr.Validation("sleep reason is required")
	}

	lead, err := s.reader.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}

	now := s.now()
	if lead.AvailabilityStatus.Asleep() {
		details := domain.SleepDetails{
			PutToSleepAt:  now,
			Reason:        reason,
			LastCheckedAt: now,
		}
		if lead.Sleep != nil {
			details.PutToSleepAt = lead.Sleep.PutToSleepAt
		}
		return s.writer.SetAvailability(ctx, leadID, lead.AvailabilityStatus, &details)
	}

	lead, err = s.writer.SetAvailability(ctx, leadID, domain.AvailabilitySleep, &domain.SleepDetails{
		PutToSleepAt:  now,
		Reason:        reason,
		LastCheckedAt: now,
	})
	if err != nil {
		return domain.Lead{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadPutToSleep{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			Reason:    reason,
		})
	}
	return lead, nil
}

// WakeUp returns a lead to the available pool, discarding its sleep details.
// Waking an awake lead is a no-op.
func (s *Availability) WakeUp(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.reader.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	if !lead.AvailabilityStatus.Asleep() {
		return lead, nil
	}

	lead, err = s.writer.SetAvailability(ctx, leadID, domain.AvailabilityAvailable, nil)
	if err != nil {
		return domain.Lead{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadWokenUp{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
		})
	}
	return lead, nil
}

func (s *Availability) FindSleepingLeads(ctx context.Context, limit, offset int) ([]domain.Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = sweepPageSize
	}
	return s.reader.ListSleeping(ctx, limit, offset)
}

// Reevaluate checks whether a sleeping lead has any client broker left to
// try: enabled brokers minus everything already attempted minus the current
// active set. Reports whether the lead was woken.
func (s *Availability) Reevaluate(ctx context.Context, lead domain.Lead) (bool, error) {
	if !lead.AvailabilityStatus.Asleep() {
		return false, nil
	}

	enabled, err := s.directory.EnabledBrokerIDs(ctx)
	if err != nil {
		return false, err
	}
	attempted, err := s.brokers.BrokersEverAssigned(ctx, lead.ID)
	if err != nil {
		return false, err
	}
	active, err := s.brokers.ActiveBrokerIDs(ctx, lead.ID)
	if err != nil {
		return false, err
	}

	if len(domain.EligibleBrokers(enabled, attempted, active)) == 0 {
		// Confirmed broker exhaustion: mark the substate and record the
		// check so the sweep ordering rotates fairly instead of re-checking
		// the same leads first.
		details := domain.SleepDetails{LastCheckedAt: s.now()}
		if lead.Sleep != nil {
			details.PutToSleepAt = lead.Sleep.PutToSleepAt
			details.Reason = lead.Sleep.Reason
		}
		if _, err := s.writer.SetAvailability(ctx, lead.ID, domain.AvailabilityNoBrokers, &details); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.WakeUp(ctx, lead.ID); err != nil {
		return false, err
	}
	return true, nil
}

// SweepStats summarizes one wake sweep run.
type SweepStats struct {
	Checked     int
	Woken       int
	StillAsleep int
}

// RunSweep pages through every sleeping lead and re-evaluates each against
// the current broker inventory. Checks within a page run concurrently; the
// broker inventory is fetched once per page via Reevaluate's directory call.
func (s *Availability) RunSweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	offset := 0

	for {
		leads, err := s.FindSleepingLeads(ctx, sweepPageSize, offset)
		if err != nil {
			return stats, err
		}
		if len(leads) == 0 {
			break
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(sweepCheckConcurrency)

		results := make([]bool, len(leads))
		for i, lead := range leads {
			group.Go(func() error {
				didWake, err := s.Reevaluate(groupCtx, lead)
				if err != nil {
					return err
				}
				results[i] = didWake
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return stats, err
		}

		woken := 0
		for _, didWake := range results {
			if didWake {
				woken++
			}
		}

		stats.Checked += len(leads)
		stats.Woken += woken
		// Woken leads left the sleeping set, so the next page shifts back.
		offset += len(leads) - woken

		if len(leads) < sweepPageSize {
			break
		}
	}

	stats.StillAsleep = stats.Checked - stats.Woken
	s.log.SweepResult(stats.Checked, stats.Woken, stats.StillAsleep)
	return stats, nil
}
