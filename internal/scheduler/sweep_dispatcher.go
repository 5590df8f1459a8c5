package scheduler

import (
	"context"
	"time"

	"leadops_backend/internal/events"
	"leadops_backend/platform/logger"
)

const (
	defaultSweepInterval = time.Hour
	// Inventory changes arrive in bursts when an operator edits the
	// directory; a short delay lets one sweep cover the whole burst.
	inventorySweepDelay = 30 * time.Second
)

// SweepDispatcher enqueues availability sweeps: periodically, and whenever
// the broker inventory changes.
type SweepDispatcher struct {
	scheduler SweepScheduler
	log       *logger.Logger
	interval  time.Duration
}

func NewSweepDispatcher(scheduler SweepScheduler, log *logger.Logger, interval time.Duration) *SweepDispatcher {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweepDispatcher{scheduler: scheduler, log: log, interval: interval}
}

// Run enqueues a sweep on every tick until the context is cancelled.
func (d *SweepDispatcher) Run(ctx context.Context) {
	if d == nil || d.scheduler == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := d.scheduler.EnqueueAvailabilitySweep(ctx, AvailabilitySweepPayload{
				Trigger: SweepTriggerPeriodic,
			}, 0)
			if err != nil {
				d.log.Warn("periodic sweep enqueue failed", "error", err)
			}
		}
	}
}

// RegisterHandlers subscribes the dispatcher to directory events.
func (d *SweepDispatcher) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.BrokerInventoryChanged{}.EventName(), d)
}

// Handle enqueues a sweep when the broker inventory changes. Only newly
// enabled capacity can wake leads, so disables are ignored.
func (d *SweepDispatcher) Handle(ctx context.Context, event events.Event) error {
	change, ok := event.(events.BrokerInventoryChanged)
	if !ok {
		return nil
	}
	if !change.Enabled {
		return nil
	}

	return d.scheduler.EnqueueAvailabilitySweep(ctx, AvailabilitySweepPayload{
		Trigger:        SweepTriggerInventory,
		ClientBrokerID: change.ClientBrokerID.String(),
	}, inventorySweepDelay)
}
