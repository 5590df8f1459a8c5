package scheduler

import (
	"context"
	"fmt"

	leadsvc "leadops_backend/internal/leads/service"
	"leadops_backend/platform/config"
	"leadops_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes scheduled tasks. Its only job today is the availability
// sweep that wakes sleeping leads when the broker inventory changes.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	availability *leadsvc.Availability
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, availability *leadsvc.Availability, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:       server,
		mux:          mux,
		availability: availability,
		log:          log,
	}

	mux.HandleFunc(TaskAvailabilitySweep, w.handleAvailabilitySweep)

	return w, nil
}

func (w *Worker) handleAvailabilitySweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAvailabilitySweepPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("availability sweep starting", "trigger", payload.Trigger, "broker_id", payload.ClientBrokerID)

	stats, err := w.availability.RunSweep(ctx)
	if err != nil {
		return err
	}

	w.log.Info("availability sweep finished",
		"trigger", payload.Trigger, "checked", stats.Checked, "woken", stats.Woken)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
