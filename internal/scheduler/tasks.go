package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAvailabilitySweep = "leads.availability.sweep"

const (
	SweepTriggerPeriodic  = "periodic"
	SweepTriggerInventory = "inventory_changed"
)

// AvailabilitySweepPayload carries why the sweep was requested; the sweep
// itself always covers the full sleeping set.
type AvailabilitySweepPayload struct {
	Trigger        string `json:"trigger"`
	ClientBrokerID string `json:"clientBrokerId,omitempty"`
}

func NewAvailabilitySweepTask(payload AvailabilitySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAvailabilitySweep, data), nil
}

func ParseAvailabilitySweepPayload(task *asynq.Task) (AvailabilitySweepPayload, error) {
	var payload AvailabilitySweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AvailabilitySweepPayload{}, err
	}
	return payload, nil
}
