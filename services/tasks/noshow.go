package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reservo/models"

	"github.com/hibiken/asynq"
)

const TypeNoShowCheck = "booking:no_show_check"

// NewNoShowTask builds the delayed check that marks a booking as no-show
// once its end time has passed.
func NewNoShowTask(payload models.NoShowPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNoShowCheck, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
		asynq.TaskID(payload.TenantID + ":" + payload.BookingID + ":" + fireAt.UTC().Format(time.RFC3339)),
	}
	return task, opts, nil
}

// ParseNoShowPayload decodes a task body built by NewNoShowTask.
func ParseNoShowPayload(task *asynq.Task) (models.NoShowPayload, error) {
	var p models.NoShowPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeNoShowCheck, err)
	}
	if p.TenantID == "" || p.BookingID == "" {
		return p, fmt.Errorf("invalid %s payload: tenant and booking ids are required", TypeNoShowCheck)
	}
	return p, nil
}

// Scheduler enqueues delayed booking tasks.
type Scheduler interface {
	ScheduleNoShowCheck(ctx context.Context, payload models.NoShowPayload, fireAt time.Time) error
}

// AsynqScheduler enqueues through an asynq client.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) ScheduleNoShowCheck(ctx context.Context, payload models.NoShowPayload, fireAt time.Time) error {
	task, opts, err := NewNoShowTask(payload, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue no-show check for %s: %w", payload.BookingID, err)
	}
	return nil
}

// NopScheduler drops every task.
type NopScheduler struct{}

func (NopScheduler) ScheduleNoShowCheck(context.Context, models.NoShowPayload, time.Time) error {
	return nil
}
