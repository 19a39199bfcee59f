package cron

import (
	"context"
	"time"

	"reservo/database/repository"
	"reservo/services/booking"
	"reservo/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NoShowWorker runs the delayed booking checks queued by the booking service.
type NoShowWorker struct {
	srv      *asynq.Server
	tenants  repository.TenantResolver
	bookings *booking.Service
	logger   *zap.Logger
}

func NewNoShowWorker(redisOpts asynq.RedisClientOpt, tenants repository.TenantResolver, bookings *booking.Service, logger *zap.Logger) *NoShowWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	return &NoShowWorker{srv: srv, tenants: tenants, bookings: bookings, logger: logger}
}

// Mux routes task types to their handlers.
func (w *NoShowWorker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNoShowCheck, w.HandleNoShowTask)
	return mux
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *NoShowWorker) Start() {
	mux := w.Mux()
	go func() {
		w.logger.Info("Starting no-show worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := w.srv.Run(mux); err != nil {
				w.logger.Error("Failed to start no-show worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					w.logger.Error("No-show worker gave up; delayed checks will not run")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// Shutdown stops fetching new tasks and waits for running ones.
func (w *NoShowWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleNoShowTask resolves the payload's tenant and runs the check.
// Malformed payloads are not retried.
func (w *NoShowWorker) HandleNoShowTask(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseNoShowPayload(task)
	if err != nil {
		w.logger.Error("Invalid no-show payload", zap.Error(err))
		return asynq.SkipRetry
	}

	t, err := w.tenants.Resolve(ctx, p.TenantID)
	if err != nil {
		w.logger.Error("No-show check for unknown tenant", zap.String("tenantId", p.TenantID), zap.Error(err))
		return asynq.SkipRetry
	}

	if err := w.bookings.HandleNoShowCheck(ctx, t, p); err != nil {
		w.logger.Warn("No-show check failed", zap.String("tenantId", p.TenantID),
			zap.String("bookingId", p.BookingID), zap.Error(err))
		return err
	}
	w.logger.Debug("No-show check done", zap.String("tenantId", p.TenantID), zap.String("bookingId", p.BookingID))
	return nil
}
