package nats

import (
	"context"
	"log/slog"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/core/domain"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/google/uuid"
)

// AssemblyDispatcher hands assembly work to standalone workers by publishing
// an assembly request instead of running assembly in-process.
type AssemblyDispatcher struct {
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewAssemblyDispatcher creates a dispatcher backed by the event broker
func NewAssemblyDispatcher(publisher port.EventPublisher, logger *slog.Logger) *AssemblyDispatcher {
	return &AssemblyDispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes the request without awaiting any worker. Failures are
// logged only; the recovery sweep re-queues jobs that never got picked up.
func (d *AssemblyDispatcher) Dispatch(token uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := domain.AssemblyRequest{Token: token}
	if err := d.publisher.Publish(ctx, domain.SubjectAssemblyRequest, req); err != nil {
		d.logger.Error("failed to dispatch assembly request", "token", token, "error", err)
	}
}
