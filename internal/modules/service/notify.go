package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is the broker surface the notifier needs, satisfied by
// mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// EditCompletedEvent announces a finished edit turn to external consumers.
type EditCompletedEvent struct {
	ProjectID  uuid.UUID `json:"project_id"`
	Tool       string    `json:"tool"`
	OutputPath string    `json:"output_path,omitempty"`
	OutputURL  string    `json:"output_url,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier publishes edit lifecycle events. Fire and forget: a broker
// failure is logged and never fails the edit.
type Notifier struct {
	publisher EventPublisher
	log       *zap.Logger
}

// NewNotifier builds a Notifier. A nil publisher disables publishing.
func NewNotifier(publisher EventPublisher, log *zap.Logger) *Notifier {
	return &Notifier{publisher: publisher, log: log}
}

func (n *Notifier) EditCompleted(ctx context.Context, ev EditCompletedEvent) {
	if n == nil || n.publisher == nil {
		return
	}
	ev.FinishedAt = time.Now()
	if err := n.publisher.PublishJSON(ctx, "edit.completed", ev); err != nil {
		n.log.Warn("failed to publish edit.completed",
			zap.String("project_id", ev.ProjectID.String()),
			zap.Error(err))
	}
}
