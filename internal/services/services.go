package services

import (
	"context"
	"log/slog"

	"budgetbook/internal/amqp"
)

// ChangePublisher publishes change events. The AMQP client implements
// it; services tolerate a nil publisher.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// publishChange sends a change event and logs failures without
// propagating them. Writes must not fail because the broker is down.
func publishChange(ctx context.Context, pub ChangePublisher, entity amqp.Entity, op amqp.Op, id, budgetID string) {
	if pub == nil {
		return
	}
	msg := amqp.NewChangeMessage(entity, op, id, budgetID)
	if err := pub.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity,
			"op", op,
			"id", id,
			"error", err)
	}
}
