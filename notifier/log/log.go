package log

// implements a Notifier that logs notifications using slog.

import (
	"context"
	"log/slog"

	"github.com/dkrizic/memorylove/notifier"
	"go.opentelemetry.io/otel"
)

type LogNotifier struct {
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, notification notifier.Notification) error {
	ctx, span := otel.Tracer("notifier/log").Start(ctx, "Notify")
	defer span.End()

	attrs := []any{"action_type", notification.Action.Type, "id", notification.Action.ID}
	if notification.Action.Title != nil {
		attrs = append(attrs, "title", *notification.Action.Title)
	}
	slog.InfoContext(ctx, "Notification", attrs...)
	return nil
}
