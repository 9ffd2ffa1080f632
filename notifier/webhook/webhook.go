// Package webhook posts every notification as JSON to a configured URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dkrizic/memorylove/notifier"
	"github.com/dkrizic/memorylove/telemetry/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type WebhookNotifier struct {
	url    string
	client *httpclient.Client
}

// NewWebhookNotifier sends notifications to url. A nil client uses the shared
// instrumented client.
func NewWebhookNotifier(url string, client *httpclient.Client) *WebhookNotifier {
	if client == nil {
		client = httpclient.DefaultClient()
	}
	return &WebhookNotifier{
		url:    url,
		client: client,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, notification notifier.Notification) error {
	ctx, span := otel.Tracer("notifier/webhook").Start(ctx, "Notify")
	defer span.End()

	body, err := json.Marshal(notification)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("encode notification: %w", err)
	}

	resp, err := n.client.Post(ctx, n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to deliver notification", "url", n.url, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		span.SetStatus(codes.Error, resp.Status)
		return fmt.Errorf("deliver notification: unexpected status %s", resp.Status)
	}

	slog.DebugContext(ctx, "Notification delivered", "url", n.url, "action_type", notification.Action.Type, "id", notification.Action.ID)
	return nil
}
