package factory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/notifier"
	"github.com/dkrizic/memorylove/notifier/log"
	"github.com/dkrizic/memorylove/notifier/none"
	"github.com/dkrizic/memorylove/notifier/webhook"
	"github.com/urfave/cli/v3"
)

func NewNotifier(ctx context.Context, cmd *cli.Command) (notifier.Notifier, error) {
	enabled := cmd.Bool(constant.NotificationEnabled)
	ntype := cmd.String(constant.NotificationType)

	if !enabled {
		slog.InfoContext(ctx, "Notifications disabled")
		return none.NewNoneNotifier(), nil
	}

	switch ntype {
	case constant.NotificationTypeLog:
		slog.InfoContext(ctx, "Log notifier selected")
		return log.NewLogNotifier(), nil
	case constant.NotificationTypeWebhook:
		url := cmd.String(constant.NotificationWebhookURL)
		if url == "" {
			return nil, errors.New("notification-webhook-url is required for the webhook notifier")
		}
		slog.InfoContext(ctx, "Webhook notifier selected", "url", url)
		return webhook.NewWebhookNotifier(url, nil), nil
	default:
		slog.ErrorContext(ctx, "Invalid notifier type", "type", ntype)
		return nil, errors.New("invalid notifier type")
	}
}
