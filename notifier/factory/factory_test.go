package factory

import (
	"context"
	"testing"

	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/notifier/log"
	"github.com/dkrizic/memorylove/notifier/none"
	"github.com/dkrizic/memorylove/notifier/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func newTestCommand(enabled bool, ntype, url string) *cli.Command {
	cmd := &cli.Command{}
	cmd.Flags = []cli.Flag{
		&cli.BoolFlag{Name: constant.NotificationEnabled, Value: enabled},
		&cli.StringFlag{Name: constant.NotificationType, Value: ntype},
		&cli.StringFlag{Name: constant.NotificationWebhookURL, Value: url},
	}
	return cmd
}

func TestNewNotifier_Disabled(t *testing.T) {
	n, err := NewNotifier(context.Background(), newTestCommand(false, constant.NotificationTypeLog, ""))
	assert.NoError(t, err)
	_, ok := n.(*none.NoneNotifier)
	assert.True(t, ok, "expected NoneNotifier when notifications are disabled")
}

func TestNewNotifier_Log(t *testing.T) {
	n, err := NewNotifier(context.Background(), newTestCommand(true, constant.NotificationTypeLog, ""))
	assert.NoError(t, err)
	_, ok := n.(*log.LogNotifier)
	assert.True(t, ok, "expected LogNotifier")
}

func TestNewNotifier_Webhook(t *testing.T) {
	n, err := NewNotifier(context.Background(), newTestCommand(true, constant.NotificationTypeWebhook, "http://localhost:9999/hook"))
	assert.NoError(t, err)
	_, ok := n.(*webhook.WebhookNotifier)
	assert.True(t, ok, "expected WebhookNotifier")

	n, err = NewNotifier(context.Background(), newTestCommand(true, constant.NotificationTypeWebhook, ""))
	assert.Error(t, err)
	assert.Nil(t, n)
}

func TestNewNotifier_InvalidType(t *testing.T) {
	n, err := NewNotifier(context.Background(), newTestCommand(true, "carrier-pigeon", ""))
	assert.Error(t, err)
	assert.Nil(t, n)
}
