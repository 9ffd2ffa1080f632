package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dkrizic/memorylove/notifier"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func TestLogNotifier(t *testing.T) {
	tests := []struct {
		name         string
		notification notifier.Notification
		contains     []string
		absent       []string
	}{
		{
			name:         "create",
			notification: notifier.CreateNotification("nosso-dia", "Nosso Dia"),
			contains:     []string{"action_type=create", "id=nosso-dia", `title="Nosso Dia"`},
		},
		{
			name:         "delete",
			notification: notifier.DeleteNotification("nosso-dia"),
			contains:     []string{"action_type=delete", "id=nosso-dia"},
			absent:       []string{"title="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			err := NewLogNotifier().Notify(context.Background(), tt.notification)

			assert.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
