package notifying

// implements the persistence interface and wraps another persistence to send notifications on changes

import (
	"context"
	"log/slog"

	"github.com/dkrizic/memorylove/notifier"
	"github.com/dkrizic/memorylove/service/persistence"
)

type NotifyingPersistence struct {
	wrapped  persistence.Persistence
	notifier notifier.Notifier
}

func NewNotifyingPersistence(wrapped persistence.Persistence, notifier notifier.Notifier) *NotifyingPersistence {
	return &NotifyingPersistence{
		wrapped:  wrapped,
		notifier: notifier,
	}
}

// Unwrap returns the wrapped persistence.
func (p *NotifyingPersistence) Unwrap() persistence.Persistence {
	return p.wrapped
}

func (p *NotifyingPersistence) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	return p.wrapped.GetAll(ctx)
}

// Set writes the record and then sends a create or update notification.
// A failed notification is logged; the write itself has already happened.
// When the previous record cannot be read the write still goes ahead and is
// announced as a create.
func (p *NotifyingPersistence) Set(ctx context.Context, r persistence.Record) error {
	_, existed, err := p.wrapped.Get(ctx, r.ID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read previous record, overwriting", "id", r.ID, "error", err)
		existed = false
	}

	if err := p.wrapped.Set(ctx, r); err != nil {
		return err
	}

	notification := notifier.CreateNotification(r.ID, r.Title)
	if existed {
		notification = notifier.UpdateNotification(r.ID, r.Title)
	}
	p.notify(ctx, notification)
	return nil
}

func (p *NotifyingPersistence) Delete(ctx context.Context, id string) error {
	if err := p.wrapped.Delete(ctx, id); err != nil {
		return err
	}

	p.notify(ctx, notifier.DeleteNotification(id))
	return nil
}

func (p *NotifyingPersistence) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	return p.wrapped.Get(ctx, id)
}

func (p *NotifyingPersistence) Count(ctx context.Context) (int, error) {
	return p.wrapped.Count(ctx)
}

func (p *NotifyingPersistence) notify(ctx context.Context, n notifier.Notification) {
	if err := p.notifier.Notify(ctx, n); err != nil {
		slog.WarnContext(ctx, "Failed to send notification", "action_type", n.Action.Type, "id", n.Action.ID, "error", err)
	}
}
