// Package memory is the memory record store used by the creation flow and the
// viewer. It owns id generation and the createdAt timestamp; the medium behind
// it is any persistence.Persistence.
package memory

import (
	"context"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/telemetry/localmetrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TimeLayout is the createdAt format: ISO-8601 in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type Store struct {
	persistence persistence.Persistence
	now         func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now as the source of createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(p persistence.Persistence, opts ...Option) *Store {
	s := &Store{
		persistence: p,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateID returns a random identifier made of [a-z0-9] only, so it can be
// used as a URL path segment without escaping.
func GenerateID() string {
	u := uuid.New()
	return new(big.Int).SetBytes(u[:]).Text(36)
}

// Save stores data under id, replacing any previous record, and returns the
// stored record. createdAt is captured on every call, overwrites included.
func (s *Store) Save(ctx context.Context, id string, data persistence.Data) (persistence.Record, error) {
	ctx, span := otel.Tracer("service/memory").Start(ctx, "Save", trace.WithAttributes(attribute.String("memory.id", id)))
	defer span.End()

	r := persistence.Record{
		ID:        id,
		Title:     data.Title,
		Message:   data.Message,
		Photos:    slices.Clone(data.Photos),
		MusicURL:  data.MusicURL,
		CreatedAt: s.now().UTC().Format(TimeLayout),
	}
	if r.Photos == nil {
		r.Photos = []string{}
	}

	if err := s.persistence.Set(ctx, r); err != nil {
		slog.ErrorContext(ctx, "Failed to save memory", "id", id, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, err
	}

	slog.InfoContext(ctx, "Memory saved", "id", id, "photos", len(r.Photos))
	localmetrics.SaveCounter().Add(ctx, 1)
	s.recordStored(ctx)
	return r, nil
}

// Get returns the record stored under id. found is false when there is none;
// err is only set when the medium fails.
func (s *Store) Get(ctx context.Context, id string) (r persistence.Record, found bool, err error) {
	ctx, span := otel.Tracer("service/memory").Start(ctx, "Get", trace.WithAttributes(attribute.String("memory.id", id)))
	defer span.End()

	r, found, err = s.persistence.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read memory", "id", id, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, err
	}

	localmetrics.GetCounter().Add(ctx, 1)
	if !found {
		localmetrics.NotFoundCounter().Add(ctx, 1)
		slog.DebugContext(ctx, "Memory not found", "id", id)
		return persistence.Record{}, false, nil
	}
	return r, true, nil
}

// List returns every stored record keyed by id.
func (s *Store) List(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("service/memory").Start(ctx, "List")
	defer span.End()

	all, err := s.persistence.GetAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list memories", "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	localmetrics.ListCounter().Add(ctx, 1)
	localmetrics.StoredGauge().Record(ctx, int64(len(all)))
	return all, nil
}

// Delete removes id. Removing an id that does not exist is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("service/memory").Start(ctx, "Delete", trace.WithAttributes(attribute.String("memory.id", id)))
	defer span.End()

	if err := s.persistence.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete memory", "id", id, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.InfoContext(ctx, "Memory deleted", "id", id)
	localmetrics.DeleteCounter().Add(ctx, 1)
	s.recordStored(ctx)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.persistence.Count(ctx)
}

func (s *Store) recordStored(ctx context.Context) {
	count, err := s.persistence.Count(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to count memories", "error", err)
		return
	}
	localmetrics.StoredGauge().Record(ctx, int64(count))
}
