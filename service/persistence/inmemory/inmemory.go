package inmemory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dkrizic/memorylove/service/persistence"
	"go.opentelemetry.io/otel"
)

// Persistence keeps records in process memory. It is used for tests and for
// deployments that do not need records to survive a restart.
type Persistence struct {
	mu   sync.RWMutex
	data map[string]persistence.Record
}

func NewPersistence() *Persistence {
	return &Persistence{
		data: make(map[string]persistence.Record),
	}
}

func (p *Persistence) Set(ctx context.Context, r persistence.Record) error {
	ctx, span := otel.Tracer("service/persistence/inmemory").Start(ctx, "Set")
	defer span.End()

	p.mu.Lock()
	p.data[r.ID] = clone(r)
	p.mu.Unlock()

	slog.DebugContext(ctx, "Setting", "id", r.ID)
	return nil
}

func (p *Persistence) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	ctx, span := otel.Tracer("service/persistence/inmemory").Start(ctx, "Get")
	defer span.End()

	p.mu.RLock()
	r, found := p.data[id]
	p.mu.RUnlock()

	slog.DebugContext(ctx, "Getting", "id", id, "found", found)
	if !found {
		return persistence.Record{}, false, nil
	}
	return clone(r), true, nil
}

func (p *Persistence) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("service/persistence/inmemory").Start(ctx, "GetAll")
	defer span.End()

	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string]persistence.Record, len(p.data))
	for id, r := range p.data {
		result[id] = clone(r)
	}
	return result, nil
}

func (p *Persistence) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("service/persistence/inmemory").Start(ctx, "Delete")
	defer span.End()

	p.mu.Lock()
	delete(p.data, id)
	p.mu.Unlock()

	slog.DebugContext(ctx, "Deleting", "id", id)
	return nil
}

func (p *Persistence) Count(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("service/persistence/inmemory").Start(ctx, "Count")
	defer span.End()

	p.mu.RLock()
	count := len(p.data)
	p.mu.RUnlock()

	slog.DebugContext(ctx, "Counting", "count", count)
	return count, nil
}

// clone detaches the photo slice so callers cannot mutate stored records.
func clone(r persistence.Record) persistence.Record {
	r.Photos = slices.Clone(r.Photos)
	return r
}
