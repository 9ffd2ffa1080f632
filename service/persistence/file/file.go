// Package file stores all memories in a single JSON document on disk, keyed by
// memory id. The document is rewritten atomically on every change.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dkrizic/memorylove/service/persistence"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// ErrQuotaExceeded is returned (wrapped in persistence.ErrStorageUnavailable)
// when the serialized document would grow beyond the configured quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

type Persistence struct {
	mu    sync.Mutex
	path  string
	quota int64
}

// NewPersistence returns a file backed persistence writing to path. A quota
// of zero or less disables the size limit.
func NewPersistence(path string, quota int64) *Persistence {
	return &Persistence{
		path:  path,
		quota: quota,
	}
}

func (p *Persistence) Set(ctx context.Context, r persistence.Record) error {
	ctx, span := otel.Tracer("service/persistence/file").Start(ctx, "Set")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	all[r.ID] = r
	if err := p.store(all); err != nil {
		slog.ErrorContext(ctx, "Failed to write memories", "path", p.path, "id", r.ID, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	slog.DebugContext(ctx, "Setting", "id", r.ID, "path", p.path)
	return nil
}

func (p *Persistence) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	ctx, span := otel.Tracer("service/persistence/file").Start(ctx, "Get")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, err
	}
	r, found := all[id]
	slog.DebugContext(ctx, "Getting", "id", id, "found", found)
	return r, found, nil
}

func (p *Persistence) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("service/persistence/file").Start(ctx, "GetAll")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return all, nil
}

func (p *Persistence) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("service/persistence/file").Start(ctx, "Delete")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	all, err := p.load()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	if err := p.store(all); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	slog.DebugContext(ctx, "Deleting", "id", id, "path", p.path)
	return nil
}

func (p *Persistence) Count(ctx context.Context) (int, error) {
	all, err := p.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// load reads the whole document. A missing file is an empty store, a
// document with any undecodable entry is unavailable as a whole.
func (p *Persistence) load() (map[string]persistence.Record, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]persistence.Record), nil
		}
		return nil, persistence.Unavailable("read memories", err)
	}
	if len(data) == 0 {
		return make(map[string]persistence.Record), nil
	}

	all := make(map[string]persistence.Record)
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, persistence.Unavailable("decode memories", err)
	}
	if all == nil {
		return nil, persistence.Unavailable("decode memories", errors.New("slot is not a JSON object"))
	}
	for id, r := range all {
		if err := persistence.CheckKey(id, r); err != nil {
			return nil, persistence.Unavailable("decode memory", err)
		}
	}
	return all, nil
}

// store writes the document using a temp file + rename.
func (p *Persistence) store(all map[string]persistence.Record) error {
	data, err := json.Marshal(all)
	if err != nil {
		return persistence.Unavailable("encode memories", err)
	}
	if p.quota > 0 && int64(len(data)) > p.quota {
		return persistence.Unavailable("write memories",
			fmt.Errorf("%w: %d bytes, limit %d", ErrQuotaExceeded, len(data), p.quota))
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return persistence.Unavailable("create memories dir", err)
		}
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return persistence.Unavailable("write memories tmp", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return persistence.Unavailable("rename memories", err)
	}
	return nil
}
