// Package bolt is a bbolt backed persistence. All memories live in one bucket
// keyed by memory id.
package bolt

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Persistence struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (or creates) the database at path and makes sure the bucket exists.
func Open(path, bucket string) (*Persistence, error) {
	// the directory might already exist
	_ = os.MkdirAll(filepath.Dir(path), 0o700)

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, persistence.Unavailable("open bolt", errors.Wrapf(err, "path %s", path))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, persistence.Unavailable("create bucket", errors.Wrapf(err, "bucket %s", bucket))
	}

	return &Persistence{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (p *Persistence) Close() error {
	return p.db.Close()
}

func (p *Persistence) Set(ctx context.Context, r persistence.Record) error {
	ctx, span := otel.Tracer("service/persistence/bolt").Start(ctx, "Set")
	defer span.End()

	data, err := json.Marshal(r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("encode memory", err)
	}

	err = p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(p.bucket).Put([]byte(r.ID), data)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write memory", "id", r.ID, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("write memory", errors.Wrap(err, r.ID))
	}
	slog.DebugContext(ctx, "Setting", "id", r.ID)
	return nil
}

func (p *Persistence) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	ctx, span := otel.Tracer("service/persistence/bolt").Start(ctx, "Get")
	defer span.End()

	var (
		r     persistence.Record
		found bool
	)
	err := p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(p.bucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		found = true
		var err error
		r, err = decode(id, v)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, persistence.Unavailable("read memory", errors.Wrap(err, id))
	}
	slog.DebugContext(ctx, "Getting", "id", id, "found", found)
	return r, found, nil
}

func (p *Persistence) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("service/persistence/bolt").Start(ctx, "GetAll")
	defer span.End()

	result := make(map[string]persistence.Record)
	err := p.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(p.bucket).ForEach(func(k, v []byte) error {
			r, err := decode(string(k), v)
			if err != nil {
				return err
			}
			result[string(k)] = r
			return nil
		})
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistence.Unavailable("read memories", err)
	}
	return result, nil
}

func (p *Persistence) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("service/persistence/bolt").Start(ctx, "Delete")
	defer span.End()

	err := p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(p.bucket).Delete([]byte(id))
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("delete memory", errors.Wrap(err, id))
	}
	slog.DebugContext(ctx, "Deleting", "id", id)
	return nil
}

func (p *Persistence) Count(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("service/persistence/bolt").Start(ctx, "Count")
	defer span.End()

	var count int
	err := p.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(p.bucket).Stats().KeyN
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, persistence.Unavailable("count memories", err)
	}
	return count, nil
}

func decode(id string, v []byte) (persistence.Record, error) {
	var r persistence.Record
	if err := json.Unmarshal(v, &r); err != nil {
		return persistence.Record{}, errors.Wrapf(err, "decode %s", id)
	}
	if err := persistence.CheckKey(id, r); err != nil {
		return persistence.Record{}, errors.Wrap(err, "decode")
	}
	return r, nil
}
