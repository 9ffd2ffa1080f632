// Package redis keeps all memories in a single redis hash, one field per
// memory id holding the JSON encoded record.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Persistence struct {
	client *redis.Client
	key    string
}

// NewPersistence uses client and stores records in the hash named key.
func NewPersistence(client *redis.Client, key string) *Persistence {
	return &Persistence{
		client: client,
		key:    key,
	}
}

// Ping checks that the server is reachable.
func (p *Persistence) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return persistence.Unavailable("ping redis", err)
	}
	return nil
}

func (p *Persistence) Set(ctx context.Context, r persistence.Record) error {
	ctx, span := otel.Tracer("service/persistence/redis").Start(ctx, "Set")
	defer span.End()

	data, err := json.Marshal(r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("encode memory", err)
	}
	if err := p.client.HSet(ctx, p.key, r.ID, data).Err(); err != nil {
		slog.ErrorContext(ctx, "Failed to write memory", "key", p.key, "id", r.ID, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("write memory", err)
	}
	slog.DebugContext(ctx, "Setting", "id", r.ID)
	return nil
}

func (p *Persistence) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	ctx, span := otel.Tracer("service/persistence/redis").Start(ctx, "Get")
	defer span.End()

	data, err := p.client.HGet(ctx, p.key, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			slog.DebugContext(ctx, "Getting", "id", id, "found", false)
			return persistence.Record{}, false, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, persistence.Unavailable("read memory", err)
	}

	r, err := decode(id, data)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, err
	}
	slog.DebugContext(ctx, "Getting", "id", id, "found", true)
	return r, true, nil
}

func (p *Persistence) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("service/persistence/redis").Start(ctx, "GetAll")
	defer span.End()

	values, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistence.Unavailable("read memories", err)
	}

	result := make(map[string]persistence.Record, len(values))
	for id, data := range values {
		r, err := decode(id, data)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		result[id] = r
	}
	return result, nil
}

func (p *Persistence) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("service/persistence/redis").Start(ctx, "Delete")
	defer span.End()

	if err := p.client.HDel(ctx, p.key, id).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Unavailable("delete memory", err)
	}
	slog.DebugContext(ctx, "Deleting", "id", id)
	return nil
}

func (p *Persistence) Count(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("service/persistence/redis").Start(ctx, "Count")
	defer span.End()

	n, err := p.client.HLen(ctx, p.key).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, persistence.Unavailable("count memories", err)
	}
	return int(n), nil
}

func decode(id, data string) (persistence.Record, error) {
	var r persistence.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return persistence.Record{}, persistence.Unavailable("decode memory "+id, err)
	}
	if err := persistence.CheckKey(id, r); err != nil {
		return persistence.Record{}, persistence.Unavailable("decode memory", err)
	}
	return r, nil
}
