package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dkrizic/memorylove/constant"
	nf "github.com/dkrizic/memorylove/notifier/factory"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/service/persistence/bolt"
	"github.com/dkrizic/memorylove/service/persistence/file"
	"github.com/dkrizic/memorylove/service/persistence/inmemory"
	"github.com/dkrizic/memorylove/service/persistence/notifying"
	rp "github.com/dkrizic/memorylove/service/persistence/redis"
	"github.com/go-redis/redis/v8"
	"github.com/urfave/cli/v3"
)

// NewPersistence builds the medium selected by the storage-type flag and wraps
// it with notifications. The returned close function releases the medium.
func NewPersistence(ctx context.Context, cmd *cli.Command) (persistence.Persistence, func() error, error) {
	stype := cmd.String(constant.StorageType)

	notifier, err := nf.NewNotifier(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	var (
		medium  persistence.Persistence
		closeFn = func() error { return nil }
	)

	switch stype {
	case constant.StorageTypeInMemory:
		slog.InfoContext(ctx, "In-memory storage selected")
		medium = inmemory.NewPersistence()
	case constant.StorageTypeFile:
		path := cmd.String(constant.FilePath)
		quota := cmd.Int64(constant.FileQuota)
		slog.InfoContext(ctx, "File storage selected", "path", path, "quota", quota)
		medium = file.NewPersistence(path, quota)
	case constant.StorageTypeRedis:
		addr := cmd.String(constant.RedisAddr)
		key := cmd.String(constant.RedisKey)
		slog.InfoContext(ctx, "Redis storage selected", "addr", addr, "key", key)
		client := redis.NewClient(&redis.Options{Addr: addr})
		rs := rp.NewPersistence(client, key)
		if err := rs.Ping(ctx); err != nil {
			client.Close()
			slog.ErrorContext(ctx, "Could not connect to redis", "addr", addr, "error", err)
			return nil, nil, fmt.Errorf("could not connect to redis (%s): %w", addr, err)
		}
		medium = rs
		closeFn = client.Close
	case constant.StorageTypeBolt:
		path := cmd.String(constant.BoltPath)
		slog.InfoContext(ctx, "Bolt storage selected", "path", path)
		bs, err := bolt.Open(path, constant.StorageSlot)
		if err != nil {
			return nil, nil, err
		}
		medium = bs
		closeFn = bs.Close
	default:
		slog.ErrorContext(ctx, "Invalid storage type", "type", stype)
		return nil, nil, errors.New("invalid storage type")
	}

	return notifying.NewNotifyingPersistence(medium, notifier), closeFn, nil
}
