package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/service/persistence/bolt"
	"github.com/dkrizic/memorylove/service/persistence/file"
	"github.com/dkrizic/memorylove/service/persistence/inmemory"
	"github.com/dkrizic/memorylove/service/persistence/notifying"
	rp "github.com/dkrizic/memorylove/service/persistence/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type testConfig struct {
	storageType string
	filePath    string
	redisAddr   string
	boltPath    string
}

func newTestCommand(c testConfig) *cli.Command {
	cmd := &cli.Command{}
	cmd.Flags = []cli.Flag{
		&cli.StringFlag{Name: constant.StorageType, Value: c.storageType},
		&cli.StringFlag{Name: constant.FilePath, Value: c.filePath},
		&cli.Int64Flag{Name: constant.FileQuota, Value: 0},
		&cli.StringFlag{Name: constant.RedisAddr, Value: c.redisAddr},
		&cli.StringFlag{Name: constant.RedisKey, Value: constant.StorageSlot},
		&cli.StringFlag{Name: constant.BoltPath, Value: c.boltPath},
		&cli.BoolFlag{Name: constant.NotificationEnabled, Value: false},
		&cli.StringFlag{Name: constant.NotificationType, Value: constant.NotificationTypeLog},
	}
	return cmd
}

func unwrap(t *testing.T, p persistence.Persistence) persistence.Persistence {
	t.Helper()
	np, ok := p.(*notifying.NotifyingPersistence)
	require.True(t, ok, "expected NotifyingPersistence wrapper")
	return np.Unwrap()
}

func TestNewPersistence_InMemory(t *testing.T) {
	p, closeFn, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: constant.StorageTypeInMemory}))
	require.NoError(t, err)
	defer closeFn()

	_, ok := unwrap(t, p).(*inmemory.Persistence)
	assert.True(t, ok, "expected in-memory persistence")
}

func TestNewPersistence_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")
	p, closeFn, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: constant.StorageTypeFile, filePath: path}))
	require.NoError(t, err)
	defer closeFn()

	_, ok := unwrap(t, p).(*file.Persistence)
	assert.True(t, ok, "expected file persistence")
}

func TestNewPersistence_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	p, closeFn, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: constant.StorageTypeRedis, redisAddr: mr.Addr()}))
	require.NoError(t, err)
	defer closeFn()

	_, ok := unwrap(t, p).(*rp.Persistence)
	assert.True(t, ok, "expected redis persistence")
}

func TestNewPersistence_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	p, _, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: constant.StorageTypeRedis, redisAddr: addr}))
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestNewPersistence_Bolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorylove.db")
	p, closeFn, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: constant.StorageTypeBolt, boltPath: path}))
	require.NoError(t, err)
	defer closeFn()

	_, ok := unwrap(t, p).(*bolt.Persistence)
	assert.True(t, ok, "expected bolt persistence")
}

func TestNewPersistence_InvalidType(t *testing.T) {
	p, closeFn, err := NewPersistence(context.Background(), newTestCommand(testConfig{storageType: "invalid"}))
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Nil(t, closeFn)
}
