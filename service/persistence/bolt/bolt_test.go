package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestBoltPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memorylove.db")

	p, err := Open(path, "memorylove_memories")
	require.NoError(t, err)

	require.NoError(t, p.Set(ctx, persistence.Record{ID: "id1", Title: "first", Photos: []string{"a", "b"}}))
	require.NoError(t, p.Set(ctx, persistence.Record{ID: "id2", Title: "second"}))
	require.NoError(t, p.Set(ctx, persistence.Record{ID: "id2", Title: "replaced"}))

	count, err := p.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, p.Close())

	// data survives reopening
	p, err = Open(path, "memorylove_memories")
	require.NoError(t, err)
	defer p.Close()

	r, found, err := p.Get(ctx, "id1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, r.Photos)

	all, err := p.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "replaced", all["id2"].Title)

	require.NoError(t, p.Delete(ctx, "id1"))
	require.NoError(t, p.Delete(ctx, "missing"))

	_, found, err = p.Get(ctx, "id1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBoltPersistence_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not json", value: "{not json"},
		{name: "null", value: "null"},
		{name: "without id", value: `{"title":"t"}`},
		{name: "foreign id", value: `{"id":"other","title":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p, err := Open(filepath.Join(t.TempDir(), "memorylove.db"), "memorylove_memories")
			require.NoError(t, err)
			defer p.Close()

			err = p.db.Update(func(tx *bolt.Tx) error {
				return tx.Bucket(p.bucket).Put([]byte("broken"), []byte(tt.value))
			})
			require.NoError(t, err)

			_, found, err := p.Get(ctx, "broken")
			assert.True(t, errors.Is(err, persistence.ErrStorageUnavailable))
			assert.False(t, found)

			_, err = p.GetAll(ctx)
			assert.True(t, errors.Is(err, persistence.ErrStorageUnavailable))
		})
	}
}
