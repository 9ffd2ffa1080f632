package creation

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/dkrizic/memorylove/service/memory"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/service/persistence/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSaver struct {
	err error
}

func (f failingSaver) Save(ctx context.Context, id string, data persistence.Data) (persistence.Record, error) {
	return persistence.Record{}, f.err
}

func validDraft() Draft {
	return Draft{
		Title:   "Our Trip",
		Message: "hi",
		Photos:  []string{"dataA", "dataB"},
	}
}

func TestCanProceed(t *testing.T) {
	var d Draft
	assert.False(t, d.CanProceed(StepTitle))
	d.Title = "   "
	assert.False(t, d.CanProceed(StepTitle))
	d.Title = "Our Trip"
	assert.True(t, d.CanProceed(StepTitle))

	assert.False(t, d.CanProceed(StepPhotos))
	d.Photos = []string{"dataA"}
	assert.True(t, d.CanProceed(StepPhotos))

	assert.False(t, d.CanProceed(StepMessage))
	d.Message = "\n\t"
	assert.False(t, d.CanProceed(StepMessage))
	d.Message = "hi"
	assert.True(t, d.CanProceed(StepMessage))

	assert.True(t, Draft{}.CanProceed(StepFinish))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validDraft().Validate())

	d := validDraft()
	d.Photos = nil
	d.Message = ""
	err := d.Validate()
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepPhotos, stepErr.Step)
	assert.Equal(t, "step 2 (photos): at least one photo is required", err.Error())
}

func TestSubmit_GeneratedID(t *testing.T) {
	ctx := context.Background()
	store := memory.New(inmemory.NewPersistence())

	r, err := Submit(ctx, store, validDraft())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]+$`), r.ID)
	assert.Empty(t, r.MusicURL)

	got, found, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r, got)
}

func TestSubmit_CustomSlug(t *testing.T) {
	ctx := context.Background()
	store := memory.New(inmemory.NewPersistence())

	d := validDraft()
	d.CustomSlug = "Meu Amor! #1"
	d.MusicURL = " https://example.com/song.mp3 "

	r, err := Submit(ctx, store, d)
	require.NoError(t, err)
	assert.Equal(t, "meuamor1", r.ID)
	assert.Equal(t, "https://example.com/song.mp3", r.MusicURL)

	// a second submit with the same slug replaces the first
	d.Title = "Second"
	r, err = Submit(ctx, store, d)
	require.NoError(t, err)
	assert.Equal(t, "meuamor1", r.ID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Second", all["meuamor1"].Title)
}

func TestSubmit_Invalid(t *testing.T) {
	store := memory.New(inmemory.NewPersistence())
	_, err := Submit(context.Background(), store, Draft{})
	var stepErr *StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepTitle, stepErr.Step)
}

func TestSubmit_StorageUnavailable(t *testing.T) {
	unavailable := persistence.Unavailable("write", errors.New("quota exceeded"))
	_, err := Submit(context.Background(), failingSaver{err: unavailable}, validDraft())
	assert.True(t, errors.Is(err, persistence.ErrStorageUnavailable))
}

func TestPhotoFromUpload(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	url, err := PhotoFromUpload(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==", url)

	url, err = PhotoFromUpload(bytes.NewReader([]byte("plain words")))
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,cGxhaW4gd29yZHM=", url)
}
