package persistence

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	assert.NoError(t, Unavailable("read", nil))

	err := Unavailable("read", io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "read: storage unavailable: unexpected EOF", err.Error())

	// already wrapped errors are passed through
	again := Unavailable("write", err)
	assert.Same(t, err, again)
}

func TestRecordData(t *testing.T) {
	r := Record{
		ID:        "abc",
		Title:     "Our Trip",
		Message:   "hi",
		Photos:    []string{"dataA", "dataB"},
		MusicURL:  "https://example.com/song.mp3",
		CreatedAt: "2024-01-01T00:00:00.000Z",
	}
	assert.Equal(t, Data{
		Title:    "Our Trip",
		Message:  "hi",
		Photos:   []string{"dataA", "dataB"},
		MusicURL: "https://example.com/song.mp3",
	}, r.Data())
}

func TestCheckKey(t *testing.T) {
	assert.NoError(t, CheckKey("abc", Record{ID: "abc"}))
	assert.EqualError(t, CheckKey("abc", Record{}), `record under "abc" has no id`)
	assert.EqualError(t, CheckKey("abc", Record{ID: "xyz"}), `record under "abc" has id "xyz"`)
}
