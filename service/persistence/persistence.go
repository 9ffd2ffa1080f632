package persistence

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable is returned when the storage medium cannot be read or
// written, including when stored data cannot be decoded.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Data is the creator supplied part of a memory.
type Data struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Photos   []string `json:"photos"`
	MusicURL string   `json:"musicUrl,omitempty"`
}

// Record is a stored memory.
type Record struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Photos   []string `json:"photos"`
	MusicURL string   `json:"musicUrl,omitempty"`
	// CreatedAt is an ISO-8601 UTC timestamp.
	CreatedAt string `json:"createdAt"`
}

// Data returns the creator supplied fields of the record.
func (r Record) Data() Data {
	return Data{
		Title:    r.Title,
		Message:  r.Message,
		Photos:   r.Photos,
		MusicURL: r.MusicURL,
	}
}

// Persistence is a key-value medium for memory records. Implementations are
// selected once at startup by the factory package.
type Persistence interface {
	// Set writes r under r.ID, replacing any previous record.
	Set(ctx context.Context, r Record) error
	// Get returns the record stored under id. A missing id is reported with
	// found == false and a nil error.
	Get(ctx context.Context, id string) (r Record, found bool, err error)
	GetAll(ctx context.Context) (map[string]Record, error)
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CheckKey reports an error when a decoded record does not belong under key.
// A stored JSON null decodes to a zero Record, which fails this check.
func CheckKey(key string, r Record) error {
	if r.ID == "" {
		return fmt.Errorf("record under %q has no id", key)
	}
	if r.ID != key {
		return fmt.Errorf("record under %q has id %q", key, r.ID)
	}
	return nil
}

// Unavailable wraps err so that errors.Is(err, ErrStorageUnavailable) holds.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return &unavailableError{op: op, err: err}
}

type unavailableError struct {
	op  string
	err error
}

func (e *unavailableError) Error() string {
	return e.op + ": " + ErrStorageUnavailable.Error() + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.err}
}
