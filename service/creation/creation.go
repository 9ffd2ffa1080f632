// Package creation implements the memory creation wizard: a draft is filled
// in four steps, validated, and saved under the custom slug or a generated id.
package creation

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dkrizic/memorylove/service/memory"
	"github.com/dkrizic/memorylove/service/persistence"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type Step int

const (
	StepTitle Step = iota + 1
	StepPhotos
	StepMessage
	StepFinish
)

// Steps is the number of wizard steps.
const Steps = int(StepFinish)

func (s Step) String() string {
	switch s {
	case StepTitle:
		return "title"
	case StepPhotos:
		return "photos"
	case StepMessage:
		return "message"
	case StepFinish:
		return "finish"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// StepError reports the first wizard step a draft cannot get past.
type StepError struct {
	Step   Step
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", int(e.Step), e.Step, e.Reason)
}

type Draft struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Photos     []string `json:"photos"`
	MusicURL   string   `json:"musicUrl,omitempty"`
	CustomSlug string   `json:"customSlug,omitempty"`
}

// CanProceed reports whether the draft satisfies the given step.
func (d Draft) CanProceed(step Step) bool {
	return d.check(step) == ""
}

func (d Draft) check(step Step) string {
	switch step {
	case StepTitle:
		if strings.TrimSpace(d.Title) == "" {
			return "title is required"
		}
	case StepPhotos:
		if len(d.Photos) == 0 {
			return "at least one photo is required"
		}
	case StepMessage:
		if strings.TrimSpace(d.Message) == "" {
			return "message is required"
		}
	}
	return ""
}

// Validate checks every step in order and returns a *StepError for the first
// one that fails.
func (d Draft) Validate() error {
	for step := StepTitle; step <= StepFinish; step++ {
		if reason := d.check(step); reason != "" {
			return &StepError{Step: step, Reason: reason}
		}
	}
	return nil
}

// Saver is the part of the memory store the wizard needs.
type Saver interface {
	Save(ctx context.Context, id string, data persistence.Data) (persistence.Record, error)
}

// Submit validates the draft and saves it. The id is the normalized custom
// slug, or a generated id when no usable slug was given. Storage errors are
// returned unchanged.
func Submit(ctx context.Context, store Saver, d Draft) (persistence.Record, error) {
	ctx, span := otel.Tracer("service/creation").Start(ctx, "Submit")
	defer span.End()

	if err := d.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, err
	}

	id := memory.ResolveID(d.CustomSlug)
	r, err := store.Save(ctx, id, persistence.Data{
		Title:    d.Title,
		Message:  d.Message,
		Photos:   d.Photos,
		MusicURL: strings.TrimSpace(d.MusicURL),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, err
	}
	return r, nil
}

// PhotoFromUpload reads an uploaded image and returns it as a data URL. The
// content type is sniffed; the content itself is not validated.
func PhotoFromUpload(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
