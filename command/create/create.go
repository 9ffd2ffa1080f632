package create

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/service/creation"
	"github.com/dkrizic/memorylove/service/viewer"
	"github.com/urfave/cli/v3"
)

// Create submits a memory and prints its id and share link. Photo flags take
// local image files; values that already are URLs are sent unchanged.
func Create(ctx context.Context, cmd *cli.Command) error {
	draft := creation.Draft{
		Title:      cmd.String(constant.Title),
		Message:    cmd.String(constant.Message),
		MusicURL:   cmd.String(constant.Music),
		CustomSlug: cmd.String(constant.Slug),
	}
	for _, p := range cmd.StringSlice(constant.Photo) {
		photo, err := loadPhoto(p)
		if err != nil {
			return err
		}
		draft.Photos = append(draft.Photos, photo)
	}

	// fail before the round trip when the draft is incomplete
	if err := draft.Validate(); err != nil {
		return err
	}

	c := command.MemoryClient(cmd)
	slog.InfoContext(ctx, "Creating memory", "title", draft.Title, "photos", len(draft.Photos))
	r, err := c.Create(ctx, draft)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(command.Out(cmd), "%s\n%s\n", r.ID, viewer.ShareURL(c.Endpoint(), r.ID))
	return err
}

func loadPhoto(p string) (string, error) {
	if strings.HasPrefix(p, "data:") || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()
	return creation.PhotoFromUpload(f)
}
