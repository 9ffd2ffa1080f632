package getall

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dkrizic/memorylove/command"
	"github.com/urfave/cli/v3"
)

// GetAll prints one line per memory, sorted by id: id, createdAt, title.
func GetAll(ctx context.Context, cmd *cli.Command) error {
	slog.InfoContext(ctx, "Getting all memories")
	all, err := command.MemoryClient(cmd).GetAll(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := command.Out(cmd)
	for _, id := range ids {
		r := all[id]
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", id, r.CreatedAt, r.Title); err != nil {
			return err
		}
	}
	return nil
}
