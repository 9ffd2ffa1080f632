package get

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/constant"
	"github.com/urfave/cli/v3"
)

func Get(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg(constant.ID)
	if id == "" {
		return fmt.Errorf("missing memory id")
	}

	slog.InfoContext(ctx, "Getting memory", "id", id)
	r, found, err := command.MemoryClient(cmd).Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("memory %q not found", id)
	}
	return command.PrintJSON(cmd, r)
}
