package delete

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/constant"
	"github.com/urfave/cli/v3"
)

func Delete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg(constant.ID)
	if id == "" {
		return fmt.Errorf("missing memory id")
	}

	slog.InfoContext(ctx, "Deleting memory", "id", id)
	return command.MemoryClient(cmd).Delete(ctx, id)
}
