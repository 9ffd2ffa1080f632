package generateid

import (
	"context"
	"fmt"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/service/memory"
	"github.com/urfave/cli/v3"
)

// GenerateID prints a fresh id. It needs no running service.
func GenerateID(ctx context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(command.Out(cmd), memory.GenerateID())
	return err
}
