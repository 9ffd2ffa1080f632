package qr

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/service/viewer"
	"github.com/urfave/cli/v3"
)

// QR downloads the QR code of a memory into --out, or memorylove-<id>.png.
func QR(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg(constant.ID)
	if id == "" {
		return fmt.Errorf("missing memory id")
	}
	out := cmd.String(constant.Out)
	if out == "" {
		out = viewer.QRFilename(id)
	}

	slog.InfoContext(ctx, "Downloading QR code", "id", id, "file", out)
	png, err := command.MemoryClient(cmd).QRCode(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("write qr code: %w", err)
	}
	_, err = fmt.Fprintln(command.Out(cmd), out)
	return err
}
