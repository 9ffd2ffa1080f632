package command

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dkrizic/memorylove/client"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/telemetry/httpclient"
	"github.com/urfave/cli/v3"
)

const requestTimeout = 30 * time.Second

// ConnectionFlags are the flags every remote command reads.
func ConnectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     constant.Endpoint,
			Value:    "http://localhost:8080",
			Category: "connection",
			Usage:    "MemoryLove service endpoint",
			Sources:  cli.EnvVars("ENDPOINT"),
		},
		&cli.StringFlag{
			Name:     constant.Username,
			Category: "connection",
			Usage:    "Username for basic auth",
			Sources:  cli.EnvVars("USERNAME"),
		},
		&cli.StringFlag{
			Name:     constant.Password,
			Category: "connection",
			Usage:    "Password for basic auth",
			Sources:  cli.EnvVars("PASSWORD"),
		},
	}
}

// MemoryClient builds an API client from the connection flags.
func MemoryClient(cmd *cli.Command) *client.Client {
	return client.New(
		cmd.String(constant.Endpoint),
		cmd.String(constant.Username),
		cmd.String(constant.Password),
		httpclient.New(nil, requestTimeout),
	)
}

// Out is where command results are printed.
func Out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// PrintJSON writes v indented to the command output.
func PrintJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(Out(cmd))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
