package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"

	"github.com/dkrizic/memorylove/command"
	"github.com/dkrizic/memorylove/command/create"
	"github.com/dkrizic/memorylove/command/delete"
	"github.com/dkrizic/memorylove/command/generateid"
	"github.com/dkrizic/memorylove/command/get"
	"github.com/dkrizic/memorylove/command/getall"
	"github.com/dkrizic/memorylove/command/qr"
	"github.com/dkrizic/memorylove/constant"
	"github.com/dkrizic/memorylove/meta"
	"github.com/dkrizic/memorylove/service"
	"github.com/dkrizic/memorylove/telemetry"
	"github.com/dkrizic/memorylove/telemetry/injectctx"
	"github.com/urfave/cli/v3" // imports as package "cli"
)

func main() {
	cmd := &cli.Command{
		Name:  "memorylove",
		Usage: "Digital memories with photos, a message and music",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     constant.LogFormat,
				Value:    constant.LogFormatText,
				Category: "logging",
				Usage:    "Log format: text or json",
				Sources:  cli.EnvVars("LOG_FORMAT"),
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if s != constant.LogFormatText && s != constant.LogFormatJSON {
						return fmt.Errorf("invalid log format: %s", s)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:     constant.LogLevel,
				Value:    constant.LogLevelInfo,
				Category: "logging",
				Usage:    "Log level: debug, info, warn, error",
				Sources:  cli.EnvVars("LOG_LEVEL"),
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if s != constant.LogLevelDebug && s != constant.LogLevelInfo && s != constant.LogLevelWarn && s != constant.LogLevelError {
						return fmt.Errorf("invalid log level: %s", s)
					}
					return nil
				},
			},
		},
		Before: beforeAction,
		Commands: []*cli.Command{
			&cli.Command{
				Name:  "version",
				Usage: "Print the version number of memorylove",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slog.InfoContext(ctx, "MemoryLove", "name", meta.Service, "version", meta.Version)
					return nil
				},
			},
			serviceCommand(),
			&cli.Command{
				Name:   "create",
				Usage:  "Create a memory",
				Action: create.Create,
				Flags: slices.Concat(command.ConnectionFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:     constant.Title,
						Usage:    "Title of the memory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     constant.Message,
						Usage:    "Message of the memory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  constant.Photo,
						Usage: "Photo file or URL, repeat for more photos",
					},
					&cli.StringFlag{
						Name:  constant.Music,
						Usage: "Background music URL",
					},
					&cli.StringFlag{
						Name:  constant.Slug,
						Usage: "Custom link, normalized to a-z, 0-9 and -",
					},
				}),
			},
			&cli.Command{
				Name:      "get",
				Usage:     "Get a memory by id",
				Action:    get.Get,
				Flags:     command.ConnectionFlags(),
				Arguments: idArgument(),
			},
			&cli.Command{
				Name:   "getall",
				Usage:  "List all memories",
				Action: getall.GetAll,
				Flags:  command.ConnectionFlags(),
			},
			&cli.Command{
				Name:      "delete",
				Usage:     "Delete a memory by id",
				Action:    delete.Delete,
				Flags:     command.ConnectionFlags(),
				Arguments: idArgument(),
			},
			&cli.Command{
				Name:   "generate-id",
				Usage:  "Print a new memory id",
				Action: generateid.GenerateID,
			},
			&cli.Command{
				Name:   "qr",
				Usage:  "Download the QR code of a memory",
				Action: qr.QR,
				Flags: slices.Concat(command.ConnectionFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  constant.Out,
						Usage: "Output file, defaults to memorylove-<id>.png",
					},
				}),
				Arguments: idArgument(),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func idArgument() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name: constant.ID,
		},
	}
}

func serviceCommand() *cli.Command {
	return &cli.Command{
		Name:   "service",
		Usage:  "Start the memorylove service",
		Before: service.Before,
		Action: service.Service,
		After:  service.After,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     constant.Port,
				Value:    8080,
				Category: "service",
				Usage:    "HTTP port to run the service on",
				Sources:  cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:     constant.GRPCPort,
				Value:    0,
				Category: "service",
				Usage:    "Port of the gRPC health endpoint, 0 disables it",
				Sources:  cli.EnvVars("GRPC_PORT"),
			},
			&cli.StringFlag{
				Name:     constant.PublicURL,
				Category: "service",
				Usage:    "Public base URL used in share links, derived from the request when empty",
				Sources:  cli.EnvVars("PUBLIC_URL"),
			},
			&cli.Int64Flag{
				Name:     constant.MaxUploadSize,
				Value:    service.DefaultMaxUploadSize,
				Category: "service",
				Usage:    "Maximum size in bytes of the photos uploaded with one memory",
				Sources:  cli.EnvVars("MAX_UPLOAD_SIZE"),
			},
			&cli.StringFlag{
				Name:     constant.StorageType,
				Value:    constant.StorageTypeInMemory,
				Category: "storage",
				Usage:    "Type of storage to use: inmemory, file, redis, bolt",
				Sources:  cli.EnvVars("STORAGE_TYPE"),
				Action: func(ctx context.Context, cmd *cli.Command, s string) error {
					switch s {
					case constant.StorageTypeInMemory, constant.StorageTypeFile, constant.StorageTypeRedis, constant.StorageTypeBolt:
						return nil
					}
					return fmt.Errorf("invalid storage type: %s", s)
				},
			},
			&cli.StringFlag{
				Name:     constant.FilePath,
				Value:    "memorylove.json",
				Category: "storage",
				Usage:    "Path of the JSON file for file storage",
				Sources:  cli.EnvVars("FILE_PATH"),
			},
			&cli.Int64Flag{
				Name:     constant.FileQuota,
				Value:    5 << 20,
				Category: "storage",
				Usage:    "Maximum size in bytes of the file storage, 0 disables the limit",
				Sources:  cli.EnvVars("FILE_QUOTA"),
			},
			&cli.StringFlag{
				Name:     constant.RedisAddr,
				Value:    "localhost:6379",
				Category: "storage",
				Usage:    "Redis address for redis storage",
				Sources:  cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:     constant.RedisKey,
				Value:    constant.StorageSlot,
				Category: "storage",
				Usage:    "Redis hash holding the memories",
				Sources:  cli.EnvVars("REDIS_KEY"),
			},
			&cli.StringFlag{
				Name:     constant.BoltPath,
				Value:    "memorylove.db",
				Category: "storage",
				Usage:    "Path of the bolt database for bolt storage",
				Sources:  cli.EnvVars("BOLT_PATH"),
			},
			&cli.BoolFlag{
				Name:     constant.NotificationEnabled,
				Value:    false,
				Category: "notification",
				Usage:    "Enable notifications on memory changes",
				Sources:  cli.EnvVars("NOTIFICATION_ENABLED"),
			},
			&cli.StringFlag{
				Name:     constant.NotificationType,
				Value:    constant.NotificationTypeLog,
				Category: "notification",
				Usage:    "Notification type: log, webhook",
				Sources:  cli.EnvVars("NOTIFICATION_TYPE"),
			},
			&cli.StringFlag{
				Name:     constant.NotificationWebhookURL,
				Category: "notification",
				Usage:    "URL receiving webhook notifications",
				Sources:  cli.EnvVars("NOTIFICATION_WEBHOOK_URL"),
			},
			&cli.BoolFlag{
				Name:     constant.AuthenticationEnabled,
				Value:    false,
				Category: "authentication",
				Usage:    "Require basic auth for listing and deleting memories",
				Sources:  cli.EnvVars("AUTHENTICATION_ENABLED"),
			},
			&cli.StringFlag{
				Name:     constant.AuthenticationUsername,
				Category: "authentication",
				Usage:    "Basic auth username",
				Sources:  cli.EnvVars("AUTHENTICATION_USERNAME"),
			},
			&cli.StringFlag{
				Name:     constant.AuthenticationPassword,
				Category: "authentication",
				Usage:    "Basic auth password",
				Sources:  cli.EnvVars("AUTHENTICATION_PASSWORD"),
			},
			&cli.BoolFlag{
				Name:     constant.OpenTelemetryEnabled,
				Value:    false,
				Category: "observability",
				Usage:    "Enable OpenTelemetry tracing and metrics",
				Sources:  cli.EnvVars("OPENTELEMETRY_ENABLED"),
			},
			&cli.StringFlag{
				Name:     constant.OpenTelemetryEndpoint,
				Value:    "",
				Category: "observability",
				Usage:    "OTLP endpoint for OpenTelemetry",
				Sources:  cli.EnvVars("OPENTELEMETRY_ENDPOINT"),
			},
			&cli.FloatFlag{
				Name:     constant.OpenTelemetrySample,
				Value:    telemetry.DefaultSampleRatio,
				Category: "observability",
				Usage:    "Share of traces sampled, between 0 and 1",
				Sources:  cli.EnvVars("OPENTELEMETRY_SAMPLE_RATIO"),
			},
		},
	}
}

func beforeAction(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logFormat := cmd.String(constant.LogFormat)
	logLevel := cmd.String(constant.LogLevel)

	level := slog.LevelInfo
	switch logLevel {
	case constant.LogLevelDebug:
		level = slog.LevelDebug
	case constant.LogLevelInfo:
		level = slog.LevelInfo
	case constant.LogLevelWarn:
		level = slog.LevelWarn
	case constant.LogLevelError:
		level = slog.LevelError
	default:
		return ctx, fmt.Errorf("invalid log level: %s", logLevel)
	}

	// logs go to stderr, command output to stdout
	var handler slog.Handler
	if logFormat == constant.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	otelhandler := injectctx.NewHandler(handler)

	logger := slog.New(otelhandler)
	slog.SetDefault(logger)

	return ctx, nil
}
