package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkrizic/memorylove/constant"
	metaversion "github.com/dkrizic/memorylove/meta"
	"github.com/dkrizic/memorylove/service/memory"
	"github.com/dkrizic/memorylove/service/persistence/factory"
	"github.com/dkrizic/memorylove/telemetry"
	"github.com/urfave/cli/v3"
)

var otelShutdown func(ctx context.Context) error = nil

func Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	slog.InfoContext(ctx, "Starting service", "version", metaversion.Version)

	otelEnabled := cmd.Bool(constant.OpenTelemetryEnabled)
	otelEndpoint := cmd.String(constant.OpenTelemetryEndpoint)

	if otelEnabled {
		slog.InfoContext(ctx, "OpenTelemetry enabled", "endpoint", otelEndpoint)
		if otelEndpoint == "" {
			slog.ErrorContext(ctx, "OTLP endpoint is required when OpenTelemetry is enabled")
			return ctx, fmt.Errorf("otlp endpoint is required when OpenTelemetry is enabled")
		}
		shutdown, err := telemetry.OpenTelemetryConfig{
			ServiceName:    metaversion.Service,
			ServiceVersion: metaversion.Version,
			OTLPEndpoint:   otelEndpoint,
			SampleRatio:    cmd.Float(constant.OpenTelemetrySample),
		}.InitOpenTelemetry(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to initialize OpenTelemetry", "error", err)
			return ctx, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		otelShutdown = shutdown
	} else {
		slog.InfoContext(ctx, "OpenTelemetry disabled")
	}

	return ctx, nil
}

func After(ctx context.Context, cmd *cli.Command) error {
	if otelShutdown != nil {
		slog.InfoContext(ctx, "Shutting down OpenTelemetry")
		err := otelShutdown(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to shut down OpenTelemetry", "error", err)
			return fmt.Errorf("failed to shut down OpenTelemetry: %w", err)
		}
	}
	slog.InfoContext(ctx, "Shutting down service", "version", metaversion.Version)
	return nil
}

// Service is the CLI entrypoint for the HTTP service and the gRPC health endpoint.
func Service(ctx context.Context, cmd *cli.Command) error {
	port := cmd.Int(constant.Port)
	grpcPort := cmd.Int(constant.GRPCPort)
	config := Config{
		PublicURL:     cmd.String(constant.PublicURL),
		MaxUploadSize: cmd.Int64(constant.MaxUploadSize),
		AuthEnabled:   cmd.Bool(constant.AuthenticationEnabled),
		AuthUsername:  cmd.String(constant.AuthenticationUsername),
		AuthPassword:  cmd.String(constant.AuthenticationPassword),
		Version:       metaversion.Version,
	}
	slog.InfoContext(ctx, "Configuration", "port", port, "grpcPort", grpcPort, "publicURL", config.PublicURL, "authEnabled", config.AuthEnabled)

	if config.AuthEnabled && (config.AuthUsername == "" || config.AuthPassword == "") {
		return fmt.Errorf("authentication requires both %s and %s", constant.AuthenticationUsername, constant.AuthenticationPassword)
	}

	pers, closePersistence, err := factory.NewPersistence(ctx, cmd)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create persistence", "error", err)
		return fmt.Errorf("failed to create persistence: %w", err)
	}
	defer func() {
		if err := closePersistence(); err != nil {
			slog.WarnContext(ctx, "Failed to close persistence", "error", err)
		}
	}()
	store := memory.New(pers)

	templates := ParseTemplates(ctx)
	if templates == nil {
		return fmt.Errorf("failed to parse templates")
	}

	server := NewServer(store, templates, config)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcAddr := ""
	if grpcPort > 0 {
		grpcAddr = fmt.Sprintf("0.0.0.0:%d", grpcPort)
	}
	if err := run(ctx, httpServer, grpcAddr, store, config); err != nil {
		return err
	}

	slog.InfoContext(ctx, "MemoryLove service stopped")
	return nil
}

// run serves httpServer, and the gRPC health endpoint when grpcAddr is set,
// until ctx is done, a signal arrives or one of the servers fails. The HTTP
// server is shut down gracefully on every one of these paths.
func run(ctx context.Context, httpServer *http.Server, grpcAddr string, store *memory.Store, config Config) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var runErr error
	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			runErr = fmt.Errorf("failed to listen on grpc port: %w", err)
		} else {
			grpcServer, healthServer := newGRPCServer(config)
			go watchHealth(runCtx, store, healthServer, healthProbeInterval)
			go func() {
				slog.InfoContext(ctx, "gRPC health server listening", "address", lis.Addr().String())
				if err := grpcServer.Serve(lis); err != nil {
					errChan <- err
				}
			}()
			defer grpcServer.Stop()
		}
	}

	if runErr == nil {
		cancelChan := make(chan os.Signal, 1)
		// catch SIGETRM or SIGINTERRUPT
		signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(cancelChan)

		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Context canceled, shutting down")
		case sig := <-cancelChan:
			slog.InfoContext(ctx, "Received signal, shutting down", "signal", sig)
		case runErr = <-errChan:
			slog.ErrorContext(ctx, "Server error, shutting down", "error", runErr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	slog.InfoContext(ctx, "Shutting down HTTP server gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "Failed to shutdown HTTP server gracefully", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
