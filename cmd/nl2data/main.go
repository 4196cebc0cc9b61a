// Command nl2data is the human-in-the-loop front end for the NL2DATA
// pipeline: it submits a requirements description, walks the user
// through each checkpoint for review, follows server-side progress over
// the event stream, and can poll for description-quality suggestions
// while drafting.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aviroop07/NL2DATA-sub000/internal/auth"
	"github.com/Aviroop07/NL2DATA-sub000/internal/backoff"
	"github.com/Aviroop07/NL2DATA-sub000/internal/config"
	"github.com/Aviroop07/NL2DATA-sub000/internal/logging"
	"github.com/Aviroop07/NL2DATA-sub000/internal/orchestrator"
	"github.com/Aviroop07/NL2DATA-sub000/internal/repository"
	"github.com/Aviroop07/NL2DATA-sub000/internal/services"
	"github.com/Aviroop07/NL2DATA-sub000/internal/stream"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "nl2data",
		Short:         "Review and steer an NL2DATA schema-generation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newSubmitCommand())
	root.AddCommand(newSuggestCommand())
	root.AddCommand(newMCPCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the wired-up client components.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	client *services.HTTPPipelineClient
	orch   *orchestrator.Orchestrator
	stream *stream.Client
	store  repository.DescriptionStore
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := logging.NewLogger(level)

	httpClient, err := auth.HTTPClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	client := services.NewHTTPPipelineClient(cfg.Server.URL, cfg.Server.Timeout, httpClient)

	orch := orchestrator.New(client, logger, orchestrator.Options{
		FetchBackoff:     backoff.Exponential(cfg.Fetch.BaseDelay, cfg.Fetch.Growth, cfg.Fetch.MaxDelay),
		FetchMaxAttempts: cfg.Fetch.MaxAttempts,
		TrailCapacity:    cfg.Trail.Capacity,
		UndoDepth:        cfg.Undo.Depth,
	})

	// The event stream shares the API client's transport so it carries
	// the same credentials.
	streamClient := stream.New(client.HTTPClient(), logger, stream.Options{
		ReconnectBase: cfg.Stream.ReconnectBase,
		ReconnectMax:  cfg.Stream.ReconnectMax,
		MaxAttempts:   cfg.Stream.MaxAttempts,
	})

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		orch:   orch,
		stream: streamClient,
		store:  repository.NewFileDescriptionStore(cfg.Storage.DescriptionPath),
	}, nil
}
