package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aviroop07/NL2DATA-sub000/internal/mcp"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline orchestrator as MCP tools",
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	mcpServer := mcp.NewServer(a.orch)
	handlers := http.NewServeMux()
	mcp.MountHTTPHandlers(handlers, mcpServer.GetMCPServer())

	server := &http.Server{
		Addr:        a.cfg.MCP.Addr,
		Handler:     handlers,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("MCP server starting", "address", a.cfg.MCP.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		a.logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				a.logger.Error("server close error", "error", err)
			}
		}
		a.logger.Info("server stopped gracefully")
	}
	return nil
}
