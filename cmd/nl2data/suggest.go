package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aviroop07/NL2DATA-sub000/internal/suggest"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

func newSuggestCommand() *cobra.Command {
	var watchFile string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Poll for description-quality suggestions while drafting",
		Long: "Watches a description file and periodically asks the server for " +
			"keyword and entity suggestions. Only issues a request when the text " +
			"actually changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, watchFile)
		},
	}
	cmd.Flags().StringVarP(&watchFile, "file", "f", "", "description file to watch (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runSuggest(cmd *cobra.Command, watchFile string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	source := func() string {
		data, err := os.ReadFile(watchFile)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}

	deliver := func(s *models.Suggestions) {
		if s == nil {
			return
		}
		if len(s.Keywords) > 0 {
			fmt.Fprintf(out, "Keywords: %s\n", strings.Join(s.Keywords, ", "))
		}
		if len(s.ExtractedItems) > 0 {
			fmt.Fprintf(out, "Detected: %s\n", strings.Join(s.ExtractedItems, ", "))
		}
	}

	poller := suggest.New(a.client, a.logger, a.cfg.Suggest.Interval, a.orch.JobActive, source, deliver)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(out, "Watching %s (interval %s). Ctrl-C to stop.\n", watchFile, a.cfg.Suggest.Interval)
	poller.Run(ctx)
	return nil
}
