package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aviroop07/NL2DATA-sub000/internal/orchestrator"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

func newSubmitCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "submit [description]",
		Short: "Submit a description and review the pipeline checkpoint by checkpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args, fromFile)
		},
	}
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read the description from a file")
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string, fromFile string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	description, err := resolveDescription(ctx, a, args, fromFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Keep the unsubmitted text safe across crashes.
	if err := a.store.Save(ctx, description); err != nil {
		a.logger.Warn("failed to autosave description", "error", err)
	}

	job, err := a.orch.Submit(ctx, description)
	if err != nil {
		return err
	}

	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()
	conn := a.stream.Connect(streamCtx, a.client.EventsURL(job.ID), job.ID, a.orch)
	defer conn.Close()

	if err := reviewLoop(ctx, a, cmd.OutOrStdout(), cmd.InOrStdin()); err != nil {
		return err
	}

	if a.orch.State() == orchestrator.StateComplete {
		if err := a.store.Clear(ctx); err != nil {
			a.logger.Debug("failed to clear autosaved description", "error", err)
		}
	}
	return nil
}

// resolveDescription picks the description from the argument, the given
// file, the autosave store, or interactive input, in that order.
func resolveDescription(ctx context.Context, a *app, args []string, fromFile string, in io.Reader) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read description file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if saved, err := a.store.Load(ctx); err == nil && saved.Description != "" {
		fmt.Fprintf(os.Stderr, "Using autosaved description from %s\n", saved.SavedAt.Local().Format("2006-01-02 15:04"))
		return saved.Description, nil
	}

	fmt.Fprintln(os.Stderr, "Enter the requirements description, end with EOF (Ctrl-D):")
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read description: %w", err)
	}
	description := strings.TrimSpace(string(data))
	if description == "" {
		return "", errors.New("description is empty")
	}
	return description, nil
}

// reviewLoop walks the user through the active checkpoint until the
// pipeline completes or the user quits.
func reviewLoop(ctx context.Context, a *app, out io.Writer, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		active := a.orch.Active()
		if active == nil {
			break
		}

		printCheckpoint(out, active)
		printLatest(out, a)

		fmt.Fprint(out, "\n[p]roceed  [s]ave  [e]dit <payload.json>  [u]ndo  [l]edger  [q]uit > ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		verb, arg, _ := strings.Cut(input, " ")

		switch verb {
		case "p", "proceed":
			result, err := a.orch.Proceed(ctx, active.Type, a.orch.Working())
			if err != nil {
				fmt.Fprintf(out, "Advance failed, checkpoint restored: %v\n", err)
				continue
			}
			if result.Next == models.CheckpointComplete || result.Next == "" {
				fmt.Fprintln(out, "\nPipeline complete.")
				printLedger(out, a)
				return nil
			}
		case "s", "save":
			if err := a.orch.SaveDraft(ctx, active.Type, a.orch.Working()); err != nil {
				fmt.Fprintf(out, "Save failed, your edits are kept: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "Draft saved.")
		case "e", "edit":
			if arg == "" {
				fmt.Fprintln(out, "Usage: edit <payload.json>")
				continue
			}
			payload, err := readPayloadFile(arg)
			if err != nil {
				fmt.Fprintf(out, "Could not read payload: %v\n", err)
				continue
			}
			a.orch.SetWorking(payload)
			fmt.Fprintln(out, "Working copy replaced; unsaved changes pending.")
		case "u", "undo":
			if err := a.orch.Undo(); err != nil {
				fmt.Fprintf(out, "Undo: %v\n", err)
			}
		case "l", "ledger":
			printLedger(out, a)
		case "q", "quit":
			a.orch.Reset()
			return nil
		default:
			if input != "" {
				fmt.Fprintf(out, "Unknown command %q\n", verb)
			}
		}
	}
	return nil
}

func readPayloadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	return payload, nil
}

func printCheckpoint(out io.Writer, cp *models.Checkpoint) {
	fmt.Fprintf(out, "\n=== Checkpoint: %s (%s) ===\n", cp.Type, cp.Phase)
	printJSON(out, "payload", cp.Payload)
	if cp.Justification != nil {
		printJSON(out, "justification", cp.Justification)
	}
}

func printLatest(out io.Writer, a *app) {
	if tick, ok := a.orch.LatestMessage(); ok {
		fmt.Fprintf(out, "-- %s\n", tick.Message)
	}
}

func printLedger(out io.Writer, a *app) {
	completed := a.orch.Completed()
	if len(completed) == 0 {
		fmt.Fprintln(out, "No checkpoints completed yet.")
		return
	}
	fmt.Fprintln(out, "Completed checkpoints:")
	for _, entry := range completed {
		fmt.Fprintf(out, "  - %s\n", entry.Type)
	}
}

func printJSON(out io.Writer, label string, v any) {
	data, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		fmt.Fprintf(out, "  %s: <unprintable: %v>\n", label, err)
		return
	}
	fmt.Fprintf(out, "  %s: %s\n", label, data)
}
