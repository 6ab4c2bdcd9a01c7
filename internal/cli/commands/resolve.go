package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/reportcols/internal/engine"
	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	var (
		opts  engine.Options
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <definition>...",
		Short: "Resolve the response column lists of report definitions",
		Long: `Resolve cols, combCols and colAlias for one or more report definition files.

The master project of each report is resolved against itself, or against
a slave project with --slave. Unmapped questions become typed NULL
placeholders so every slave yields the same column layout.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, table`,
		Example: `  # Resolve a report against its master project
  reportcols resolve reports/weekly.yaml

  # Resolve against a slave project and check the lists run
  reportcols resolve reports/weekly.yaml --slave 0ab7516e-f492-4bc6-9bf4-56fb106e1ab8 --probe

  # One row per column
  reportcols resolve reports/weekly.yaml -o table

  # Re-resolve whenever a definition changes
  reportcols resolve reports/*.yaml --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, opts, watch)
		},
	}

	cmd.Flags().StringVar(&opts.Slave, "slave", "", "Slave project whose responses replace the master's")
	cmd.Flags().BoolVar(&opts.UsedOnly, "used-only", false, "Only resolve the report's used questions")
	cmd.Flags().BoolVar(&opts.Probe, "probe", false, "Execute the lists against scratch SQLite tables")
	cmd.Flags().BoolVar(&opts.MappingFromState, "state-mapping", false, "Read question mappings from the state store")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", engine.DefaultConcurrency, "Definitions resolved in parallel")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-resolve when a definition file changes")

	return cmd
}

func runResolve(cmd *cobra.Command, paths []string, opts engine.Options, watch bool) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	r := cmdCtx.Renderer

	if watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmdCtx.Logger.Info("watching definitions", "files", len(paths))
		return cmdCtx.Engine.Watch(ctx, paths, opts, func(path string, res *engine.FileResult, err error) {
			if err != nil {
				r.Warning(fmt.Sprintf("%s: %v", path, err))
				return
			}
			if err := renderResults(r, []*engine.FileResult{res}); err != nil {
				cmdCtx.Logger.Error("failed to render result", "file", path, "error", err)
			}
		})
	}

	results, err := cmdCtx.Engine.ResolveFiles(ctx, paths, opts)
	if err != nil {
		return err
	}
	return renderResults(r, results)
}
