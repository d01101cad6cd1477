package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lectern/internal/logging"
	"lectern/internal/logs"
)

func newLogsCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		limitFlag  int
		followFlag bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.FilePath(cfg)
			if path == "" {
				return fmt.Errorf("no log directory configured")
			}

			out := cmd.OutOrStdout()
			lines, offset, err := logs.LastLines(path, limitFlag)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if !followFlag {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err = logs.Follow(ctx, path, offset, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep printing new lines as they are written")
	return cmd
}
