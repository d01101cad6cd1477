package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/queue"
)

func newQueueCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueListCommand(cmdCtx))
	cmd.AddCommand(newQueueRetryCommand(cmdCtx))
	cmd.AddCommand(newQueueResetCommand(cmdCtx))
	cmd.AddCommand(newQueueClearCommand(cmdCtx))
	return cmd
}

func withQueueStore(cmdCtx *commandContext, fn func(cmd *cobra.Command, store *queue.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdCtx.ensureConfig()
		if err != nil {
			return err
		}
		store, err := queue.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store)
	}
}

func newQueueListCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every job in queue order",
		RunE: withQueueStore(cmdCtx, func(cmd *cobra.Command, store *queue.Store) error {
			jobs, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag {
				type jobPayload struct {
					ID       int64  `json:"id"`
					Position int64  `json:"position"`
					Section  string `json:"section"`
					Title    string `json:"title"`
					Lecture  string `json:"lecture_id"`
					VideoID  string `json:"video_id,omitempty"`
					Status   string `json:"status"`
					Error    string `json:"error,omitempty"`
				}
				payload := make([]jobPayload, 0, len(jobs))
				for _, job := range jobs {
					payload = append(payload, jobPayload{
						ID:       job.ID,
						Position: job.Position,
						Section:  job.SectionLabel,
						Title:    job.Title,
						Lecture:  job.LectureID,
						VideoID:  job.DiscoveredVideoID,
						Status:   string(job.Status),
						Error:    job.ErrorMessage,
					})
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
				return nil
			}
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.SectionLabel,
					job.Title,
					string(job.Status),
					job.ErrorMessage,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Section", "Title", "Status", "Error"},
				rows,
				0,
			))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit jobs as JSON")
	return cmd
}

func newQueueRetryCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Return all failed jobs to pending",
		RunE: withQueueStore(cmdCtx, func(cmd *cobra.Command, store *queue.Store) error {
			count, err := store.RetryFailed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed job(s) to pending.\n", count)
			return nil
		}),
	}
}

func newQueueResetCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return jobs stuck in processing to pending",
		Long:  "Returns jobs left in the processing state by an interrupted run back to pending so the next run can claim them.",
		RunE: withQueueStore(cmdCtx, func(cmd *cobra.Command, store *queue.Store) error {
			count, err := store.ResetStuck(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d stuck job(s) to pending.\n", count)
			return nil
		}),
	}
}

func newQueueClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every job from the queue",
		RunE: withQueueStore(cmdCtx, func(cmd *cobra.Command, store *queue.Store) error {
			count, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s).\n", count)
			return nil
		}),
	}
}
