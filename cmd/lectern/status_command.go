package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lectern/internal/queue"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue totals and any failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			summary, err := store.Summarize(ctx)
			if err != nil {
				return err
			}
			failed, err := store.Failed(ctx)
			if err != nil {
				return err
			}

			if jsonFlag {
				type failedPayload struct {
					ID      int64  `json:"id"`
					Section string `json:"section"`
					Title   string `json:"title"`
					Lecture string `json:"lecture_id"`
					Error   string `json:"error"`
				}
				payload := struct {
					Total      int             `json:"total"`
					Pending    int             `json:"pending"`
					Processing int             `json:"processing"`
					Completed  int             `json:"completed"`
					Failed     int             `json:"failed"`
					FailedJobs []failedPayload `json:"failed_jobs,omitempty"`
				}{
					Total:      summary.Total,
					Pending:    summary.Pending,
					Processing: summary.Processing,
					Completed:  summary.Completed,
					Failed:     summary.Failed,
				}
				for _, job := range failed {
					payload.FailedJobs = append(payload.FailedJobs, failedPayload{
						ID:      job.ID,
						Section: job.SectionLabel,
						Title:   job.Title,
						Lecture: job.LectureID,
						Error:   job.ErrorMessage,
					})
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Pending", "Processing", "Completed", "Failed"},
				[][]string{{
					strconv.Itoa(summary.Total),
					strconv.Itoa(summary.Pending),
					strconv.Itoa(summary.Processing),
					strconv.Itoa(summary.Completed),
					strconv.Itoa(summary.Failed),
				}},
				0, 1, 2, 3, 4,
			))

			if len(failed) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(failed))
			for _, job := range failed {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.SectionLabel,
					job.Title,
					job.ErrorMessage,
				})
			}
			fmt.Fprintln(out, "Failed jobs:")
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Section", "Title", "Error"},
				rows,
				0,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit status as JSON")
	return cmd
}
