package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arexur/video-combiner/internal/queue"
)

// Retrying and clearing rewrite rows wholesale, which only the database
// backend supports. The worksheet queue is edited in the spreadsheet UI.
type failedRetryer interface {
	RetryFailed(ctx context.Context, jobIDs ...string) (int64, error)
}

type rowClearer interface {
	Clear(ctx context.Context, statuses ...queue.Status) (int64, error)
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var jobID string
	var sourceFolder string
	var outputFolder string
	var maxVideos int
	var maxDuration time.Duration

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a pending job",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(jobID)
			if id == "" {
				id = uuid.NewString()
			}

			row := &queue.Row{
				JobID:          id,
				CreatedAt:      time.Now().UTC().Truncate(time.Second),
				Status:         queue.StatusPending,
				SourceFolderID: strings.TrimSpace(sourceFolder),
				OutputFolderID: strings.TrimSpace(outputFolder),
				MaxVideos:      maxVideos,
				MaxDuration:    maxDuration,
			}
			if err := row.Validate(); err != nil {
				return err
			}

			return ctx.withStore(func(store queue.AdminStore) error {
				if err := store.Add(cmd.Context(), row); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added job %s\n", row.JobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job identifier (generated when omitted)")
	cmd.Flags().StringVar(&sourceFolder, "source-folder", "", "Folder holding the source videos")
	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "Folder receiving the combined video")
	cmd.Flags().IntVar(&maxVideos, "max-videos", 5, "Maximum number of videos to combine")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", 10*time.Minute, "Maximum total duration of the combined video")
	_ = cmd.MarkFlagRequired("source-folder")
	_ = cmd.MarkFlagRequired("output-folder")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store queue.AdminStore) error {
				rows, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				display := make([][]string, 0, len(rows))
				for _, row := range rows {
					display = append(display, []string{
						row.JobID,
						string(row.Status),
						row.CreatedAt.Format("2006-01-02 15:04:05"),
						fmt.Sprintf("%d", row.MaxVideos),
						row.MaxDuration.String(),
						truncate(row.Message, 48),
					})
				}

				rendered := renderTable(
					[]string{"Job", "Status", "Created", "Max Videos", "Max Duration", "Message"},
					display,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [jobID...]",
		Short: "Return failed jobs to pending",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store queue.AdminStore) error {
				retryStore, ok := store.(failedRetryer)
				if !ok {
					return errors.New("queue retry requires the sqlite queue backend")
				}
				updated, err := retryStore.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d failed jobs\n", updated)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearSucceeded bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearFailed && clearSucceeded {
				return errors.New("specify only one of --failed or --succeeded")
			}
			var statuses []queue.Status
			switch {
			case clearFailed:
				statuses = []queue.Status{queue.StatusFailed}
			case clearSucceeded:
				statuses = []queue.Status{queue.StatusSucceeded}
			}

			return ctx.withStore(func(store queue.AdminStore) error {
				clearStore, ok := store.(rowClearer)
				if !ok {
					return errors.New("queue clear requires the sqlite queue backend")
				}
				removed, err := clearStore.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue rows\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed rows")
	cmd.Flags().BoolVar(&clearSucceeded, "succeeded", false, "Remove only succeeded rows")
	return cmd
}

func titleStatus(status queue.Status) string {
	s := string(status)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue status counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store queue.AdminStore) error {
				rows, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				counts := make(map[queue.Status]int, len(queue.AllStatuses()))
				for _, row := range rows {
					counts[row.Status]++
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total: %d\n", len(rows))
				for _, status := range queue.AllStatuses() {
					fmt.Fprintf(out, "%s: %d\n", titleStatus(status), counts[status])
				}
				return nil
			})
		},
	}
}
