package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/client"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect enrichment jobs",
	Long: `List all enrichment jobs on the server or inspect a specific job by ID.

Examples:
  circlemap jobs           # List all jobs
  circlemap jobs abc123    # Show details for job abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := apiClient()

	if len(args) == 1 {
		return showJob(ctx, c, args[0])
	}
	return listJobs(ctx, c)
}

func listJobs(ctx context.Context, c *client.Client) error {
	jobs, err := c.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	return emit(jobs, func() {
		if len(jobs) == 0 {
			fmt.Println("No jobs found")
			return
		}

		fmt.Printf("%-10s %-10s %-12s %-10s %-9s %s\n", "ID", "TYPE", "STATUS", "PROGRESS", "STARTED", "NAME")
		fmt.Println("------------------------------------------------------------------------")
		for _, job := range jobs {
			progress := ""
			if job.Total > 0 {
				progress = fmt.Sprintf("%d/%d", job.Progress, job.Total)
			}
			started := job.StartedAt.Local().Format("15:04:05")
			fmt.Printf("%-10s %-10s %-12s %-10s %-9s %s\n", job.ID, job.Type, job.Status, progress, started, job.Name)
		}
	})
}

func showJob(ctx context.Context, c *client.Client, id string) error {
	job, err := c.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	return emit(job, func() { printJob(job) })
}

func printJob(job *client.Job) {
	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("  Type: %s\n", job.Type)
	if job.Name != "" {
		fmt.Printf("  Name: %s\n", job.Name)
	}
	fmt.Printf("  Status: %s\n", job.Status)
	if job.Total > 0 {
		fmt.Printf("  Progress: %d/%d\n", job.Progress, job.Total)
	}
	fmt.Printf("  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		fmt.Printf("  Duration: %s\n", job.CompletedAt.Sub(job.StartedAt).Round(time.Second))
	}
	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}

	if job.Result != nil {
		fmt.Println("\nResult:")
		fmt.Printf("  Profiles enriched: %d\n", job.Result.Enriched)
		if job.Result.Failed > 0 {
			fmt.Printf("  Profiles failed: %d\n", job.Result.Failed)
		}
		if len(job.Result.Errors) > 0 {
			fmt.Printf("\n  Errors (%d):\n", len(job.Result.Errors))
			for _, e := range job.Result.Errors {
				fmt.Printf("    - %s\n", e)
			}
		}
	}
}
