package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/circlemap/internal/client"
	"github.com/raphaelgruber/circlemap/internal/service"
)

var (
	enrichChat   string
	enrichName   string
	enrichNoWait bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [profile-id...]",
	Short: "Enrich profiles with the server's LLM",
	Long: `Start an enrichment job on the server. The LLM reads each member's messages
and proposes an overlay (role, company, expertise, needs) that is merged into
the stored overlays. Without ids every loaded profile is enriched.

Progress streams live when stdout is a terminal. Ctrl+C leaves the job
running; check on it with "circlemap jobs".

Examples:
  circlemap enrich --chat _chat.txt
  circlemap enrich sarah-kim mike-chen
  circlemap enrich --no-wait --json`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichChat, "chat", "", "upload and analyze this chat export first")
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "job name")
	enrichCmd.Flags().BoolVar(&enrichNoWait, "no-wait", false, "return once the job is started")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := apiClient()

	if enrichChat != "" {
		data, err := readInput(enrichChat)
		if err != nil {
			return err
		}
		a, err := c.Analyze(ctx, string(data))
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		if !jsonOut {
			fmt.Printf("Loaded %d members from %s\n", len(a.Profiles), enrichChat)
		}
	}

	job, err := c.Enrich(ctx, enrichName, args)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 409 {
			return fmt.Errorf("%w (upload a chat with --chat)", err)
		}
		return fmt.Errorf("start enrichment: %w", err)
	}

	if enrichNoWait {
		return emit(job, func() {
			fmt.Printf("Started job %s for %d profiles\n", job.ID, job.Total)
			fmt.Println(hint(fmt.Sprintf("Use 'circlemap jobs %s' to check status", job.ID)))
		})
	}

	if !jsonOut && stdoutIsTTY() {
		return RunJobProgress(ctx, c, job)
	}

	// plain output: poll and report the final state
	final, err := c.WaitJob(ctx, job.ID, time.Second, func(j client.Job) {
		if !jsonOut {
			fmt.Fprintf(os.Stderr, "%s %d/%d\n", j.Status, j.Progress, j.Total)
		}
	})
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := emit(final, func() { printJob(final) }); err != nil {
		return err
	}
	if final.Status == service.JobStatusFailed {
		return fmt.Errorf("job %s failed: %s", final.ID, final.Error)
	}
	return nil
}
