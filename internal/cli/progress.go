package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/circlemap/internal/client"
	"github.com/raphaelgruber/circlemap/internal/service"
)

// jobUpdateMsg carries a job snapshot from the stream.
type jobUpdateMsg struct {
	job client.Job
}

// streamEndMsg is sent once when the stream closes.
type streamEndMsg struct {
	err error
}

// progressModel is the bubbletea model for enrichment progress.
type progressModel struct {
	jobID    string
	job      *client.Job
	updates  <-chan tea.Msg
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newProgressModel creates a new progress model fed by updates.
func newProgressModel(job *client.Job, updates <-chan tea.Msg) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		jobID:    job.ID,
		job:      job,
		updates:  updates,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts listening to the stream.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.updates),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case jobUpdateMsg:
		job := msg.job
		m.job = &job
		if job.Status == service.JobStatusFailed {
			m.err = errors.New(orDash(job.Error))
		}
		return m, waitForUpdate(m.updates)

	case streamEndMsg:
		m.done = true
		if msg.err != nil && m.err == nil {
			m.err = fmt.Errorf("job stream: %w", msg.err)
		}
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	if m.job == nil {
		return "Waiting for job updates...\n"
	}

	var pct float64
	if m.job.Total > 0 {
		pct = float64(m.job.Progress) / float64(m.job.Total)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d profiles", m.job.Progress, m.job.Total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue in background")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJob %s continues in background.\nUse 'circlemap jobs %s' to check status.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	if m.job == nil || m.job.Result == nil {
		return m.theme.completedStyle().Render("✓ Completed") + "\n"
	}

	r := m.job.Result
	var b strings.Builder
	b.WriteString(m.theme.completedStyle().Render("✓ Completed") + "\n\n")
	fmt.Fprintf(&b, "  Profiles enriched: %d\n", r.Enriched)
	if r.Failed > 0 {
		fmt.Fprintf(&b, "  Profiles failed:   %d\n", r.Failed)
	}
	if len(r.Errors) > 0 {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  • %s\n", e)
		}
	}
	return b.String()
}

// waitForUpdate blocks on the next stream message.
func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return streamEndMsg{}
		}
		return msg
	}
}

// streamJob feeds job snapshots from the websocket stream into a channel of
// bubbletea messages. The channel closes after a streamEndMsg.
func streamJob(ctx context.Context, c *client.Client, id string) <-chan tea.Msg {
	out := make(chan tea.Msg, 16)
	go func() {
		defer close(out)
		_, err := c.StreamJob(ctx, id, func(job client.Job) error {
			select {
			case out <- jobUpdateMsg{job: job}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if ctx.Err() != nil {
			return
		}
		out <- streamEndMsg{err: err}
	}()
	return out
}

// RunJobProgress runs the interactive progress UI for a job, following it
// over the server's websocket stream.
// Returns nil on success or Ctrl+C (background), error on job failure.
func RunJobProgress(ctx context.Context, c *client.Client, job *client.Job) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newProgressModel(job, streamJob(ctx, c, job.ID))
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		// Ctrl+C leaves the job running on the server
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}
	return nil
}
