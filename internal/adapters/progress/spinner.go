package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// SpinnerProgressReporter renders deployment stages as a single spinner
// line with a trail of finished stages. Compose step events are printed as
// their own lines.
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	stages  []stageInfo
}

type stageInfo struct {
	Stage     usecase.ExecutionStage
	StartTime time.Time
	EndTime   time.Time
	Status    string
	Message   string
}

// NewSpinnerProgressReporter creates a reporter writing to out. The spinner
// only animates when out is a terminal.
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Stage {
	case usecase.StagePlanCreated:
		r.stopSpinner()
		color.New(color.FgCyan, color.Bold).Fprintln(r.out, event.Message)
	case usecase.StageStepStarting:
		r.stopSpinner()
		r.stages = nil
		fmt.Fprintf(r.out, "\n%s\n", color.New(color.Bold).Sprint(event.Message))
	case usecase.StageStepSkipped:
		r.stopSpinner()
		color.New(color.FgWhite, color.Faint).Fprintf(r.out, "⊘ %s\n", event.Message)
	case usecase.StageStepCompleted:
		r.stopSpinner()
		color.New(color.FgGreen).Fprintf(r.out, "✓ %s\n", event.Message)
	case usecase.StageCompleted:
		r.finishStage("completed")
		r.stopSpinner()
	case usecase.StageFailed:
		r.finishStage("failed")
		r.stopSpinner()
	default:
		r.enterStage(event.Stage, event.Message)
		if event.Spinner {
			if !r.spinner.Active() {
				r.spinner.Start()
			}
		} else {
			r.stopSpinner()
		}
		r.spinner.Suffix = " " + r.display()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.printAround(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.printAround(color.New(color.FgRed), message)
}

// Stages returns the names of the stages seen since the last step started
func (r *SpinnerProgressReporter) Stages() []usecase.ExecutionStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]usecase.ExecutionStage, len(r.stages))
	for i, s := range r.stages {
		out[i] = s.Stage
	}
	return out
}

// printAround pauses the spinner so the message gets its own line
func (r *SpinnerProgressReporter) printAround(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

// Stop halts the spinner. The next spinner event starts it again.
func (r *SpinnerProgressReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopSpinner()
}

// PauseOnWrite wraps w so that writing to it stops the spinner first.
// Command output then never shares a line with the spinner.
func (r *SpinnerProgressReporter) PauseOnWrite(w io.Writer) io.Writer {
	return &pausingWriter{reporter: r, w: w}
}

type pausingWriter struct {
	reporter *SpinnerProgressReporter
	w        io.Writer
}

func (p *pausingWriter) Write(b []byte) (int, error) {
	p.reporter.Stop()
	return p.w.Write(b)
}

func (r *SpinnerProgressReporter) stopSpinner() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// enterStage completes the running stage when a new one begins. Repeated
// events for the same stage only update its message.
func (r *SpinnerProgressReporter) enterStage(stage usecase.ExecutionStage, message string) {
	if n := len(r.stages); n > 0 && r.stages[n-1].Stage == stage {
		r.stages[n-1].Message = message
		return
	}
	r.finishStage("completed")
	r.stages = append(r.stages, stageInfo{
		Stage:     stage,
		StartTime: time.Now(),
		Status:    "running",
		Message:   message,
	})
}

func (r *SpinnerProgressReporter) finishStage(status string) {
	if n := len(r.stages); n > 0 && r.stages[n-1].Status == "running" {
		r.stages[n-1].EndTime = time.Now()
		r.stages[n-1].Status = status
	}
}

// display renders the stage trail followed by the running stage's message
func (r *SpinnerProgressReporter) display() string {
	var b strings.Builder
	for i, stage := range r.stages {
		var icon string
		var stageColor *color.Color
		switch stage.Status {
		case "completed":
			icon = "✓"
			stageColor = color.New(color.FgGreen)
		case "running":
			icon = "●"
			stageColor = color.New(color.FgYellow)
		case "failed":
			icon = "✗"
			stageColor = color.New(color.FgRed)
		default:
			icon = "○"
			stageColor = color.New(color.FgWhite)
		}

		duration := ""
		if !stage.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond))
		} else if stage.Status == "running" {
			duration = fmt.Sprintf(" (%s)", time.Since(stage.StartTime).Round(time.Second))
		}

		if i > 0 {
			b.WriteString(" → ")
		}
		fmt.Fprintf(&b, "%s %s%s", icon, stageColor.Sprint(string(stage.Stage)), duration)
	}
	if n := len(r.stages); n > 0 && r.stages[n-1].Message != "" {
		fmt.Fprintf(&b, ": %s", r.stages[n-1].Message)
	}
	return b.String()
}

var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
