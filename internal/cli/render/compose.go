package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// ComposeRenderer handles rendering of compose results
type ComposeRenderer struct {
	out  io.Writer
	json bool
}

// NewComposeRenderer creates a new compose renderer
func NewComposeRenderer(out io.Writer, jsonOutput bool) *ComposeRenderer {
	return &ComposeRenderer{out: out, json: jsonOutput}
}

type composeStepView struct {
	Step     string `json:"step"`
	Contract string `json:"contract"`
	Address  string `json:"address,omitempty"`
	TxHash   string `json:"txHash,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

type composeView struct {
	Group   string            `json:"group"`
	Network string            `json:"network"`
	Success bool              `json:"success"`
	Steps   []composeStepView `json:"steps"`
}

// RenderComposeResult renders the summary; per-step progress is streamed
// while the plan runs.
func (r *ComposeRenderer) RenderComposeResult(result *usecase.ComposeResult) error {
	if r.json {
		view := composeView{Group: result.Plan.Group, Network: result.Network, Success: result.Success}
		for _, s := range result.Steps {
			sv := composeStepView{Step: s.Step.Name, Contract: s.Step.Contract, Address: s.Address, Skipped: s.Skipped}
			if s.Result != nil {
				sv.TxHash = s.Result.TxHash.Hex()
			}
			if s.Error != nil {
				sv.Error = s.Error.Error()
				sv.Outcome = domain.ClassifyOutcome(s.Error).String()
			}
			view.Steps = append(view.Steps, sv)
		}
		return WriteJSON(r.out, view)
	}

	fmt.Fprintln(r.out)
	color.New(color.Bold).Fprintf(r.out, "Summary: %s on %s\n", result.Plan.Group, result.Network)
	fmt.Fprintln(r.out, strings.Repeat("─", 50))

	done := make(map[string]bool, len(result.Steps))
	for _, s := range result.Steps {
		done[s.Step.Name] = true
		switch {
		case s.Error != nil:
			fmt.Fprintf(r.out, "  %s %s\n", color.RedString("✗"), s.Step.Name)
		case s.Skipped:
			fmt.Fprintf(r.out, "  %s %s %s\n", color.New(color.Faint).Sprint("⊘"), s.Step.Name, color.New(color.Faint).Sprintf("(recorded at %s)", s.Address))
		default:
			fmt.Fprintf(r.out, "  %s %s → %s\n", color.GreenString("✓"), s.Step.Name, s.Address)
		}
	}
	for _, step := range result.Plan.Steps {
		if !done[step.Name] {
			fmt.Fprintf(r.out, "  %s %s\n", color.New(color.Faint).Sprint("○"), step.Name)
		}
	}
	fmt.Fprintln(r.out)

	if result.FailedStep != nil {
		fmt.Fprintln(r.out, FormatError(result.FailedStep.Error.Error()))
		fmt.Fprintln(r.out, hintStyle.Sprint(OutcomeHint(domain.ClassifyOutcome(result.FailedStep.Error))))
		fmt.Fprintln(r.out, "Re-run with --resume to skip the steps that completed.")
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %d step(s)", len(result.Steps))))
	return nil
}
