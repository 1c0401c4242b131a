package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

var (
	networkHeader  = color.New(color.BgCyan, color.FgBlack, color.Bold)
	timestampStyle = color.New(color.Faint)
	groupStyle     = color.New(color.FgCyan)
)

// DeploymentsRenderer renders deployment lists as one table per network
type DeploymentsRenderer struct {
	out  io.Writer
	json bool
}

// NewDeploymentsRenderer creates a new deployments renderer
func NewDeploymentsRenderer(out io.Writer, jsonOutput bool) *DeploymentsRenderer {
	return &DeploymentsRenderer{
		out:  out,
		json: jsonOutput,
	}
}

// RenderDeploymentList renders deployments grouped by network
func (r *DeploymentsRenderer) RenderDeploymentList(result *usecase.DeploymentListResult) error {
	if r.json {
		return WriteJSON(r.out, result.Deployments)
	}
	if len(result.Deployments) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	networks := make([]string, 0, len(result.Summary.ByNetwork))
	for name := range result.Summary.ByNetwork {
		networks = append(networks, name)
	}
	sort.Strings(networks)

	for _, network := range networks {
		fmt.Fprintln(r.out, networkHeader.Sprintf(" ⛓ %-40s", network))

		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.Style().Options.DrawBorder = false
		t.Style().Options.SeparateColumns = false
		t.AppendHeader(table.Row{"Contract", "Address", "Group", "Block", "Deployed"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight},
		})

		for _, dep := range result.Deployments {
			if dep.Network != network {
				continue
			}
			group := ""
			if dep.Group != "" {
				group = groupStyle.Sprintf("%s/%s", dep.Group, dep.Step)
			}
			t.AppendRow(table.Row{
				dep.ContractName,
				addressStyle.Sprint(dep.Address),
				group,
				dep.BlockNumber,
				timestampStyle.Sprint(dep.CreatedAt.Format("2006-01-02 15:04:05")),
			})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	fmt.Fprintf(r.out, "Total deployments: %d\n", result.Summary.Total)
	return nil
}

// RenderDeployment renders a single registry record
func (r *DeploymentsRenderer) RenderDeployment(dep *models.Deployment) error {
	if r.json {
		return WriteJSON(r.out, map[string]any{"deployment": dep})
	}

	fmt.Fprintln(r.out, networkHeader.Sprintf(" %s ", models.ShortContractName(dep.ContractName)))
	rows := [][2]string{
		{"ID", dep.ID},
		{"Contract", dep.ContractName},
		{"Address", addressStyle.Sprint(dep.Address)},
		{"Network", fmt.Sprintf("%s (chain %d)", dep.Network, dep.ChainID)},
		{"Transaction", dep.TxHash},
		{"Block", fmt.Sprintf("%d", dep.BlockNumber)},
		{"Deployer", dep.Deployer},
		{"Deployed", dep.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	if dep.Group != "" {
		rows = append(rows, [2]string{"Compose step", groupStyle.Sprintf("%s/%s", dep.Group, dep.Step)})
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-13s", row[0]+":"), row[1])
	}
	if len(dep.ConstructorArgs) > 0 {
		fmt.Fprintf(r.out, "  %s\n", labelStyle.Sprint("Constructor args:"))
		for i, arg := range dep.ConstructorArgs {
			fmt.Fprintf(r.out, "    [%d] %v\n", i, arg)
		}
	}
	return nil
}
