package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out  io.Writer
	json bool
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer, jsonOutput bool) *NetworksRenderer {
	return &NetworksRenderer{
		out:  out,
		json: jsonOutput,
	}
}

type networkView struct {
	Name            string `json:"name"`
	RPCURL          string `json:"rpcUrl,omitempty"`
	ChainID         uint64 `json:"chainId,omitempty"`
	ReportedChainID uint64 `json:"reportedChainId,omitempty"`
	ZkSync          bool   `json:"zksync"`
	Error           string `json:"error,omitempty"`
}

// RenderNetworksList renders configured networks and their probe status
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if r.json {
		views := make([]networkView, 0, len(result.Networks))
		for _, n := range result.Networks {
			v := networkView{Name: n.Name, ReportedChainID: n.ReportedChainID}
			if n.Network != nil {
				v.RPCURL = n.Network.RPCURL
				v.ChainID = n.Network.ChainID
				v.ZkSync = n.Network.ZkSync
			}
			if n.Error != nil {
				v.Error = n.Error.Error()
			}
			views = append(views, v)
		}
		return WriteJSON(r.out, views)
	}

	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.AppendHeader(table.Row{"", "Name", "Chain ID", "RPC URL", "Status"})
	for _, n := range result.Networks {
		icon, status := "✅", "ok"
		if n.Error != nil {
			icon, status = "❌", n.Error.Error()
		}
		var chainID any = "-"
		url := ""
		if n.Network != nil {
			url = n.Network.RPCURL
			if n.Network.ChainID != 0 {
				chainID = n.Network.ChainID
			}
		}
		if n.ReportedChainID != 0 {
			chainID = n.ReportedChainID
		}
		t.AppendRow(table.Row{icon, n.Name, chainID, url, status})
	}
	t.Render()
	return nil
}
