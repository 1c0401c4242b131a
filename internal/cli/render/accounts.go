package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// AccountsRenderer renders configured accounts. It never sees key material.
type AccountsRenderer struct {
	out  io.Writer
	json bool
}

// NewAccountsRenderer creates a new accounts renderer
func NewAccountsRenderer(out io.Writer, jsonOutput bool) *AccountsRenderer {
	return &AccountsRenderer{out: out, json: jsonOutput}
}

type accountView struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	Default bool   `json:"default"`
	Error   string `json:"error,omitempty"`
}

// Render renders the account list
func (r *AccountsRenderer) Render(accounts []usecase.AccountInfo) error {
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		v := accountView{Name: a.Name, Type: string(a.Type), Default: a.Default}
		if a.Address != (common.Address{}) {
			v.Address = a.Address.Hex()
		}
		if a.Error != nil {
			v.Error = a.Error.Error()
		}
		views = append(views, v)
	}

	if r.json {
		return WriteJSON(r.out, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(r.out, "No accounts configured. Add [accounts.<name>] to zkdeploy.toml or set PRIVATE_KEY.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.AppendHeader(table.Row{"", "Name", "Type", "Address"})
	for _, v := range views {
		marker := ""
		if v.Default {
			marker = "*"
		}
		address := v.Address
		if v.Error != "" {
			address = FormatWarning(v.Error)
		}
		t.AppendRow(table.Row{marker, v.Name, v.Type, address})
	}
	t.Render()
	return nil
}
