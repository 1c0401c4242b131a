package render

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	labelStyle   = color.New(color.Faint)
	addressStyle = color.New(color.FgWhite, color.Bold)
	hintStyle    = color.New(color.FgYellow)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// OutcomeHint tells the user whether resubmitting is safe
func OutcomeHint(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeUnknown:
		return "A transaction may have been broadcast. Check the chain (or run `zkdeploy wait <txhash>`) before retrying."
	case domain.OutcomeReverted:
		return "The transaction was mined and reverted; no contract was created. Safe to retry after fixing the cause."
	default:
		return "Nothing was sent to the network. Safe to retry."
	}
}

// title capitalises the first letter of each word, e.g. stage names
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// WriteJSON writes v as indented JSON
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
