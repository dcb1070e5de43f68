package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"inspectorcore/pkg/domain"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
	headColor = color.New(color.Bold)
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func done(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", okColor.Sprint("✓"), fmt.Sprintf(format, args...))
}

func statusText(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return okColor.Sprint(string(s))
	case domain.StatusFail:
		return errColor.Sprint(string(s))
	case domain.StatusPartial:
		return warnColor.Sprint(string(s))
	case domain.StatusUnset:
		return dimColor.Sprint("-")
	default:
		return string(s)
	}
}

func yesNo(v bool) string {
	if v {
		return okColor.Sprint("yes")
	}
	return dimColor.Sprint("no")
}
