package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/massflow-labs/massflow/internal/baseline"
)

// Mode selects how tabular output is rendered.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeTable    Mode = "table"
	ModeCSV      Mode = "csv"
	ModeJSON     Mode = "json"
	ModeMarkdown Mode = "markdown"
)

// Renderer writes tabular command output in the configured mode.
type Renderer struct {
	w    io.Writer
	mode Mode
}

// NewRenderer creates a renderer. An empty mode means auto.
func NewRenderer(w io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{w: w, mode: mode}
}

// Writer returns the underlying writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// EffectiveMode resolves auto: a TTY gets a table, pipes get markdown.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeTable
	}
	return ModeMarkdown
}

// Println writes a line to the output.
func (r *Renderer) Println(args ...any) {
	_, _ = fmt.Fprintln(r.w, args...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Grid renders a header and rows in the effective mode. "md" and "csv"
// reuse go-pretty's renderers so all modes share one code path.
func (r *Renderer) Grid(header []string, rows [][]string) error {
	if r.EffectiveMode() == ModeJSON {
		return r.gridJSON(header, rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, cells := range rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	switch r.EffectiveMode() {
	case ModeCSV:
		t.RenderCSV()
	case ModeMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
	}
	return nil
}

func (r *Renderer) gridJSON(header []string, rows [][]string) error {
	out := make([]map[string]string, 0, len(rows))
	for _, cells := range rows {
		obj := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(cells) {
				obj[h] = cells[i]
			}
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// BaselineGrid converts the assembled baseline to a header and rows,
// one row per material plus the summary rows, kilotonnes.
func BaselineGrid(t *baseline.Table) ([]string, [][]string) {
	header := []string{"Material"}
	for _, s := range t.Streams {
		header = append(header, s.Label())
	}

	var rows [][]string
	for _, m := range baseline.Materials() {
		row := []string{m.Label()}
		for _, s := range t.Streams {
			row = append(row, formatCell(t.Cell(m, s)))
		}
		rows = append(rows, row)
	}

	totals := []string{baseline.TotalRowLabel}
	percent := []string{baseline.PercentRowLabel}
	for _, s := range t.Streams {
		totals = append(totals, formatCell(t.Total(s)))
		percent = append(percent, formatCell(t.Percent(s)))
	}
	rows = append(rows, totals, percent)
	return header, rows
}

// StreamGrid converts a per-authority stream table to a header and
// rows, one row per authority, tonnes.
func StreamGrid(st *baseline.StreamTable) ([]string, [][]string) {
	header := []string{"Authority"}
	for _, m := range baseline.Materials() {
		header = append(header, m.Label())
	}

	var rows [][]string
	for _, authority := range st.Authorities() {
		est, _ := st.Row(authority)
		row := []string{authority}
		for _, m := range baseline.Materials() {
			row = append(row, formatCell(est[m]))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// formatCell renders a tonnage with enough precision for the summary
// rows without drowning the table in digits.
func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
