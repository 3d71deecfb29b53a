package render

import (
	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/scoring"
)

// TotalLabel names the final breakdown row
const TotalLabel = "Total"

// BreakdownRow is one contribution source with its formatted cells
type BreakdownRow struct {
	Source string
	Cells  []string
	// Negative is set when any cell is a penalty
	Negative bool
}

// Breakdown is the itemized score table for one ledger
type Breakdown struct {
	Axes   []sheet.Axis
	Rows   []BreakdownRow
	Totals []string
}

// Breakdown builds one row per distinct source in first-appearance order,
// plus the totals. Zero cells are shown as "-".
func (r *Renderer) Breakdown(l *scoring.Ledger) *Breakdown {
	axes := l.Form.Axes()
	b := &Breakdown{Axes: axes}

	for _, row := range l.Rows() {
		br := BreakdownRow{Source: row.Source, Cells: make([]string, len(axes))}
		for i, axis := range axes {
			d := row.Delta(axis)
			br.Cells[i] = signedPercent(d)
			if d < 0 {
				br.Negative = true
			}
		}
		b.Rows = append(b.Rows, br)
	}

	for _, v := range l.Totals() {
		b.Totals = append(b.Totals, Percent(v))
	}
	return b
}

// Header returns the column titles
func (b *Breakdown) Header() []string {
	out := []string{"Source"}
	for _, a := range b.Axes {
		out = append(out, string(a))
	}
	return out
}
