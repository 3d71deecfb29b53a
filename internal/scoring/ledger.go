package scoring

import (
	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

// Entry is one contribution to an axis
type Entry struct {
	Source string
	Axis   sheet.Axis
	Delta  float64
}

// Row is the merged contribution of one source across axes
type Row struct {
	Source string
	Deltas map[sheet.Axis]float64
}

// Delta returns the row's contribution to an axis, zero when absent
func (r Row) Delta(axis sheet.Axis) float64 {
	return r.Deltas[axis]
}

// Ledger is the ordered result of one scoring pass
type Ledger struct {
	Form sheet.Form
	// Record is the effective record scored, after severity reductions.
	// Reduced afflictions carry "(reduced) X" as their raw text.
	Record *sheet.Record
	// Items are the checked items that took part, after the item cap
	Items   []string
	Entries []Entry

	totals map[sheet.Axis]float64
}

func newLedger(rec *sheet.Record) *Ledger {
	return &Ledger{
		Form:   rec.Form,
		Record: rec,
		totals: make(map[sheet.Axis]float64, len(sheet.AllAxes)),
	}
}

func (l *Ledger) add(source string, axis sheet.Axis, delta float64) {
	if delta == 0 {
		return
	}
	l.Entries = append(l.Entries, Entry{Source: source, Axis: axis, Delta: delta})
	l.totals[axis] += delta
}

// Total returns the accumulated value of an axis
func (l *Ledger) Total(axis sheet.Axis) float64 {
	return l.totals[axis]
}

// Totals returns the accumulated value of every axis of the form, in
// positional order
func (l *Ledger) Totals() []float64 {
	axes := l.Form.Axes()
	out := make([]float64, len(axes))
	for i, a := range axes {
		out[i] = l.totals[a]
	}
	return out
}

// Rows merges entries that share a source, keeping first-appearance order.
// Merging is for display only; Entries keeps the accumulation order.
func (l *Ledger) Rows() []Row {
	var rows []Row
	index := map[string]int{}
	for _, e := range l.Entries {
		i, ok := index[e.Source]
		if !ok {
			i = len(rows)
			index[e.Source] = i
			rows = append(rows, Row{Source: e.Source, Deltas: map[sheet.Axis]float64{}})
		}
		rows[i].Deltas[e.Axis] += e.Delta
	}
	return rows
}
