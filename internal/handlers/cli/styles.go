package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/render"
)

// Semantic colors
var (
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")
	colorSuccess = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6b7280")
)

// Styles holds the terminal styles for one output stream. Color is dropped
// automatically when the stream is not a terminal.
type Styles struct {
	Title    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Body     lipgloss.Style
	Negative lipgloss.Style
}

// NewStyles builds styles bound to a renderer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Underline(true),
		Error:    r.NewStyle().Foreground(colorError),
		Warning:  r.NewStyle().Foreground(colorWarning),
		Info:     r.NewStyle().Foreground(colorInfo),
		Success:  r.NewStyle().Foreground(colorSuccess),
		Muted:    r.NewStyle().Foreground(colorMuted),
		Bold:     r.NewStyle().Bold(true),
		Body:     r.NewStyle(),
		Negative: r.NewStyle().Foreground(colorError),
	}
}

func (st Styles) alert(a sheet.Alert) string {
	switch {
	case a.IsError():
		return st.Error.Render("✖ " + a.Message)
	case a.Severity == sheet.SeverityWarning:
		return st.Warning.Render("! " + a.Message)
	}
	return st.Info.Render("i " + a.Message)
}

// alertGroups renders the three alert lists, or the all-clear line
func (st Styles) alertGroups(g render.AlertGroups) string {
	if g.Clean() {
		return st.Success.Render(render.CleanMessage) + "\n"
	}

	var sb strings.Builder
	if len(g.Alerts) > 0 {
		sb.WriteString(st.Title.Render(render.AlertsTitle) + "\n")
		for _, a := range g.Alerts {
			sb.WriteString(st.alert(a) + "\n")
		}
	}
	if len(g.Reminders) > 0 {
		sb.WriteString(st.Title.Render(render.RemindersTitle) + "\n")
		for _, a := range g.Reminders {
			sb.WriteString(st.Info.Render("• "+a.Message) + "\n")
		}
	}
	if len(g.Typos) > 0 {
		sb.WriteString(st.Title.Render(render.TyposTitle) + "\n")
		for _, t := range g.Typos {
			sb.WriteString(st.Muted.Render("~ "+t) + "\n")
		}
	}
	return sb.String()
}

// breakdownTable lays out the breakdown with padded columns. Rows holding a
// penalty are drawn in the negative style.
func (st Styles) breakdownTable(b *render.Breakdown) string {
	headers := b.Header()
	rows := make([][]string, 0, len(b.Rows)+1)
	for _, r := range b.Rows {
		rows = append(rows, append([]string{r.Source}, r.Cells...))
	}
	rows = append(rows, append([]string{render.TotalLabel}, b.Totals...))

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	line := func(cells []string, style lipgloss.Style) string {
		out := make([]string, 0, len(cells))
		for i, cell := range cells {
			if i < len(widths) {
				out = append(out, style.Padding(0, 1).Width(widths[i]).Render(cell))
			}
		}
		return strings.Join(out, st.Muted.Render("|"))
	}

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}

	var sb strings.Builder
	sb.WriteString(line(headers, st.Bold) + "\n")
	sb.WriteString(st.Muted.Render(strings.Repeat("-", total)) + "\n")
	for i, row := range rows {
		style := st.Body
		switch {
		case i == len(rows)-1:
			sb.WriteString(st.Muted.Render(strings.Repeat("-", total)) + "\n")
			style = st.Bold
		case b.Rows[i].Negative:
			style = st.Negative
		}
		sb.WriteString(line(row, style) + "\n")
	}
	return sb.String()
}
