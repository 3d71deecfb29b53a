package render

import (
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

// Group titles
const (
	AlertsTitle    = "Alerts"
	RemindersTitle = "Reminders"
	TyposTitle     = "Typos fixed (hopefully)"
	// CleanMessage is shown when there is nothing to report
	CleanMessage = "All fields parsed."
)

// AlertGroups splits a report into its display groups
type AlertGroups struct {
	// Alerts are ordered errors, unfilled notices, warnings, then info
	Alerts    []sheet.Alert
	Reminders []sheet.Alert
	Typos     []string
}

// Clean reports whether there is nothing to show
func (g AlertGroups) Clean() bool {
	return len(g.Alerts) == 0 && len(g.Reminders) == 0 && len(g.Typos) == 0
}

// GroupAlerts sorts and groups the report. Alerts within a rank keep the
// order they were raised in. The report is not modified.
func (r *Renderer) GroupAlerts(rep *sheet.Report) AlertGroups {
	var g AlertGroups
	if rep == nil {
		return g
	}
	for _, a := range rep.Alerts {
		if a.Reminder {
			g.Reminders = append(g.Reminders, a)
			continue
		}
		g.Alerts = append(g.Alerts, a)
	}
	slices.SortStableFunc(g.Alerts, func(a, b sheet.Alert) int {
		return alertRank(a) - alertRank(b)
	})
	g.Typos = append(g.Typos, rep.Typos...)
	return g
}

func alertRank(a sheet.Alert) int {
	switch {
	case a.IsError():
		return 0
	case a.IsUnfilled():
		return 1
	case a.Severity == sheet.SeverityWarning:
		return 2
	}
	return 3
}

// Issues collapses the error alerts into "Issues found: age, skills". It is
// empty when the report has no errors.
func (r *Renderer) Issues(rep *sheet.Report) string {
	if rep == nil || !rep.HasErrors() {
		return ""
	}
	var tags []string
	for _, a := range rep.Errors() {
		tag := string(a.Category)
		if tag == "" {
			tag = string(sheet.CategoryForm)
		}
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return "Issues found: " + strings.Join(tags, ", ")
}
