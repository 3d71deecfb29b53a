package sheet

import (
	"fmt"
	"strings"
)

// Severity of an alert
type Severity string

// Severity constants
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category tags an alert with the part of the sheet it concerns. It drives
// the short-form issues summary.
type Category string

// Category constants, in issues-summary vocabulary
const (
	CategoryDuplicate   Category = "duplicate form"
	CategoryAge         Category = "age"
	CategorySize        Category = "size"
	CategoryBuild       Category = "build"
	CategorySkills      Category = "skills"
	CategorySpecialties Category = "specialties"
	CategoryCompanions  Category = "companions"
	CategoryMutations   Category = "mutations"
	CategoryAccessories Category = "accessories"
	CategoryItems       Category = "items"
	CategoryForm        Category = "form"
)

// Alert is a single problem or note raised while evaluating a sheet.
// Alerts are never edited once created.
type Alert struct {
	Message  string
	Severity Severity
	Reminder bool
	Category Category
}

// IsError reports whether the alert blocks output
func (a Alert) IsError() bool {
	return a.Severity == SeverityError
}

// IsUnfilled reports whether the alert is the consolidated unfilled notice
func (a Alert) IsUnfilled() bool {
	return strings.HasPrefix(a.Message, UnfilledPrefix)
}

// UnfilledPrefix starts the consolidated unfilled-fields warning
const UnfilledPrefix = "Unfilled: "

// MissingPrefix starts the consolidated missing-fields error
const MissingPrefix = "Missing: "

// Report accumulates alerts and typo corrections for one evaluation
type Report struct {
	Alerts []Alert
	Typos  []string
}

// Errorf records an error alert
func (r *Report) Errorf(cat Category, format string, args ...any) {
	r.add(cat, SeverityError, false, format, args...)
}

// Warnf records a warning alert
func (r *Report) Warnf(cat Category, format string, args ...any) {
	r.add(cat, SeverityWarning, false, format, args...)
}

// Infof records an informational alert
func (r *Report) Infof(cat Category, format string, args ...any) {
	r.add(cat, SeverityInfo, false, format, args...)
}

// Remindf records a reminder, shown in its own group
func (r *Report) Remindf(cat Category, format string, args ...any) {
	r.add(cat, SeverityWarning, true, format, args...)
}

// Typof records a fuzzy correction note
func (r *Report) Typof(format string, args ...any) {
	r.Typos = append(r.Typos, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error alert was recorded
func (r *Report) HasErrors() bool {
	for _, a := range r.Alerts {
		if a.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error alerts in recorded order
func (r *Report) Errors() []Alert {
	var out []Alert
	for _, a := range r.Alerts {
		if a.IsError() {
			out = append(out, a)
		}
	}
	return out
}

func (r *Report) add(cat Category, sev Severity, reminder bool, format string, args ...any) {
	r.Alerts = append(r.Alerts, Alert{
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Reminder: reminder,
		Category: cat,
	})
}
