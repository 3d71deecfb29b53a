// Package sheet holds the data shared by the parse, validate, score and render
// stages of a character sheet evaluation.
package sheet

// Form identifies which sheet is being evaluated
type Form string

// Form constants
const (
	FormFight Form = "fight"
	FormFlee  Form = "flee"
	FormRace  Form = "race"
)

// Forms lists every form in display order
var Forms = []Form{FormFight, FormFlee, FormRace}

// IsValid reports whether f is a known form
func (f Form) IsValid() bool {
	switch f {
	case FormFight, FormFlee, FormRace:
		return true
	}
	return false
}

// IsMovement reports whether f scores on the movement axes
func (f Form) IsMovement() bool {
	return f == FormFlee || f == FormRace
}

// Axes returns the accumulators used by the form, in output order
func (f Form) Axes() []Axis {
	if f.IsMovement() {
		return MovementAxes
	}
	return FightAxes
}

// String returns the form name
func (f Form) String() string {
	return string(f)
}

// Axis is a named numeric accumulator
type Axis string

// Axis constants
const (
	AxisATK   Axis = "ATK"
	AxisDEF   Axis = "DEF"
	AxisAGI   Axis = "AGI"
	AxisPER   Axis = "PER"
	AxisSPD   Axis = "SPD"
	AxisSTA   Axis = "STA"
	AxisBAL   Axis = "BAL"
	AxisTotal Axis = "TOTAL"
)

// FightAxes are the combat accumulators in positional order
var FightAxes = []Axis{AxisATK, AxisDEF, AxisAGI, AxisPER, AxisTotal}

// MovementAxes are the flee/race accumulators in positional order
var MovementAxes = []Axis{AxisSPD, AxisSTA, AxisBAL, AxisTotal}

// AllAxes is every axis in canonical order
var AllAxes = []Axis{AxisATK, AxisDEF, AxisAGI, AxisPER, AxisSPD, AxisSTA, AxisBAL, AxisTotal}

// Label returns the summary label for the axis
func (a Axis) Label() string {
	switch a {
	case AxisATK:
		return "Attack bonus"
	case AxisDEF:
		return "Defense bonus"
	case AxisAGI:
		return "Agility bonus"
	case AxisPER:
		return "Perception bonus"
	case AxisSPD:
		return "Speed bonus"
	case AxisSTA:
		return "Stamina bonus"
	case AxisBAL:
		return "Balance bonus"
	case AxisTotal:
		return "Total score bonus"
	}
	return string(a)
}

// Order returns the canonical sort position of the axis, or -1 when unknown
func (a Axis) Order() int {
	for i, axis := range AllAxes {
		if axis == a {
			return i
		}
	}
	return -1
}

// ValidFor reports whether the axis belongs to the form
func (a Axis) ValidFor(f Form) bool {
	for _, axis := range f.Axes() {
		if axis == a {
			return true
		}
	}
	return false
}

// Mode is the evaluation scheduling preference
type Mode string

// Mode constants
const (
	// ModeLive renders output on every evaluation
	ModeLive Mode = "live"
	// ModeButton withholds output until it is requested explicitly
	ModeButton Mode = "button"
)

// IsValid reports whether m is a known mode
func (m Mode) IsValid() bool {
	return m == ModeLive || m == ModeButton
}
