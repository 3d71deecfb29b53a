package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

var (
	cleanPrefix = regexp.MustCompile(`^[;:/\\|=>\s-]+`)
	roundMarker = regexp.MustCompile(`(?i)Round\s`)
	leadingStar = regexp.MustCompile(`^\*+\s*`)
	digits      = regexp.MustCompile(`\d+`)
	spaces      = regexp.MustCompile(`\s+`)

	colonless = regexp.MustCompile(`(?i)^(round|age|size|build|skills?|specialty|items?|disability|debuffs?|injury|offensive battle accessory|defensive battle accessory|racing accessory)\b\s*(.*)$`)
)

// PreProcess splits pasted text into trimmed, non-empty lines. A line break
// is inserted before every configured field label and every "Round " token,
// so a single pasted paragraph yields one line per field.
func (p *Parser) PreProcess(raw string) []string {
	text := insertBreaks(raw, p.splitter)
	text = insertBreaks(text, roundMarker)
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func insertBreaks(s string, re *regexp.Regexp) string {
	if re == nil {
		return s
	}
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(matches))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteByte('\n')
		last = m[0]
	}
	b.WriteString(s[last:])
	return b.String()
}

// CleanValue strips leading separators (; : / \ | = - >) and whitespace
func CleanValue(s string) string {
	return strings.TrimSpace(cleanPrefix.ReplaceAllString(s, ""))
}

// IsPlaceholder reports whether a value is an empty sentinel such as "n/a"
func (p *Parser) IsPlaceholder(s string) bool {
	return p.rules.IsPlaceholder(s)
}

// DetectDuplicateForm records an error when a core field label appears more
// than once, which means two sheets were pasted together.
func (p *Parser) DetectDuplicateForm(raw string, rep *sheet.Report) bool {
	lower := strings.ToLower(raw)
	var dupes []string
	for _, field := range p.rules.DuplicateFields {
		if strings.Count(lower, strings.ToLower(field)) > 1 {
			dupes = append(dupes, strings.TrimSuffix(field, ":"))
		}
	}
	if len(dupes) == 0 {
		return false
	}
	rep.Errorf(sheet.CategoryDuplicate, "Duplicate form detected (%s appears more than once).", strings.Join(dupes, ", "))
	return true
}

type formField struct {
	label   string
	pattern *regexp.Regexp
}

var (
	fightOnlyFields = []formField{
		{"Companions", regexp.MustCompile(`(?i)companion\s*\d`)},
		{"Mutations", regexp.MustCompile(`(?i)mutation\s*\d`)},
		{"Offensive Accessory", regexp.MustCompile(`(?i)offensive\s*battle`)},
		{"Defensive Accessory", regexp.MustCompile(`(?i)defensive\s*battle`)},
		{"Disability", regexp.MustCompile(`(?i)disability`)},
		{"Debuff", regexp.MustCompile(`(?i)debuff`)},
	}
	raceOnlyFields = []formField{
		{"Racing Accessory", regexp.MustCompile(`(?i)racing\s*accessory`)},
	}
)

// DetectWrongForm warns when the text carries fields of another form
func (p *Parser) DetectWrongForm(form sheet.Form, raw string, rep *sheet.Report) bool {
	fields, kind := fightOnlyFields, "fight"
	if form == sheet.FormFight {
		fields, kind = raceOnlyFields, "race"
	}
	var found []string
	for _, f := range fields {
		if f.pattern.MatchString(raw) {
			found = append(found, f.label)
		}
	}
	if len(found) == 0 {
		return false
	}
	rep.Warnf(sheet.CategoryForm, "Found %s fields (%s). Double check this is the right form.", kind, strings.Join(found, ", "))
	return true
}

// splitLine returns the normalized key and cleaned value of a line. Keys are
// lower-cased with leading asterisks and digits removed. A line without a
// colon is accepted only when it starts with a known label.
func splitLine(line string) (key, val string, ok bool) {
	if i := strings.Index(line, ":"); i >= 0 {
		return normalizeKey(line[:i]), CleanValue(line[i+1:]), true
	}
	m := colonless.FindStringSubmatch(leadingStar.ReplaceAllString(line, ""))
	if m == nil {
		return "", "", false
	}
	return normalizeKey(m[1]), CleanValue(m[2]), true
}

func normalizeKey(k string) string {
	k = leadingStar.ReplaceAllString(strings.TrimSpace(k), "")
	k = digits.ReplaceAllString(strings.ToLower(k), "")
	return strings.TrimSpace(spaces.ReplaceAllString(k, " "))
}

func fieldSplitter(names []string) (*regexp.Regexp, error) {
	if len(names) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(quoted, "|"))
	if err != nil {
		return nil, fmt.Errorf("field names: %w", err)
	}
	return re, nil
}
