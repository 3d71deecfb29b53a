// Package parser turns pasted character sheet text into a sheet.Record.
//
// The parser never fails: unrecognized or malformed values are reported as
// alerts on a sheet.Report and left out of the record.
package parser

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

// Parser parses sheets against one rule table. It is safe for concurrent use.
type Parser struct {
	rules    *rules.Rules
	splitter *regexp.Regexp
	rank     *regexp.Regexp

	companionWord map[string]*regexp.Regexp
	companionTail map[string]*regexp.Regexp
	mutationTail  map[string]*regexp.Regexp
}

// New builds a parser for the rule table
func New(r *rules.Rules) (*Parser, error) {
	if r == nil {
		return nil, errors.InvalidArgument("rules are required")
	}

	splitter, err := fieldSplitter(r.FieldNames)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to compile field names")
	}

	levels := make([]string, len(r.Levels))
	for i, l := range r.Levels {
		levels[i] = regexp.QuoteMeta(l.Name)
	}

	p := &Parser{
		rules:         r,
		splitter:      splitter,
		rank:          regexp.MustCompile(`(?i)^(` + strings.Join(levels, "|") + `)\s+(.+)$`),
		companionWord: map[string]*regexp.Regexp{},
		companionTail: map[string]*regexp.Regexp{},
		mutationTail:  map[string]*regexp.Regexp{},
	}
	for _, t := range r.CompanionTypes() {
		q := regexp.QuoteMeta(t)
		p.companionWord[t] = regexp.MustCompile(`(?i)\b` + q + `\b`)
		p.companionTail[t] = regexp.MustCompile(`(?i)` + q + `$`)
	}
	for _, t := range r.MutationTypes() {
		p.mutationTail[t] = regexp.MustCompile(`(?i)[\s\-–:,(/]*` + regexp.QuoteMeta(t) + `[\s)]*$`)
	}
	return p, nil
}

// Rules returns the rule table the parser was built with
func (p *Parser) Rules() *rules.Rules {
	return p.rules
}
