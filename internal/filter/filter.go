// Package filter removes console-output statements from the lines of a file.
//
// A rule matches a line when, after leading Unicode whitespace, the line
// begins with one of the rule's call signatures. Calls that do not start the
// line (after a statement, inside a string literal or behind a comment marker)
// are kept.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrNoSignatures   = errors.New("rule has no signatures")
	ErrEmptySignature = errors.New("rule has an empty signature")
)

// Rule describes one console-output call to remove.
type Rule struct {
	Name       string
	Signatures []string
	IgnoreCase bool
}

// Removal is reported for every line dropped by Filter.
type Removal struct {
	Rule string
	Text string
	Line int
}

// Result holds the kept lines and the removals, in input order.
type Result struct {
	Lines   []string
	Removed []Removal
}

// RemovedCount returns the number of removed lines.
func (r Result) RemovedCount() int {
	return len(r.Removed)
}

type compiledRule struct {
	pattern *regexp.Regexp
	rule    Rule
}

// RuleSet is an ordered, compiled set of rules.
type RuleSet struct {
	rules []compiledRule
}

// Compile builds a RuleSet from rule definitions.
func Compile(rules []Rule) (RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		pattern, err := compileRule(rule)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rule %d (%s): %w", i+1, rule.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: rule, pattern: pattern})
	}
	return RuleSet{rules: compiled}, nil
}

func compileRule(rule Rule) (*regexp.Regexp, error) {
	if len(rule.Signatures) == 0 {
		return nil, ErrNoSignatures
	}

	alternatives := make([]string, 0, len(rule.Signatures))
	for _, sig := range rule.Signatures {
		if sig == "" {
			return nil, ErrEmptySignature
		}
		alternatives = append(alternatives, regexp.QuoteMeta(sig))
	}

	expr := `^(?:` + strings.Join(alternatives, "|") + `)`
	if rule.IgnoreCase {
		expr = "(?i)" + expr
	}

	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile signatures: %w", err)
	}
	return pattern, nil
}

// DefaultRules returns the built-in rule definitions.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "console-writeline", Signatures: []string{"Console.WriteLine"}},
		{Name: "console-write", Signatures: []string{"Console.Write("}},
		{Name: "console-writeline-nocase", Signatures: []string{"console.writeline"}, IgnoreCase: true},
		{Name: "console-write-nocase", Signatures: []string{"console.write("}, IgnoreCase: true},
	}
}

// Default returns the compiled built-in rules.
func Default() RuleSet {
	rs, err := Compile(DefaultRules())
	if err != nil {
		panic(err)
	}
	return rs
}

// Rules returns the definitions the set was compiled from.
func (s RuleSet) Rules() []Rule {
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.rule)
	}
	return out
}

// Len returns the number of rules in the set.
func (s RuleSet) Len() int {
	return len(s.rules)
}

// Match returns the first rule matching line. The line terminator and any
// leading Unicode whitespace are ignored.
func (s RuleSet) Match(line string) (Rule, bool) {
	content := strings.TrimLeftFunc(trimTerminator(line), isLeadingSpace)
	for _, r := range s.rules {
		if r.pattern.MatchString(content) {
			return r.rule, true
		}
	}
	return Rule{}, false
}

// isLeadingSpace reports Unicode white space and the ASCII separators
// U+001C to U+001F.
func isLeadingSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Filter drops every line matched by the set. Kept lines retain their order and
// bytes. observe, when non-nil, is called once per removed line.
func (s RuleSet) Filter(lines []string, observe func(Removal)) Result {
	result := Result{Lines: make([]string, 0, len(lines))}
	for i, line := range lines {
		rule, ok := s.Match(line)
		if !ok {
			result.Lines = append(result.Lines, line)
			continue
		}

		removal := Removal{
			Line: i + 1,
			Text: strings.TrimSpace(line),
			Rule: rule.Name,
		}
		result.Removed = append(result.Removed, removal)
		if observe != nil {
			observe(removal)
		}
	}
	return result
}

// FilterText splits text into lines, filters them and joins the kept lines.
func (s RuleSet) FilterText(text string, observe func(Removal)) (string, Result) {
	result := s.Filter(SplitLines(text), observe)
	return JoinLines(result.Lines), result
}
