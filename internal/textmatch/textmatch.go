// Package textmatch provides the small pattern-matching vocabulary shared by
// the guards: ordered rule tables, first-match lookup, match counting and
// span capture.
package textmatch

import (
	"regexp"
	"strings"
)

// Rule pairs a compiled pattern with the label reported when it matches
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
}

// RuleSet is an ordered list of rules consulted top to bottom
type RuleSet []Rule

// MustRule compiles pattern into a Rule and panics on an invalid pattern.
// Rule tables are package-level values, so a bad pattern fails at startup.
func MustRule(label, pattern string) Rule {
	return Rule{Label: label, Pattern: regexp.MustCompile(pattern)}
}

// MustRuleFold is MustRule with case-insensitive matching
func MustRuleFold(label, pattern string) Rule {
	return MustRule(label, "(?i)"+pattern)
}

// Word returns a pattern matching the given words as a whole phrase, with
// word boundaries on both ends and any run of whitespace between words
func Word(phrase string) string {
	fields := strings.Fields(phrase)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return `\b` + strings.Join(quoted, `\s+`) + `\b`
}

// Match reports whether the rule matches s
func (r Rule) Match(s string) bool {
	return r.Pattern.MatchString(s)
}

// Count returns the number of non-overlapping matches of the rule in s
func (r Rule) Count(s string) int {
	return Count(r.Pattern, s)
}

// First returns the first rule in table order that matches s
func (rs RuleSet) First(s string) (Rule, bool) {
	for _, r := range rs {
		if r.Match(s) {
			return r, true
		}
	}
	return Rule{}, false
}

// Delta describes how the match count of one rule changed between two texts
type Delta struct {
	Rule   Rule
	Before int
	After  int
}

// Decreased reports whether the after count is strictly below the before count
func (d Delta) Decreased() bool {
	return d.After < d.Before
}

// Counts evaluates every rule against both texts, in table order
func (rs RuleSet) Counts(before, after string) []Delta {
	deltas := make([]Delta, 0, len(rs))
	for _, r := range rs {
		deltas = append(deltas, Delta{
			Rule:   r,
			Before: r.Count(before),
			After:  r.Count(after),
		})
	}
	return deltas
}

// Count returns the number of non-overlapping matches of re in s
func Count(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}

// Capture returns the given submatch group of the first match of re in s
func Capture(re *regexp.Regexp, s string, group int) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil || group >= len(m) {
		return "", false
	}
	return m[group], true
}

// CaptureAll returns the given submatch group of every match of re in s
func CaptureAll(re *regexp.Regexp, s string, group int) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if group < len(m) {
			out = append(out, m[group])
		}
	}
	return out
}

// ContainsAny reports whether s contains any of the plain substrings
func ContainsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
