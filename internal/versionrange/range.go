// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package versionrange

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Range is an immutable, parsed version-range expression with a pure
// Satisfies predicate. Each OR-group is compiled straight into a
// Masterminds constraint set; all caret/tilde/wildcard/comparison matching
// is delegated to it, the same way Version delegates version parsing.
type Range struct {
	raw    string
	groups []*mm.Constraints
}

// INVALID is the sentinel range that can never be satisfied, used to mark a
// known-unsatisfiable peer constraint.
var INVALID = Range{raw: "INVALID", groups: nil}

// String returns the original range expression.
func (r Range) String() string { return r.raw }

// IsInvalid reports whether r is the INVALID sentinel.
func (r Range) IsInvalid() bool { return r.raw == "INVALID" }

// Satisfies reports whether v matches the range: any OR-group whose
// constraints all Check is enough. The INVALID sentinel never matches.
func (r Range) Satisfies(v Version) bool {
	if r.IsInvalid() {
		return false
	}
	mv, err := mm.NewVersion(v.String())
	if err != nil {
		return false
	}
	for _, g := range r.groups {
		if g.Check(mv) {
			return true
		}
	}
	return false
}

// Satisfies is the package-level form of Range.Satisfies, matching the
// version_range::satisfies external interface named in the design.
func Satisfies(r Range, v Version) bool { return r.Satisfies(v) }

// Parse parses a range expression per the grammar:
//
//	Expr := Or
//	Or   := And ("||" And)*
//	And  := Atom ( ("&&" | WS) Atom )*
//	Atom := "*" | "x" | "X"
//	     | "^" Ver | "~" Ver
//	     | (">=" | "<=" | ">" | "<") Ver
//	     | Ver
//
// Each And-clause is tokenized, normalized to the one detail Masterminds
// handles differently from this grammar (wildcards on the right of a
// comparison operator mean zero here, "any" there), then handed to
// Masterminds/semver as a single comma-joined constraint string.
func Parse(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Range{}, fmt.Errorf("versionrange: empty range")
	}

	var groups []*mm.Constraints
	for _, orPart := range strings.Split(raw, "||") {
		orPart = strings.TrimSpace(orPart)
		if orPart == "" {
			return Range{}, fmt.Errorf("versionrange: empty OR clause in %q", raw)
		}
		tokens, err := tokenizeAndGroup(orPart)
		if err != nil {
			return Range{}, err
		}
		c, err := mm.NewConstraint(strings.Join(tokens, ","))
		if err != nil {
			return Range{}, fmt.Errorf("versionrange: %w", err)
		}
		groups = append(groups, c)
	}

	return Range{raw: raw, groups: groups}, nil
}

// MustParse is Parse but panics on error.
func MustParse(s string) Range {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// SatisfiesString parses raw and reports whether v satisfies it, treating a
// syntax error as non-satisfaction rather than propagating — matching the
// matching-time error policy in the design (Parse itself returns the
// syntax error to its caller; matching never panics or returns an error).
func SatisfiesString(raw string, v Version) bool {
	r, err := Parse(raw)
	if err != nil {
		return false
	}
	return r.Satisfies(v)
}

// BestMatch returns the newest version among candidates that satisfies r,
// or false if none do.
func BestMatch(r Range, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, c := range candidates {
		if !r.Satisfies(c) {
			continue
		}
		if !found || c.Compare(best) > 0 {
			best = c
			found = true
		}
	}
	return best, found
}

// tokenizeAndGroup splits an AND-clause into Masterminds-ready constraint
// tokens. AND boundaries are either an explicit "&&" or whitespace — but
// whitespace between a bare operator token (">=", "<=", ">", "<", "^", "~")
// and its version is not a boundary, so a split-then-merge pass is needed
// rather than a naive field split.
func tokenizeAndGroup(s string) ([]string, error) {
	s = strings.ReplaceAll(s, "&&", " ")
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil, fmt.Errorf("versionrange: empty AND clause")
	}

	var raw []string
	for i := 0; i < len(words); i++ {
		w := words[i]
		if isBareOperator(w) && i+1 < len(words) {
			raw = append(raw, w+words[i+1])
			i++
			continue
		}
		raw = append(raw, w)
	}

	tokens := make([]string, len(raw))
	for i, tok := range raw {
		tokens[i] = normalizeToken(tok)
	}
	return tokens, nil
}

func isBareOperator(w string) bool {
	switch w {
	case ">=", "<=", ">", "<", "^", "~":
		return true
	default:
		return false
	}
}

var comparisonPrefixes = []string{">=", "<=", ">", "<"}

// normalizeToken strips a trailing prerelease/build segment — comparison is
// always on the bare numeric triple — and, only for an explicit comparison
// operator, zero-fills a wildcard or missing right-hand component. That
// zero-fill is the one place this grammar diverges from Masterminds' own
// partial-version handling, which treats a missing component as "any"
// rather than "zero"; bare, caret, and tilde atoms are left for Masterminds
// to interpret natively.
func normalizeToken(tok string) string {
	for _, op := range comparisonPrefixes {
		if strings.HasPrefix(tok, op) {
			ver := stripPrereleaseBuild(tok[len(op):])
			return op + zeroFillWildcards(ver)
		}
	}
	if rest, ok := strings.CutPrefix(tok, "^"); ok {
		return "^" + stripPrereleaseBuild(rest)
	}
	if rest, ok := strings.CutPrefix(tok, "~"); ok {
		return "~" + stripPrereleaseBuild(rest)
	}
	return stripPrereleaseBuild(tok)
}

func stripPrereleaseBuild(s string) string {
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		return s[:i]
	}
	return s
}

// zeroFillWildcards rewrites a wildcard or missing component to "0" in each
// of the (up to) three dot-separated slots, per the "wildcards on the right
// side are treated as 0" comparison rule.
func zeroFillWildcards(ver string) string {
	parts := strings.SplitN(ver, ".", 3)
	out := make([]string, 3)
	for i := range out {
		if i >= len(parts) {
			out[i] = "0"
			continue
		}
		switch parts[i] {
		case "", "x", "X", "*":
			out[i] = "0"
		default:
			out[i] = parts[i]
		}
	}
	return strings.Join(out, ".")
}
