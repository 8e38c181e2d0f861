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

import "testing"

func mustV(t *testing.T, s string) Version {
	t.Helper()
	v, err := ParseVersion(s)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", s, err)
	}
	return v
}

func TestSatisfiesLiteralScenarios(t *testing.T) {
	cases := []struct {
		rng, ver string
		want     bool
	}{
		{"^1.2.3", "1.2.3", true},
		{"^1.2.3", "2.0.0", false},
		{"^0.2.3", "0.3.0", false},
		{"^0.0.3", "0.0.4", false},
		{"~1.2.3", "1.2.99", true},
		{"~1.2.3", "1.3.0", false},
		{">=1.0.0 <2.0.0", "1.5.0", true},
		{">=1.0.0 <2.0.0", "2.0.0", false},
		{">=1.0.0 <2.0.0", "0.9.9", false},
		{"1.x || 2.x", "2.5.0", true},
		{"1.x || 2.x", "3.0.0", false},
		{">=16.x", "16.0.0", true},
		{">=16.x", "100.0.0", true},
		{">=16.x", "15.9.9", false},
	}

	for _, tc := range cases {
		r, err := Parse(tc.rng)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.rng, err)
		}
		got := r.Satisfies(mustV(t, tc.ver))
		if got != tc.want {
			t.Errorf("satisfies(%q, %q) = %v, want %v", tc.rng, tc.ver, got, tc.want)
		}
	}
}

func TestBestMatch(t *testing.T) {
	r := MustParse("^4.17.0")
	candidates := []Version{
		mustV(t, "4.17.21"),
		mustV(t, "4.17.20"),
		mustV(t, "4.17.19"),
	}
	best, ok := BestMatch(r, candidates)
	if !ok {
		t.Fatal("expected a match")
	}
	if got, want := best.String(), "4.17.21"; got != want {
		t.Errorf("BestMatch = %s, want %s", got, want)
	}
}

func TestBestMatchNoneSatisfy(t *testing.T) {
	r := MustParse("^2.0.0")
	_, ok := BestMatch(r, []Version{mustV(t, "1.0.0")})
	if ok {
		t.Fatal("expected no match")
	}
}

func TestBestMatchSingleCandidateIffSatisfies(t *testing.T) {
	r := MustParse(">=1.0.0")
	v := mustV(t, "1.0.0")
	best, ok := BestMatch(r, []Version{v})
	if ok != r.Satisfies(v) {
		t.Fatalf("BestMatch match flag disagrees with Satisfies")
	}
	if ok && best != v {
		t.Fatalf("BestMatch(r, [v]) = %v, want %v", best, v)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"1.2.3", "1.2", "1", "^1.2.3", ">=1.0.0 <2.0.0", "1.x"} {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(%q) = %q, Normalize(twice) = %q", s, once, twice)
		}
	}
}

func TestNormalizeRewritesBareVersion(t *testing.T) {
	if got, want := Normalize("1.2.3"), "^1.2.3"; got != want {
		t.Errorf("Normalize(1.2.3) = %q, want %q", got, want)
	}
	if got, want := Normalize("^1.2.3"), "^1.2.3"; got != want {
		t.Errorf("Normalize(^1.2.3) = %q, want %q", got, want)
	}
	if got, want := Normalize("1.x"), "1.x"; got != want {
		t.Errorf("Normalize(1.x) = %q, want %q", got, want)
	}
}

func TestSatisfiesTotalOnMalformedRange(t *testing.T) {
	// Matching must never panic, even on a syntactically invalid range.
	if SatisfiesString("not-a-range!!", mustV(t, "1.0.0")) {
		t.Error("expected false for an unparseable range")
	}
}

func TestInvalidSentinelNeverSatisfies(t *testing.T) {
	if INVALID.Satisfies(mustV(t, "1.0.0")) {
		t.Error("INVALID must never be satisfied")
	}
}

func TestWildcardAlone(t *testing.T) {
	r := MustParse("*")
	for _, s := range []string{"0.0.0", "1.2.3", "999.999.999"} {
		if !r.Satisfies(mustV(t, s)) {
			t.Errorf("wildcard range should match %s", s)
		}
	}
}

func TestCaretZeroZeroExact(t *testing.T) {
	r := MustParse("^0.0.3")
	if !r.Satisfies(mustV(t, "0.0.3")) {
		t.Error("^0.0.3 should match 0.0.3")
	}
	if r.Satisfies(mustV(t, "0.0.2")) {
		t.Error("^0.0.3 should not match 0.0.2")
	}
}

func TestTildeMajorOnly(t *testing.T) {
	r := MustParse("~1")
	if !r.Satisfies(mustV(t, "1.9.9")) {
		t.Error("~1 should allow any minor within major 1")
	}
	if r.Satisfies(mustV(t, "2.0.0")) {
		t.Error("~1 should not allow major 2")
	}
}
