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

// Package depsolvemcts re-exports the version-range matcher at the module
// root so external callers can parse and satisfy ranges without reaching
// into internal/versionrange.
package depsolvemcts

import "github.com/contriboss/depsolve-mcts/internal/versionrange"

// Version and Range are aliases of the versionrange package's types, kept
// at the module root for external callers.
type (
	Version = versionrange.Version
	Range   = versionrange.Range
)

// ParseVersion parses a bare version string.
func ParseVersion(s string) (Version, error) { return versionrange.ParseVersion(s) }

// ParseRange parses a (possibly AND/OR-combined) range expression.
func ParseRange(s string) (Range, error) { return versionrange.Parse(s) }

// Satisfies reports whether v satisfies r.
func Satisfies(r Range, v Version) bool { return r.Satisfies(v) }

// NormalizeRange rewrites a bare concrete version into its caret-range
// equivalent, leaving any already-valid range expression untouched.
func NormalizeRange(raw string) string { return versionrange.Normalize(raw) }
