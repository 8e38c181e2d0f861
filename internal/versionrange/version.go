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

// Package versionrange implements the semantic-version triple and the
// range grammar used across the resolver: exact, caret, tilde, comparison,
// wildcard, and AND/OR combinations.
package versionrange

import (
	"fmt"
	"slices"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a (major, minor, patch) triple. Prerelease and build metadata
// are stripped for comparison purposes; missing components are treated as
// zero.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string that may carry a leading "v", a
// trailing "-<prerelease>" or "+<build>" segment, and up to two missing
// trailing components. Component extraction is delegated to
// github.com/Masterminds/semver/v3, which already understands all of these
// forms; we keep only the numeric triple.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("versionrange: parse version %q: %w", s, err)
	}
	return Version{Major: int(v.Major()), Minor: int(v.Minor()), Patch: int(v.Patch())}, nil
}

// MustParseVersion is ParseVersion but panics on error. Intended for tests
// and compile-time-known literals.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, comparing lexicographically on the (major, minor, patch) triple.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	if v.Patch != other.Patch {
		return cmpInt(v.Patch, other.Patch)
	}
	return 0
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortVersions sorts versions newest-first, in place.
func SortVersions(versions []Version) {
	slices.SortFunc(versions, func(a, b Version) int { return -a.Compare(b) })
}
