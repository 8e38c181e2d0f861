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

import "regexp"

var bareConcreteVersion = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// Normalize rewrites a bare concrete version range ("1.2.3", "1.2", "1")
// into its caret-range equivalent ("^1.2.3"), leaving anything that already
// carries an operator or wildcard untouched. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	trimmed := raw
	if bareConcreteVersion.MatchString(trimmed) {
		return "^" + trimmed
	}
	return raw
}
