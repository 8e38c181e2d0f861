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

package model

import (
	"fmt"

	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// Constraint records a range imposed by a package (and, optionally, the
// exact version of that package) on some other package name. The sentinel
// INVALID range marks a known-unsatisfiable constraint injected when a peer
// conflict is detected.
type Constraint struct {
	Range            versionrange.Range
	RequiredBy       string
	RequiredByVersion *versionrange.Version
}

// IsInvalid reports whether c carries the INVALID sentinel range.
func (c Constraint) IsInvalid() bool { return c.Range.IsInvalid() }

// InvalidConstraint builds the sentinel constraint recorded when a peer
// dependency conflict makes a state terminal-invalid.
func InvalidConstraint(requiredBy string, requiredByVersion versionrange.Version) Constraint {
	v := requiredByVersion
	return Constraint{Range: versionrange.INVALID, RequiredBy: requiredBy, RequiredByVersion: &v}
}

func (c Constraint) String() string {
	if c.RequiredByVersion != nil {
		return fmt.Sprintf("%s (required by %s@%s)", c.Range, c.RequiredBy, c.RequiredByVersion)
	}
	return fmt.Sprintf("%s (required by %s)", c.Range, c.RequiredBy)
}

// PendingDependency is a (name, range, required_by) triple queued for
// future resolution. FIFO order of the queue defines the search's decision
// order.
type PendingDependency struct {
	PackageName string
	RangeString string
	RequiredBy  string
}

func (p PendingDependency) String() string {
	if p.RequiredBy == "" {
		return fmt.Sprintf("%s@%s", p.PackageName, p.RangeString)
	}
	return fmt.Sprintf("%s@%s (required by %s)", p.PackageName, p.RangeString, p.RequiredBy)
}
