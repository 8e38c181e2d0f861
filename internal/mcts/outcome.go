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

package mcts

import "github.com/contriboss/depsolve-mcts/internal/versionrange"

// Kind distinguishes the three shapes an Outcome can take.
type Kind int

const (
	// Success carries a complete, constraint-satisfying assignment.
	Success Kind = iota
	// PartialFailure carries the best incomplete or invalid assignment
	// the search found, alongside diagnostics explaining the shortfall.
	PartialFailure
	// Failure carries no usable assignment at all.
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case PartialFailure:
		return "partial_failure"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of a Resolve call.
type Outcome struct {
	Kind        Kind
	Assignment  map[string]versionrange.Version
	Diagnostics []string
}
