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

// Package mcts searches for a dependency version assignment using Monte
// Carlo Tree Search with the UCB1 selection rule.
package mcts

import (
	"maps"
	"slices"

	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// pendingAtDepth pairs a queued dependency with its distance from a root,
// so step can decide whether a newly discovered dependency has crossed
// max_depth.
type pendingAtDepth struct {
	dep   model.PendingDependency
	depth int
}

// ResolverState is one node's worth of resolver progress: what has been
// decided, what is left to decide, and the constraints accumulated along
// the way (peer-dependency only).
type ResolverState struct {
	Resolved    map[string]versionrange.Version
	Pending     []pendingAtDepth
	Constraints map[string][]model.Constraint

	// MaxDepthOverflow names packages whose dependency fetch was skipped
	// because they were discovered past max_depth. They are never
	// resolved and never block termination.
	MaxDepthOverflow map[string]bool
}

// NewResolverState builds an empty state with the given roots queued at
// depth 0, pre-normalized per the step contract.
func NewResolverState(roots map[string]string) *ResolverState {
	s := &ResolverState{
		Resolved:         make(map[string]versionrange.Version),
		Constraints:      make(map[string][]model.Constraint),
		MaxDepthOverflow: make(map[string]bool),
	}
	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		s.Pending = append(s.Pending, pendingAtDepth{
			dep:   model.PendingDependency{PackageName: name, RangeString: versionrange.Normalize(roots[name]), RequiredBy: ""},
			depth: 0,
		})
	}
	return s
}

// Clone deep-copies the state so rollouts and expansions never mutate a
// shared ancestor.
func (s *ResolverState) Clone() *ResolverState {
	next := &ResolverState{
		Resolved:         maps.Clone(s.Resolved),
		Pending:          slices.Clone(s.Pending),
		MaxDepthOverflow: maps.Clone(s.MaxDepthOverflow),
	}
	next.Constraints = make(map[string][]model.Constraint, len(s.Constraints))
	for name, cs := range s.Constraints {
		next.Constraints[name] = slices.Clone(cs)
	}
	return next
}

// HeadPending returns the head of the pending queue, if any.
func (s *ResolverState) HeadPending() (model.PendingDependency, bool) {
	if len(s.Pending) == 0 {
		return model.PendingDependency{}, false
	}
	return s.Pending[0].dep, true
}

func (s *ResolverState) headDepth() int {
	if len(s.Pending) == 0 {
		return 0
	}
	return s.Pending[0].depth
}

// ViolatesConstraints reports whether any package carries the INVALID
// sentinel constraint.
func (s *ResolverState) ViolatesConstraints() bool {
	for _, cs := range s.Constraints {
		for _, c := range cs {
			if c.IsInvalid() {
				return true
			}
		}
	}
	return false
}

// IsTerminal reports whether the state has an empty pending queue or has
// violated a constraint.
func (s *ResolverState) IsTerminal() bool {
	return len(s.Pending) == 0 || s.ViolatesConstraints()
}

// IsValid reports whether a terminal state is a genuine solution: no
// violated constraint and nothing left pending.
func (s *ResolverState) IsValid() bool {
	return len(s.Pending) == 0 && !s.ViolatesConstraints()
}

func (s *ResolverState) hasPending(name string) bool {
	for _, p := range s.Pending {
		if p.dep.PackageName == name {
			return true
		}
	}
	return false
}

// Assignment copies out the resolved name->version map.
func (s *ResolverState) Assignment() map[string]versionrange.Version {
	return maps.Clone(s.Resolved)
}
