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

import (
	"slices"

	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// step applies a decision (resolve the head-of-queue package to info's
// version) to state, returning a new state. The head of state.Pending
// must name info.Name.
func step(state *ResolverState, info model.PackageInfo, cfg Config) *ResolverState {
	next := state.Clone()
	head := next.Pending[0]
	next.Pending = next.Pending[1:]

	next.Resolved[info.Name] = info.ResolvedVersion
	childDepth := head.depth + 1

	depNames := make([]string, 0, len(info.Deps(cfg.DependencyType)))
	for depName := range info.Deps(cfg.DependencyType) {
		depNames = append(depNames, depName)
	}
	slices.Sort(depNames)

	deps := info.Deps(cfg.DependencyType)
	for _, depName := range depNames {
		depRangeRaw := deps[depName]
		depRange := versionrange.Normalize(depRangeRaw)

		_, alreadyResolved := next.Resolved[depName]
		if !alreadyResolved && !next.hasPending(depName) {
			if childDepth > cfg.MaxDepth {
				next.MaxDepthOverflow[depName] = true
			} else {
				next.Pending = append(next.Pending, pendingAtDepth{
					dep:   model.PendingDependency{PackageName: depName, RangeString: depRange, RequiredBy: info.Name},
					depth: childDepth,
				})
			}
		}

		if cfg.DependencyType == model.Peer {
			applyPeerConstraint(next, depName, depRange, info.Name, info.ResolvedVersion)
		}
	}

	return next
}

func applyPeerConstraint(state *ResolverState, depName, depRangeRaw, requiredBy string, requiredByVersion versionrange.Version) {
	if resolvedVersion, ok := state.Resolved[depName]; ok {
		if !versionrange.SatisfiesString(depRangeRaw, resolvedVersion) {
			state.Constraints[depName] = []model.Constraint{model.InvalidConstraint(requiredBy, requiredByVersion)}
		}
		return
	}

	r, err := versionrange.Parse(depRangeRaw)
	if err != nil {
		r = versionrange.INVALID
	}
	v := requiredByVersion
	state.Constraints[depName] = append(state.Constraints[depName], model.Constraint{
		Range:             r,
		RequiredBy:        requiredBy,
		RequiredByVersion: &v,
	})
}
