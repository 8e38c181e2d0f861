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
	"context"

	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// candidatesFor computes the ordered, newest-first candidate list for the
// head of state.Pending, per the expansion contract shared by Expansion
// and Simulation. This is the only place either phase touches the
// registry or vulnerability adapters.
func (r *Resolver) candidatesFor(ctx context.Context, state *ResolverState, pending model.PendingDependency, depth int) ([]versionrange.Version, error) {
	versions, err := r.registry.AvailableVersions(pending.PackageName)
	if err != nil {
		return nil, err
	}

	if r.cfg.DependencyType == model.Peer {
		versions = filterByConstraints(versions, state.Constraints[pending.PackageName])

		if r.cfg.InitVersions && depth == 0 {
			if rootRange, ok := r.roots[pending.PackageName]; ok {
				rooted, parseErr := versionrange.Parse(versionrange.Normalize(rootRange))
				if parseErr == nil {
					versions = filterSatisfying(versions, rooted)
				}
			}
		}
	}

	if len(versions) > r.cfg.MaxCompareVersions {
		versions = versions[:r.cfg.MaxCompareVersions]
	}

	if r.cfg.Threshold == nil {
		return versions, nil
	}

	filtered := make([]versionrange.Version, 0, len(versions))
	for _, v := range versions {
		list := r.vulnerabilities.VulnerabilitiesFailOpen(ctx, pending.PackageName, v.String())
		if r.cfg.Threshold.Passes(list) {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

func filterByConstraints(versions []versionrange.Version, constraints []model.Constraint) []versionrange.Version {
	if len(constraints) == 0 {
		return versions
	}
	out := make([]versionrange.Version, 0, len(versions))
	for _, v := range versions {
		ok := true
		for _, c := range constraints {
			if c.IsInvalid() || !c.Range.Satisfies(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, v)
		}
	}
	return out
}

func filterSatisfying(versions []versionrange.Version, r versionrange.Range) []versionrange.Version {
	out := make([]versionrange.Version, 0, len(versions))
	for _, v := range versions {
		if r.Satisfies(v) {
			out = append(out, v)
		}
	}
	return out
}
