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

// reward scores a finished rollout state: 0 if it violates constraints or
// still has pending work, otherwise the arithmetic mean of per-package
// rank scores (1 - rank/|versions|, rank 0 = newest). A resolved package
// missing from its own version list is skipped in both the sum and the
// count.
func (r *Resolver) reward(state *ResolverState) (float64, error) {
	if state.ViolatesConstraints() || len(state.Pending) > 0 {
		return 0, nil
	}

	var sum float64
	var count int
	for name, v := range state.Resolved {
		versions, err := r.registry.AvailableVersions(name)
		if err != nil {
			continue
		}
		rank := -1
		for i, candidate := range versions {
			if candidate.Compare(v) == 0 {
				rank = i
				break
			}
		}
		if rank < 0 || len(versions) == 0 {
			continue
		}
		sum += 1 - float64(rank)/float64(len(versions))
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}
