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
	"math"
)

// rollout simulates play from state to a terminal state (or
// max_simulation_depth), sampling candidates by the softmax-over-rank
// rule, and returns the resulting reward together with the final
// simulated state, so the caller can track it as a best-simulation
// fallback candidate. It never mutates state; each step clones.
func (r *Resolver) rollout(ctx context.Context, state *ResolverState) (float64, *ResolverState, error) {
	current := state
	for i := 0; i < r.cfg.MaxSimulationDepth; i++ {
		if current.IsTerminal() {
			break
		}

		pending, ok := current.HeadPending()
		if !ok {
			break
		}

		candidates, err := r.candidatesFor(ctx, current, pending, current.headDepth())
		if err != nil {
			return 0, current, err
		}
		if len(candidates) == 0 {
			return 0, current, nil
		}

		idx := sampleByRankSoftmax(r.drawUniform(), len(candidates), r.cfg.Lambda)
		info, err := r.registry.PackageAt(pending.PackageName, candidates[idx])
		if err != nil {
			return 0, current, nil
		}
		current = step(current, info, r.cfg)
	}

	reward, err := r.reward(current)
	return reward, current, err
}

// sampleByRankSoftmax picks an index in [0,n) by the softmax-over-rank
// rule: rank_i = n-i (newest has the highest rank), p_i ∝ exp(lambda *
// rank_i), computed with the log-sum-exp trick for numerical stability,
// sampled against the supplied uniform draw in [0,1).
func sampleByRankSoftmax(draw float64, n int, lambda float64) int {
	if n == 1 {
		return 0
	}

	logWeights := make([]float64, n)
	maxLog := math.Inf(-1)
	for i := 0; i < n; i++ {
		rank := float64(n - i)
		logWeights[i] = lambda * rank
		if logWeights[i] > maxLog {
			maxLog = logWeights[i]
		}
	}

	sumExp := 0.0
	for _, lw := range logWeights {
		sumExp += math.Exp(lw - maxLog)
	}
	logSumExp := maxLog + math.Log(sumExp)

	cumulative := 0.0
	for i, lw := range logWeights {
		cumulative += math.Exp(lw - logSumExp)
		if draw < cumulative {
			return i
		}
	}
	return n - 1
}
