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
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// Registry is the subset of the registry adapter's surface the resolver
// needs: candidate enumeration and metadata fetch for one concrete
// version. registry.Adapter satisfies this.
type Registry interface {
	AvailableVersions(name string) ([]versionrange.Version, error)
	PackageAt(name string, version versionrange.Version) (model.PackageInfo, error)
}

// VulnerabilityChecker is the subset of the vulnerability adapter's
// surface the resolver needs. The fail-open entry point is used
// deliberately: during a vulnerability-feed outage every candidate passes
// the threshold check instead of the search aborting. vuln.Adapter
// satisfies this.
type VulnerabilityChecker interface {
	VulnerabilitiesFailOpen(ctx context.Context, name, version string) model.VulnerabilityList
}

// Resolver runs Monte Carlo Tree Search over a dependency graph fetched
// on demand from registry and scored against vulnerabilities.
type Resolver struct {
	registry        Registry
	vulnerabilities VulnerabilityChecker
	cfg             Config
	roots           map[string]string

	rngMu sync.Mutex
	rng   *rand.Rand

	bestMu     sync.Mutex
	bestReward float64
	bestState  *ResolverState

	diagMu      sync.Mutex
	diagnostics []string
}

// New builds a Resolver. registry and vulnerabilities must not be nil;
// pass a VulnerabilityChecker that always returns an empty list if
// vulnerability scoring is not wanted (equivalent to a nil Threshold,
// but keeps the collaborator contract non-optional).
func New(registry Registry, vulnerabilities VulnerabilityChecker, opts ...Option) *Resolver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rng := cfg.RandSource
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Resolver{
		registry:        registry,
		vulnerabilities: vulnerabilities,
		cfg:             cfg,
		rng:             rng,
	}
}

// drawUniform draws a float64 in [0,1) from the resolver's shared RNG.
// Guarded by a mutex so the optional parallel iteration mode can share
// one injectable, reproducible source across goroutines.
func (r *Resolver) drawUniform() float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Float64()
}

// Resolve searches for a version assignment for roots and everything they
// transitively depend on. Candidates for each package are its available
// versions, newest-first; under the Peer dependency type they must also
// satisfy every peer-dependency constraint discovered along the way, and
// a root's own range is applied only when InitVersions is set as well.
// Range strings are not otherwise used to filter candidates. It runs
// until Config.MaxIterations cycles complete or ctx is cancelled.
func (r *Resolver) Resolve(ctx context.Context, roots map[string]string) Outcome {
	r.roots = roots
	root := NewResolverState(roots)
	t, rootID := newTree(root)

	if r.cfg.Parallel && r.cfg.ParallelWorkers > 1 {
		r.runParallel(ctx, t, rootID)
	} else {
		r.runSequential(ctx, t, rootID)
	}

	outcome := r.extractSolution(t, rootID)
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.recordOutcome(outcome.Kind, len(t.all()))
	}
	return outcome
}

func (r *Resolver) runSequential(ctx context.Context, t *tree, rootID nodeID) {
	for i := 0; i < r.cfg.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			r.recordDiagnostic(fmt.Sprintf("cancelled after %d iterations: %v", i, ctx.Err()))
			return
		default:
		}
		if err := r.runIteration(ctx, t, rootID); err != nil {
			r.recordDiagnostic(err.Error())
		}
		r.cfg.Metrics.recordIteration()
	}
}

// runParallel fans iterations out across ParallelWorkers goroutines
// sharing one tree. Tree mutation is serialized inside tree's own
// locked methods, and drawUniform serializes the shared RNG, so the
// only cross-goroutine coordination left to errgroup is capping
// concurrency and propagating ctx cancellation.
func (r *Resolver) runParallel(ctx context.Context, t *tree, rootID nodeID) {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, r.cfg.ParallelWorkers)

iterLoop:
	for i := 0; i < r.cfg.MaxIterations; i++ {
		select {
		case <-gctx.Done():
			break iterLoop
		default:
		}
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			if err := r.runIteration(gctx, t, rootID); err != nil {
				r.recordDiagnostic(err.Error())
			}
			r.cfg.Metrics.recordIteration()
			return nil
		})
	}

	_ = g.Wait()
}

// runIteration performs one select -> expand -> simulate ->
// backpropagate cycle.
func (r *Resolver) runIteration(ctx context.Context, t *tree, rootID nodeID) error {
	selected := r.selectNode(t, rootID)
	n := t.node(selected)

	expanded := selected
	if !n.state.IsTerminal() && !t.isDeadEnd(selected) {
		child, added, err := r.expandChild(ctx, t, selected)
		if err != nil {
			return err
		}
		if added {
			expanded = child
		} else if t.isDeadEnd(selected) {
			r.recordDiagnostic(deadEndDiagnostic(n.state))
		}
	}

	reward, final, err := r.rollout(ctx, t.node(expanded).state)
	if err != nil {
		return err
	}

	if reward > 0 {
		r.considerBestSimulation(final, reward)
	} else if final.ViolatesConstraints() {
		r.recordDiagnostic(violationDiagnostic(final))
	}

	backpropagate(t, expanded, reward)
	return nil
}

func (r *Resolver) considerBestSimulation(state *ResolverState, reward float64) {
	r.bestMu.Lock()
	defer r.bestMu.Unlock()
	if reward > r.bestReward {
		r.bestReward = reward
		r.bestState = state
	}
}

func (r *Resolver) recordDiagnostic(msg string) {
	r.diagMu.Lock()
	defer r.diagMu.Unlock()
	r.diagnostics = append(r.diagnostics, msg)
	if len(r.diagnostics) > 10 {
		r.diagnostics = r.diagnostics[len(r.diagnostics)-10:]
	}
}

func (r *Resolver) diagnosticsSnapshot() []string {
	r.diagMu.Lock()
	defer r.diagMu.Unlock()
	return append([]string(nil), r.diagnostics...)
}

// extractSolution implements the end-of-search selection rule: the
// highest reward_sum/visits terminal node, ties broken by first
// encountered in node-insertion order; falling back to the
// best-simulation cache; falling back to a partial assignment plus
// diagnostics; falling back to a bare failure.
func (r *Resolver) extractSolution(t *tree, rootID nodeID) Outcome {
	nodes := t.all()

	bestIdx := -1
	bestAvg := 0.0
	for i, n := range nodes {
		if !(n.state.IsTerminal() || n.deadEnd) {
			continue
		}
		avg := 0.0
		if n.visits > 0 {
			avg = n.rewardSum / float64(n.visits)
		}
		if bestIdx == -1 || avg > bestAvg {
			bestIdx = i
			bestAvg = avg
		}
	}

	if bestIdx >= 0 && nodes[bestIdx].state.IsValid() {
		return Outcome{Kind: Success, Assignment: nodes[bestIdx].state.Assignment()}
	}

	r.bestMu.Lock()
	fallback := r.bestState
	r.bestMu.Unlock()
	if fallback != nil {
		return Outcome{Kind: Success, Assignment: fallback.Assignment()}
	}

	diagnostics := r.diagnosticsSnapshot()
	if bestIdx >= 0 && len(nodes[bestIdx].state.Resolved) > 0 {
		return Outcome{
			Kind:        PartialFailure,
			Assignment:  nodes[bestIdx].state.Assignment(),
			Diagnostics: diagnostics,
		}
	}
	return Outcome{Kind: Failure, Diagnostics: diagnostics}
}

func violationDiagnostic(state *ResolverState) string {
	var broken []string
	for name, cs := range state.Constraints {
		for _, c := range cs {
			if c.IsInvalid() {
				broken = append(broken, name)
				break
			}
		}
	}
	return fmt.Sprintf("constraint violation: %s", strings.Join(broken, ", "))
}

func deadEndDiagnostic(state *ResolverState) string {
	pending, ok := state.HeadPending()
	if !ok {
		return "dead end: no pending package"
	}
	return fmt.Sprintf("dead end: no surviving candidate versions for %s (range %s)", pending.PackageName, pending.RangeString)
}
