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
	"testing"

	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// fakePackage holds the per-name dependency maps a fakeRegistry serves.
// Every version of a name shares the same declared dependencies in these
// tests; only ResolvedVersion varies per call.
type fakePackage struct {
	runtimeDeps map[string]string
	devDeps     map[string]string
	peerDeps    map[string]string
}

// fakeRegistry is an in-memory Registry double. versions must be supplied
// newest-first, matching the real adapter's contract.
type fakeRegistry struct {
	versions map[string][]versionrange.Version
	packages map[string]fakePackage
}

func (f *fakeRegistry) AvailableVersions(name string) ([]versionrange.Version, error) {
	vs, ok := f.versions[name]
	if !ok {
		return nil, fmt.Errorf("fakeRegistry: no versions for %q", name)
	}
	return vs, nil
}

func (f *fakeRegistry) PackageAt(name string, version versionrange.Version) (model.PackageInfo, error) {
	if _, ok := f.versions[name]; !ok {
		return model.PackageInfo{}, fmt.Errorf("fakeRegistry: unknown package %q", name)
	}
	pkg := f.packages[name]
	return model.PackageInfo{
		Name:            name,
		ResolvedVersion: version,
		RuntimeDeps:     pkg.runtimeDeps,
		DevDeps:         pkg.devDeps,
		PeerDeps:        pkg.peerDeps,
	}, nil
}

// fakeVuln is an in-memory VulnerabilityChecker double, keyed by
// "name@version". A missing key yields an empty list.
type fakeVuln struct {
	vulns map[string]model.VulnerabilityList
}

func (f *fakeVuln) VulnerabilitiesFailOpen(_ context.Context, name, version string) model.VulnerabilityList {
	return f.vulns[name+"@"+version]
}

func mustVersion(t *testing.T, s string) versionrange.Version {
	t.Helper()
	v, err := versionrange.ParseVersion(s)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", s, err)
	}
	return v
}

func mustVersions(t *testing.T, ss ...string) []versionrange.Version {
	t.Helper()
	out := make([]versionrange.Version, len(ss))
	for i, s := range ss {
		out[i] = mustVersion(t, s)
	}
	return out
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

// Scenario A: trivial success. A single root with no dependencies resolves
// to its newest version.
func TestResolveScenarioATrivialSuccess(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"lodash": mustVersions(t, "4.17.21", "4.17.20", "4.17.19"),
		},
	}
	r := New(registry, &fakeVuln{}, WithMaxIterations(50), WithRandSource(seededRand()))

	outcome := r.Resolve(context.Background(), map[string]string{"lodash": "^4.17.0"})

	if outcome.Kind != Success {
		t.Fatalf("Kind = %v, want Success (diagnostics: %v)", outcome.Kind, outcome.Diagnostics)
	}
	want := mustVersion(t, "4.17.21")
	if got := outcome.Assignment["lodash"]; got.Compare(want) != 0 {
		t.Fatalf("lodash = %s, want %s", got, want)
	}
}

// Scenario B: threshold filter. The two newest versions each carry a HIGH
// vulnerability; with threshold HIGH only the oldest survives.
func TestResolveScenarioBThresholdFilter(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"lodash": mustVersions(t, "4.17.21", "4.17.20", "4.17.19"),
		},
	}
	oneHigh := model.VulnerabilityList{{ID: "CVE-X", Severity: model.SeverityHigh}}
	vuln := &fakeVuln{vulns: map[string]model.VulnerabilityList{
		"lodash@4.17.21": oneHigh,
		"lodash@4.17.20": oneHigh,
	}}
	threshold, ok := model.ParseThreshold("HIGH")
	if !ok {
		t.Fatal("ParseThreshold(HIGH) unexpectedly disabled")
	}

	r := New(registry, vuln, WithMaxIterations(50), WithRandSource(seededRand()), WithThreshold(threshold))
	outcome := r.Resolve(context.Background(), map[string]string{"lodash": "^4.17.0"})

	if outcome.Kind != Success {
		t.Fatalf("Kind = %v, want Success (diagnostics: %v)", outcome.Kind, outcome.Diagnostics)
	}
	want := mustVersion(t, "4.17.19")
	if got := outcome.Assignment["lodash"]; got.Compare(want) != 0 {
		t.Fatalf("lodash = %s, want %s", got, want)
	}
}

// Scenario C: peer conflict. Two roots require mutually exclusive peer
// versions of the same package; no candidate satisfies both constraints,
// so the search cannot reach a valid assignment.
func TestResolveScenarioCPeerConflict(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"X":     mustVersions(t, "1.0.0"),
			"Y":     mustVersions(t, "1.0.0"),
			"react": mustVersions(t, "18.2.0", "17.0.2"),
		},
		packages: map[string]fakePackage{
			"X": {peerDeps: map[string]string{"react": "^17.0.0"}},
			"Y": {peerDeps: map[string]string{"react": "^18.0.0"}},
		},
	}
	r := New(registry, &fakeVuln{},
		WithMaxIterations(100), WithRandSource(seededRand()), WithDependencyType(model.Peer))

	outcome := r.Resolve(context.Background(), map[string]string{"X": "^1.0.0", "Y": "^1.0.0"})

	if outcome.Kind == Success {
		t.Fatalf("Kind = Success, want PartialFailure or Failure (assignment: %v)", outcome.Assignment)
	}
	found := false
	for _, d := range outcome.Diagnostics {
		if strings.Contains(d, "react") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("diagnostics %v do not name the conflicting package react", outcome.Diagnostics)
	}
}

// Scenario D: normalization. A bare concrete root version is rewritten to
// its caret-range equivalent before being queued, so sibling versions in
// the same compatible range are valid picks.
func TestResolveScenarioDNormalization(t *testing.T) {
	state := NewResolverState(map[string]string{"pkg": "1.2.3"})
	pending, ok := state.HeadPending()
	if !ok {
		t.Fatal("expected a queued root dependency")
	}
	if want := "^1.2.3"; pending.RangeString != want {
		t.Fatalf("RangeString = %q, want %q", pending.RangeString, want)
	}

	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"pkg": mustVersions(t, "1.3.5", "1.3.0", "1.2.3"),
		},
	}
	r := New(registry, &fakeVuln{}, WithMaxIterations(50), WithRandSource(seededRand()))
	outcome := r.Resolve(context.Background(), map[string]string{"pkg": "1.2.3"})

	if outcome.Kind != Success {
		t.Fatalf("Kind = %v, want Success (diagnostics: %v)", outcome.Kind, outcome.Diagnostics)
	}
	want := mustVersion(t, "1.3.5")
	if got := outcome.Assignment["pkg"]; got.Compare(want) != 0 {
		t.Fatalf("pkg = %s, want %s (normalization should admit the whole ^1.2.3 range)", got, want)
	}
}

// Scenario E: best-simulation fallback. The tree's own terminal node is
// invalid, but a rollout earlier in the search produced a valid complete
// assignment; extractSolution must surface that cached fallback instead
// of reporting failure.
func TestResolveScenarioEBestSimulationFallback(t *testing.T) {
	r := New(&fakeRegistry{versions: map[string][]versionrange.Version{}}, &fakeVuln{})

	invalid := NewResolverState(map[string]string{"pkg": "^1.0.0"})
	invalid.Constraints["pkg"] = []model.Constraint{model.InvalidConstraint("other", mustVersion(t, "1.0.0"))}
	tr, rootID := newTree(invalid)

	fallback := &ResolverState{
		Resolved: map[string]versionrange.Version{"pkg": mustVersion(t, "1.0.0")},
	}
	r.considerBestSimulation(fallback, 0.8)

	outcome := r.extractSolution(tr, rootID)
	if outcome.Kind != Success {
		t.Fatalf("Kind = %v, want Success via best-simulation fallback", outcome.Kind)
	}
	want := mustVersion(t, "1.0.0")
	if got := outcome.Assignment["pkg"]; got.Compare(want) != 0 {
		t.Fatalf("pkg = %s, want %s", got, want)
	}
}

// Scenario F: every version rejected by threshold. No candidate survives
// vulnerability filtering at the root itself, so the search fails with no
// assignment at all.
func TestResolveScenarioFAllVersionsRejected(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"pkg": mustVersions(t, "2.0.0", "1.0.0"),
		},
	}
	critical := model.VulnerabilityList{{ID: "CVE-Y", Severity: model.SeverityCritical}}
	vuln := &fakeVuln{vulns: map[string]model.VulnerabilityList{
		"pkg@2.0.0": critical,
		"pkg@1.0.0": critical,
	}}
	threshold, ok := model.ParseThreshold("CRITICAL")
	if !ok {
		t.Fatal("ParseThreshold(CRITICAL) unexpectedly disabled")
	}

	r := New(registry, vuln, WithMaxIterations(20), WithRandSource(seededRand()), WithThreshold(threshold))
	outcome := r.Resolve(context.Background(), map[string]string{"pkg": "*"})

	if outcome.Kind != Failure {
		t.Fatalf("Kind = %v, want Failure (assignment: %v)", outcome.Kind, outcome.Assignment)
	}
	if len(outcome.Assignment) != 0 {
		t.Fatalf("Assignment = %v, want empty", outcome.Assignment)
	}
	found := false
	for _, d := range outcome.Diagnostics {
		if strings.Contains(d, "pkg") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("diagnostics %v do not name pkg", outcome.Diagnostics)
	}
}

// resolved and pending never share a name, and the head of pending is
// never already in resolved, across every step a rollout takes.
func TestStepKeepsResolvedAndPendingDisjoint(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"app": mustVersions(t, "1.0.0"),
			"lib": mustVersions(t, "2.0.0"),
		},
		packages: map[string]fakePackage{
			"app": {runtimeDeps: map[string]string{"lib": "^2.0.0"}},
		},
	}
	cfg := defaultConfig()
	state := NewResolverState(map[string]string{"app": "^1.0.0"})

	for !state.IsTerminal() {
		pending, _ := state.HeadPending()
		if _, resolved := state.Resolved[pending.PackageName]; resolved {
			t.Fatalf("pending head %q is already resolved", pending.PackageName)
		}
		info, err := registry.PackageAt(pending.PackageName, registry.versions[pending.PackageName][0])
		if err != nil {
			t.Fatalf("PackageAt: %v", err)
		}
		state = step(state, info, cfg)
		for name := range state.Resolved {
			if state.hasPending(name) {
				t.Fatalf("%q is both resolved and pending", name)
			}
		}
	}
}

// backpropagate touches every ancestor exactly once per call, never more.
func TestBackpropagateExactlyOnce(t *testing.T) {
	root := NewResolverState(map[string]string{"a": "^1.0.0"})
	tr, rootID := newTree(root)
	child := tr.addChild(rootID, root.Clone())
	grandchild := tr.addChild(child, root.Clone())

	backpropagate(tr, grandchild, 0.5)

	for _, id := range []nodeID{rootID, child, grandchild} {
		n := tr.node(id)
		if n.visits != 1 {
			t.Fatalf("node %d visits = %d, want 1", id, n.visits)
		}
		if n.rewardSum != 0.5 {
			t.Fatalf("node %d rewardSum = %f, want 0.5", id, n.rewardSum)
		}
	}

	backpropagate(tr, grandchild, 0.5)
	for _, id := range []nodeID{rootID, child, grandchild} {
		n := tr.node(id)
		if n.visits != 2 {
			t.Fatalf("node %d visits after second backprop = %d, want 2", id, n.visits)
		}
	}
}

// Visits and child counts only ever grow across iterations; they never
// shrink.
func TestTreeMonotonicity(t *testing.T) {
	registry := &fakeRegistry{
		versions: map[string][]versionrange.Version{
			"lodash": mustVersions(t, "4.17.21", "4.17.20", "4.17.19"),
		},
	}
	r := New(registry, &fakeVuln{}, WithRandSource(seededRand()))
	root := NewResolverState(map[string]string{"lodash": "^4.17.0"})
	tr, rootID := newTree(root)

	var prevVisits, prevChildren int
	for i := 0; i < 10; i++ {
		if err := r.runIteration(context.Background(), tr, rootID); err != nil {
			t.Fatalf("runIteration: %v", err)
		}
		n := tr.node(rootID)
		if n.visits < prevVisits {
			t.Fatalf("iteration %d: visits decreased from %d to %d", i, prevVisits, n.visits)
		}
		if len(n.children) < prevChildren {
			t.Fatalf("iteration %d: children decreased from %d to %d", i, prevChildren, len(n.children))
		}
		prevVisits, prevChildren = n.visits, len(n.children)
	}
}
