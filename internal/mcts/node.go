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
	"sync"

	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// nodeID indexes into a Tree's arena. The zero value is the root (always
// index 0), so it cannot mean "no node"; use hasParent on the node itself
// to test for a missing parent instead of comparing against zero.
type nodeID int

// searchNode is one node of the search tree. Parent back-pointers are
// expressed as an arena index rather than a pointer cycle, per the
// spec's arena+indices guidance; the back edge is walked only during
// backpropagation.
type searchNode struct {
	parent    nodeID
	hasParent bool
	children  []nodeID

	state *ResolverState

	visits    int
	rewardSum float64

	// candidates is computed once, the first time this node is expanded,
	// and cached so repeated Selection descents never re-issue registry
	// or vulnerability I/O.
	candidates      []versionrange.Version
	candidatesKnown bool

	// expandedIdx maps a candidate index to the child it produced, set
	// only once I/O for that candidate has completed successfully.
	// expanding marks a candidate index currently being expanded by some
	// goroutine, so two parallel iterations can never attach duplicate
	// children for the same candidate.
	expandedIdx map[int]nodeID
	expanding   map[int]bool

	// deadEnd marks a node whose pending step had no surviving candidate;
	// it behaves as terminal (reward 0) without re-querying the registry.
	deadEnd bool
}

func (n *searchNode) fullyExpanded() bool {
	if n.state.IsTerminal() || n.deadEnd {
		return true
	}
	if !n.candidatesKnown {
		return false
	}
	if len(n.candidates) == 0 {
		return true
	}
	return len(n.expandedIdx) >= len(n.candidates)
}

// tree is the arena holding every node visited by the search. Every read
// or write of a node's mutable fields (children, visits, rewardSum,
// candidates, expandedIdx, expanding, deadEnd) happens while mu is held —
// never just the arena lookup — so the tree stays consistent when
// iterations run in parallel.
type tree struct {
	mu    sync.Mutex
	nodes []*searchNode
}

func newTree(root *ResolverState) (*tree, nodeID) {
	t := &tree{nodes: []*searchNode{{state: root}}}
	return t, 0
}

// node returns the arena slot for id. Its state, parent and hasParent
// fields are fixed at construction and safe to read without further
// locking; every other field must only be touched through a tree method
// or withNodes, not read directly off the returned pointer.
func (t *tree) node(id nodeID) *searchNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[id]
}

// withNodes gives fn direct, unsynchronized access to the whole arena
// under a single lock acquisition, for operations that must read or
// compare several nodes' mutable fields atomically (UCB1 selection).
// fn must not call back into any other tree method or withNodes itself.
func (t *tree) withNodes(fn func(nodes []*searchNode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.nodes)
}

// addChild attaches state as a new child of parent unconditionally, with
// no candidate bookkeeping. Used by tests that build a fixture tree
// directly rather than through the expansion path; production code goes
// through beginExpand/commitExpand instead, so duplicate-candidate
// attachment under parallel iterations stays impossible.
func (t *tree) addChild(parent nodeID, state *ResolverState) nodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, &searchNode{parent: parent, hasParent: true, state: state})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// beginExpand reserves the next candidate of id that has neither a
// committed child nor an in-flight expansion, atomically with the
// candidates/expandedIdx read that decides it. A zero-candidate node is
// marked dead end on the spot. Callers must release the reservation via
// commitExpand or abortExpand.
func (t *tree) beginExpand(id nodeID) (versionrange.Version, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodes[id]
	if len(n.candidates) == 0 {
		n.deadEnd = true
		return versionrange.Version{}, 0, false
	}
	for i, v := range n.candidates {
		if _, done := n.expandedIdx[i]; done {
			continue
		}
		if n.expanding[i] {
			continue
		}
		if n.expanding == nil {
			n.expanding = make(map[int]bool)
		}
		n.expanding[i] = true
		return v, i, true
	}
	return versionrange.Version{}, 0, false
}

// commitExpand attaches the child produced for a candidate reserved by
// beginExpand and releases the reservation.
func (t *tree) commitExpand(parent nodeID, index int, state *ResolverState) nodeID {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.nodes[parent]
	delete(p.expanding, index)
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, &searchNode{parent: parent, hasParent: true, state: state})
	p.children = append(p.children, id)
	if p.expandedIdx == nil {
		p.expandedIdx = make(map[int]nodeID)
	}
	p.expandedIdx[index] = id
	return id
}

// abortExpand releases a reservation from beginExpand without attaching a
// child, letting a later iteration retry the same candidate — used when
// the registry fetch for it failed.
func (t *tree) abortExpand(id nodeID, index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.nodes[id].expanding, index)
}

func (t *tree) setCandidates(id nodeID, candidates []versionrange.Version) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodes[id]
	if !n.candidatesKnown {
		n.candidates = candidates
		n.candidatesKnown = true
	}
}

func (t *tree) isDeadEnd(id nodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[id].deadEnd
}

func (t *tree) recordVisit(id nodeID, reward float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.nodes[id]
	n.visits++
	n.rewardSum += reward
}

func (t *tree) all() []*searchNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*searchNode(nil), t.nodes...)
}
