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

import "context"

// expandChild grows the tree at id by one child, per the expansion
// contract: compute (and cache) candidates once, then attach the first
// candidate not yet expanded as a child. Returns ok=false when the node
// is terminal already or has no surviving candidate (a dead end).
func (r *Resolver) expandChild(ctx context.Context, t *tree, id nodeID) (nodeID, bool, error) {
	n := t.node(id)
	if n.state.IsTerminal() {
		return id, false, nil
	}

	pending, ok := n.state.HeadPending()
	if !ok {
		return id, false, nil
	}

	var known bool
	t.withNodes(func(nodes []*searchNode) { known = nodes[id].candidatesKnown })
	if !known {
		candidates, err := r.candidatesFor(ctx, n.state, pending, n.state.headDepth())
		if err != nil {
			return id, false, err
		}
		t.setCandidates(id, candidates)
	}

	// beginExpand atomically picks a candidate index neither committed nor
	// already being expanded elsewhere, so two parallel iterations can
	// never attach duplicate children for the same candidate; ok is false
	// when every candidate is done, mid-flight, or there are none at all
	// (in which case beginExpand has already marked id a dead end).
	version, index, ok := t.beginExpand(id)
	if !ok {
		return id, false, nil
	}

	info, err := r.registry.PackageAt(pending.PackageName, version)
	if err != nil {
		// Metadata fetch failed for a version that just came back from
		// AvailableVersions: release the reservation and let a later
		// iteration retry this candidate.
		t.abortExpand(id, index)
		return id, false, err
	}

	child := step(n.state, info, r.cfg)
	childID := t.commitExpand(id, index, child)
	return childID, true, nil
}
