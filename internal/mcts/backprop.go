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

// backpropagate walks from id to the root, incrementing visits and
// accumulating reward exactly once per node per iteration.
func backpropagate(t *tree, id nodeID, reward float64) {
	current := id
	for {
		t.recordVisit(current, reward)
		n := t.node(current)
		if !n.hasParent {
			return
		}
		current = n.parent
	}
}
