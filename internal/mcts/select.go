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

import "math"

// explorationConstant is UCB1's C = sqrt(2).
var explorationConstant = math.Sqrt2

// selectNode walks from root down the tree following the UCB1 rule,
// stopping at the first node that is not fully expanded (or a terminal
// leaf). No registry or vulnerability I/O happens here — every node's
// candidate list was already computed and cached the first time it was
// expanded.
func (r *Resolver) selectNode(t *tree, root nodeID) nodeID {
	current := root
	for {
		var stop bool
		var next nodeID
		t.withNodes(func(nodes []*searchNode) {
			n := nodes[current]
			if !n.fullyExpanded() {
				stop = true
				return
			}
			if n.state.IsTerminal() || n.deadEnd || len(n.children) == 0 {
				stop = true
				return
			}
			next = bestChild(nodes, current)
		})
		if stop {
			return current
		}
		current = next
	}
}

// bestChild and ucb1 must run under the tree's lock (via withNodes):
// UCB1 compares a child's visits/rewardSum against its parent's visits,
// and those fields move under parallel iterations.
func bestChild(nodes []*searchNode, parent nodeID) nodeID {
	p := nodes[parent]
	best := p.children[0]
	bestScore := ucb1(nodes, parent, best)
	for _, child := range p.children[1:] {
		score := ucb1(nodes, parent, child)
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

func ucb1(nodes []*searchNode, parent, child nodeID) float64 {
	c := nodes[child]
	if c.visits == 0 {
		return math.Inf(1)
	}
	p := nodes[parent]
	exploitation := c.rewardSum / float64(c.visits)
	exploration := explorationConstant * math.Sqrt(math.Log(float64(p.visits))/float64(c.visits))
	return exploitation + exploration
}
