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

// Package graphviz projects a resolved dependency assignment into a
// plain node/edge graph for external visualization. It never touches
// the registry or vulnerability adapters; everything it needs is
// already sitting in the caller's package_infos map.
package graphviz

import (
	"slices"

	"github.com/google/uuid"

	"github.com/contriboss/depsolve-mcts/internal/model"
)

// Node is one vertex of the rendered graph.
type Node struct {
	ID              string
	Label           string
	Version         string
	IsRoot          bool
	DepCount        int
	IsFound         bool
	ReachedMaxDepth bool
}

// Edge is a directed parent -> child dependency edge.
type Edge struct {
	From string
	To   string
}

// BuildDependencyGraph is a pure projection of a resolver's output into a
// visualization-ready node/edge list. packageInfos holds one entry per
// successfully resolved package (the caller builds it, e.g. by fetching
// each resolved version's metadata after Resolve); roots names the
// original top-level requirements; maxDepthOverflow names packages whose
// own dependencies were never fetched because they were discovered past Config.MaxDepth; dependencyType selects which of
// each package's dependency maps drives the edges.
//
// Resolved packages get their name as their node ID, since name@version
// is already a natural key. Packages with no natural resolved identity
// (max-depth placeholders, and any dependency that never got resolved at
// all) get a synthetic uuid ID instead.
func BuildDependencyGraph(
	packageInfos map[string]model.PackageInfo,
	roots map[string]string,
	maxDepthOverflow map[string]bool,
	dependencyType model.DependencyType,
) ([]Node, []Edge) {
	idByName := make(map[string]string, len(packageInfos)+len(maxDepthOverflow))
	var nodes []Node

	resolvedNames := sortedKeys(packageInfos)
	for _, name := range resolvedNames {
		info := packageInfos[name]
		idByName[name] = name
		nodes = append(nodes, Node{
			ID:       name,
			Label:    name,
			Version:  info.ResolvedVersion.String(),
			IsRoot:   isRoot(name, roots),
			DepCount: len(info.Deps(dependencyType)),
			IsFound:  true,
		})
	}

	overflowNames := sortedBoolKeys(maxDepthOverflow)
	for _, name := range overflowNames {
		if _, exists := idByName[name]; exists {
			continue
		}
		id := uuid.NewString()
		idByName[name] = id
		nodes = append(nodes, Node{
			ID:              id,
			Label:           name,
			IsRoot:          isRoot(name, roots),
			IsFound:         false,
			ReachedMaxDepth: true,
		})
	}

	var edges []Edge
	for _, name := range resolvedNames {
		info := packageInfos[name]
		fromID := idByName[name]

		deps := info.Deps(dependencyType)
		depNames := make([]string, 0, len(deps))
		for depName := range deps {
			depNames = append(depNames, depName)
		}
		slices.Sort(depNames)

		for _, depName := range depNames {
			toID, ok := idByName[depName]
			if !ok {
				// Dependency never made it into packageInfos and was never
				// recorded as a max-depth overflow either: the best the
				// projection can do is show the raw range it was required
				// at, per the "otherwise records the raw range" fallback.
				toID = uuid.NewString()
				idByName[depName] = toID
				nodes = append(nodes, Node{
					ID:      toID,
					Label:   depName,
					Version: deps[depName],
					IsFound: false,
				})
			}
			edges = append(edges, Edge{From: fromID, To: toID})
		}
	}

	return nodes, edges
}

func isRoot(name string, roots map[string]string) bool {
	_, ok := roots[name]
	return ok
}

func sortedKeys(m map[string]model.PackageInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
