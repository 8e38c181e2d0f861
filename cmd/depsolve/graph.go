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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/contriboss/depsolve-mcts/internal/graphviz"
	"github.com/contriboss/depsolve-mcts/internal/mcts"
	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

var graphCmd = &cobra.Command{
	Use:   "graph name@range [name@range ...]",
	Short: "Resolve, then render the resulting dependency graph as Graphviz DOT",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	roots, err := parseRoots(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, newLogger())
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	defer a.Close()

	outcome := a.newResolver().Resolve(cmd.Context(), roots)
	if outcome.Kind == mcts.Failure {
		printDiagnostics(cmd.ErrOrStderr(), outcome.Diagnostics)
		return fmt.Errorf("graph: no assignment to render")
	}

	depType := cfg.Resolver.DependencyTypeValue()
	packageInfos, overflow, err := a.hydratePackageInfos(outcome.Assignment, depType)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}

	nodes, edges := graphviz.BuildDependencyGraph(packageInfos, roots, overflow, depType)
	writeDOT(cmd.OutOrStdout(), nodes, edges)
	return nil
}

// hydratePackageInfos re-fetches each resolved package's metadata so the
// graph builder has its dependency map to walk. A fetch failure for one
// package degrades that package to an unfound placeholder rather than
// aborting the whole render.
func (a *app) hydratePackageInfos(assignment map[string]versionrange.Version, depType model.DependencyType) (map[string]model.PackageInfo, map[string]bool, error) {
	infos := make(map[string]model.PackageInfo, len(assignment))
	overflow := make(map[string]bool)
	for name, version := range assignment {
		info, err := a.registry.PackageAt(name, version)
		if err != nil {
			overflow[name] = true
			continue
		}
		infos[name] = info
	}
	return infos, overflow, nil
}

func writeDOT(w io.Writer, nodes []graphviz.Node, edges []graphviz.Edge) {
	fmt.Fprintln(w, "digraph depsolve {")
	for _, n := range nodes {
		label := n.Label
		if n.Version != "" {
			label = fmt.Sprintf("%s@%s", n.Label, n.Version)
		}
		style := ""
		if !n.IsFound {
			style = ", style=dashed"
		}
		fmt.Fprintf(w, "  %q [label=%q, shape=box%s];\n", n.ID, label, style)
	}
	for _, e := range edges {
		fmt.Fprintf(w, "  %q -> %q;\n", e.From, e.To)
	}
	fmt.Fprintln(w, "}")
}
