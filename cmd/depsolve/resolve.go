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
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contriboss/depsolve-mcts/internal/mcts"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve name@range [name@range ...]",
	Short: "Resolve a set of root package requirements to concrete versions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("resolve: %w", err)
	}
	defer a.Close()

	outcome := a.newResolver().Resolve(cmd.Context(), roots)
	return printOutcome(cmd.OutOrStdout(), outcome)
}

// parseRoots turns "name@range" positional arguments into a roots map.
func parseRoots(args []string) (map[string]string, error) {
	roots := make(map[string]string, len(args))
	for _, arg := range args {
		name, rangeStr, ok := strings.Cut(arg, "@")
		if !ok || name == "" || rangeStr == "" {
			return nil, fmt.Errorf("resolve: %q is not in name@range form", arg)
		}
		roots[name] = rangeStr
	}
	return roots, nil
}

func printOutcome(w io.Writer, outcome mcts.Outcome) error {
	switch outcome.Kind {
	case mcts.Success:
		fmt.Fprintln(w, "resolved:")
		printAssignment(w, outcome.Assignment)
		return nil
	case mcts.PartialFailure:
		fmt.Fprintln(w, "partial assignment (search did not fully resolve):")
		printAssignment(w, outcome.Assignment)
		printDiagnostics(w, outcome.Diagnostics)
		return fmt.Errorf("resolve: incomplete assignment")
	default:
		printDiagnostics(w, outcome.Diagnostics)
		return fmt.Errorf("resolve: failed to find a valid assignment")
	}
}

func printAssignment(w io.Writer, assignment map[string]versionrange.Version) {
	for _, name := range sortedAssignmentNames(assignment) {
		fmt.Fprintf(w, "  %s@%s\n", name, assignment[name])
	}
}

func printDiagnostics(w io.Writer, diagnostics []string) {
	if len(diagnostics) == 0 {
		return
	}
	fmt.Fprintln(w, "diagnostics:")
	for _, d := range diagnostics {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}

func sortedAssignmentNames(assignment map[string]versionrange.Version) []string {
	names := make([]string, 0, len(assignment))
	for name := range assignment {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
