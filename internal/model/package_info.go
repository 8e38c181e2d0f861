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

package model

import "github.com/contriboss/depsolve-mcts/internal/versionrange"

// PackageInfo describes one concretely-resolved version of a package: its
// name, the exact version it resolved to, and its three dependency maps
// (package name -> range string).
type PackageInfo struct {
	Name            string
	ResolvedVersion versionrange.Version
	RuntimeDeps     map[string]string
	DevDeps         map[string]string
	PeerDeps        map[string]string
}

// Deps returns the dependency map selected by t, defaulting to an empty
// (non-nil) map when the package declares none of that kind.
func (p PackageInfo) Deps(t DependencyType) map[string]string {
	var m map[string]string
	switch t {
	case Dev:
		m = p.DevDeps
	case Peer:
		m = p.PeerDeps
	default:
		m = p.RuntimeDeps
	}
	if m == nil {
		return map[string]string{}
	}
	return m
}
