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

// Package model holds the small value types shared by the registry,
// vulnerability, and resolver packages: dependency kinds, constraints,
// pending dependencies, package metadata, and the vulnerability threshold.
package model

import "fmt"

// DependencyType selects which dependency map of a PackageInfo the resolver
// walks when expanding a package's requirements.
type DependencyType int

const (
	Runtime DependencyType = iota
	Dev
	Peer
)

func (t DependencyType) String() string {
	switch t {
	case Runtime:
		return "runtime"
	case Dev:
		return "dev"
	case Peer:
		return "peer"
	default:
		return fmt.Sprintf("DependencyType(%d)", int(t))
	}
}

// ParseDependencyType parses the external string encoding of a
// DependencyType ("runtime", "dev", "peer"), defaulting to Runtime for any
// other value.
func ParseDependencyType(s string) DependencyType {
	switch s {
	case "dev":
		return Dev
	case "peer":
		return Peer
	default:
		return Runtime
	}
}
