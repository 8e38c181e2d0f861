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

// Package config loads depsolve-mcts's TOML configuration file and
// turns its string-encoded knobs into the typed values the resolver,
// cache, registry, and vulnerability packages expect.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/contriboss/depsolve-mcts/internal/model"
)

// Resolver covers every knob the search loop itself exposes.
type Resolver struct {
	MaxIterations      int     `toml:"max_iterations"`
	MaxSimulationDepth int     `toml:"max_simulation_depth"`
	MaxCompareVersions int     `toml:"max_compare_versions"`
	MaxDepth           int     `toml:"max_depth"`
	Lambda             float64 `toml:"lambda"`
	InitVersions       bool    `toml:"init_versions"`
	DependencyType     string  `toml:"dependency_type"`
	Threshold          string  `toml:"threshold"`
	Parallel           bool    `toml:"parallel"`
	ParallelWorkers    int     `toml:"parallel_workers"`
}

// Cache covers the dual-tier cache's durable path and whether the
// in-memory tier is enabled at all.
type Cache struct {
	DurablePath string `toml:"durable_path"`
	MemoryTier  bool   `toml:"memory_tier"`
}

// Registry covers the package registry collaborator's transport.
// Decoder selects how the collaborator's raw response bytes are turned
// into a RawPackage: "json" (the default) for a registry document
// listing every version, or "gomod" for a collaborator that returns a
// single version's go.mod content instead.
type Registry struct {
	Endpoint  string `toml:"endpoint"`
	AuthToken string `toml:"auth_token"`
	Decoder   string `toml:"decoder"`
}

// Vulnerability covers the vulnerability feed collaborator's transport
// and rate-limit tier.
type Vulnerability struct {
	Endpoint      string `toml:"endpoint"`
	AuthToken     string `toml:"auth_token"`
	Authenticated bool   `toml:"authenticated"`
}

// Config is the fully-decoded TOML document.
type Config struct {
	Resolver      Resolver      `toml:"resolver"`
	Cache         Cache         `toml:"cache"`
	Registry      Registry      `toml:"registry"`
	Vulnerability Vulnerability `toml:"vulnerability"`
}

// Default returns the configuration used when no TOML file is present,
// matching internal/mcts's own built-in defaults.
func Default() Config {
	return Config{
		Resolver: Resolver{
			MaxIterations:      1000,
			MaxSimulationDepth: 100,
			MaxCompareVersions: 20,
			MaxDepth:           5,
			Lambda:             2.0,
			DependencyType:     "runtime",
			Threshold:          "",
		},
		Cache: Cache{
			DurablePath: "depsolve-cache.db",
			MemoryTier:  true,
		},
		Registry: Registry{
			Decoder: "json",
		},
		Vulnerability: Vulnerability{
			Authenticated: false,
		},
	}
}

// Load reads and decodes a TOML file at path, layering it over Default.
// An empty path returns Default unchanged; a path that cannot be read
// (including one that does not exist) or decoded is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// DependencyTypeValue parses the configured dependency-type string.
func (r Resolver) DependencyTypeValue() model.DependencyType {
	return model.ParseDependencyType(r.DependencyType)
}

// ThresholdValue parses the configured threshold string, returning
// ok=false when empty or unrecognized (vulnerability filtering is then
// disabled entirely).
func (r Resolver) ThresholdValue() (model.VulnerabilityThreshold, bool) {
	if r.Threshold == "" {
		return model.VulnerabilityThreshold{}, false
	}
	return model.ParseThreshold(r.Threshold)
}
