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
	"log/slog"
	"math/rand"

	"github.com/contriboss/depsolve-mcts/internal/model"
)

// Config configures the resolver. New starts from the package defaults
// and applies each Option; the integer-cap options ignore non-positive
// values, so those caps keep their defaults, while the other options set
// exactly the value they are given.
type Config struct {
	// MaxIterations caps the number of select/expand/simulate/
	// backpropagate cycles. Default: 1000.
	MaxIterations int
	// MaxSimulationDepth caps rollout length. Default: 100.
	MaxSimulationDepth int
	// MaxCompareVersions caps how many newest-first candidates are
	// considered per pending step. Default: 20.
	MaxCompareVersions int
	// MaxDepth caps how far a dependency may be discovered from a root
	// before its own dependencies stop being fetched. Default: 5.
	MaxDepth int
	// Lambda is the softmax-over-rank sharpness. Default: 2.0.
	Lambda float64
	// InitVersions includes a root's own declared range as an extra
	// peer-dependency constraint on itself. Default: false.
	InitVersions bool
	// DependencyType selects which of a package's dependency maps
	// drives traversal. Default: Runtime.
	DependencyType model.DependencyType
	// Threshold, if set, filters candidate versions by vulnerability
	// count. Nil disables vulnerability filtering entirely.
	Threshold *model.VulnerabilityThreshold

	// Logger is stored with the rest of the configuration. The search
	// loop itself emits no log records, so it has no effect on a Resolve
	// call; contained remote and cache failures are logged by the
	// adapters' and caches' own loggers.
	Logger *slog.Logger
	// RandSource seeds the softmax sampler. Nil uses a time-seeded
	// source; tests should always supply one for reproducibility.
	RandSource *rand.Rand

	// Parallel runs iterations across ParallelWorkers goroutines sharing
	// one tree, guarded per node. Default: disabled (single-threaded).
	Parallel        bool
	ParallelWorkers int

	// Metrics, if set, records iteration counts and outcome kinds.
	Metrics *Metrics
}

const (
	defaultMaxIterations      = 1000
	defaultMaxSimulationDepth = 100
	defaultMaxCompareVersions = 20
	defaultMaxDepth           = 5
	defaultLambda             = 2.0
)

func defaultConfig() Config {
	return Config{
		MaxIterations:      defaultMaxIterations,
		MaxSimulationDepth: defaultMaxSimulationDepth,
		MaxCompareVersions: defaultMaxCompareVersions,
		MaxDepth:           defaultMaxDepth,
		Lambda:             defaultLambda,
		DependencyType:     model.Runtime,
	}
}

// Option is a functional option for configuring the resolver.
type Option func(*Config)

func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

func WithMaxSimulationDepth(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxSimulationDepth = n
		}
	}
}

func WithMaxCompareVersions(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxCompareVersions = n
		}
	}
}

func WithMaxDepth(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxDepth = n
		}
	}
}

func WithLambda(lambda float64) Option {
	return func(c *Config) { c.Lambda = lambda }
}

func WithInitVersions(enabled bool) Option {
	return func(c *Config) { c.InitVersions = enabled }
}

func WithDependencyType(t model.DependencyType) Option {
	return func(c *Config) { c.DependencyType = t }
}

func WithThreshold(t model.VulnerabilityThreshold) Option {
	return func(c *Config) { c.Threshold = &t }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

func WithRandSource(src *rand.Rand) Option {
	return func(c *Config) { c.RandSource = src }
}

func WithParallel(workers int) Option {
	return func(c *Config) {
		if workers > 1 {
			c.Parallel = true
			c.ParallelWorkers = workers
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}
