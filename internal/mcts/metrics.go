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

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors the resolver updates during a
// search. NewMetrics registers them against the supplied registerer;
// passing prometheus.DefaultRegisterer is fine for a process running one
// resolver, but callers spinning up several resolvers concurrently
// should pass a dedicated registry per instance to avoid duplicate
// registration panics.
type Metrics struct {
	iterations prometheus.Counter
	treeSize   prometheus.Gauge
	outcomes   *prometheus.CounterVec
}

// NewMetrics builds and registers a Metrics set. reg may be nil, in
// which case collectors are created but never registered (useful in
// tests that just want the counters to not be nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "depsolve_mcts",
			Name:      "iterations_total",
			Help:      "Select/expand/simulate/backpropagate cycles run.",
		}),
		treeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depsolve_mcts",
			Name:      "tree_nodes",
			Help:      "Nodes in the search tree at the end of the last Resolve call.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depsolve_mcts",
			Name:      "outcomes_total",
			Help:      "Resolve outcomes by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.iterations, m.treeSize, m.outcomes)
	}
	return m
}

func (m *Metrics) recordIteration() {
	if m == nil {
		return
	}
	m.iterations.Inc()
}

func (m *Metrics) recordOutcome(k Kind, treeSize int) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(k.String()).Inc()
	m.treeSize.Set(float64(treeSize))
}
