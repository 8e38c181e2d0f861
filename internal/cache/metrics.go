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

package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the prometheus collectors shared by every Cache
// instance. Construct once per process and pass to each Cache via
// WithMetrics.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewMetrics registers the dual-tier cache counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depsolve_cache_hits_total",
			Help: "Cache hits by cache kind and tier (memory/durable).",
		}, []string{"cache", "tier"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depsolve_cache_misses_total",
			Help: "Cache misses by cache kind.",
		}, []string{"cache"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depsolve_cache_errors_total",
			Help: "Contained durable-tier errors by cache kind.",
		}, []string{"cache"}),
	}
	reg.MustRegister(m.hits, m.misses, m.errors)
	return m
}
