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

import "github.com/prometheus/client_golang/prometheus"

// newMetricsRegistry returns a registry scoped to one CLI invocation, so
// running resolve/graph/cache back to back within a test process never
// hits prometheus's duplicate-registration panic.
func newMetricsRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}
