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

package vuln

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/model"
)

const (
	// AuthenticatedInterval is the minimum spacing between upstream
	// requests when the collaborator carries credentials.
	AuthenticatedInterval = 600 * time.Millisecond
	// UnauthenticatedInterval is the minimum spacing without credentials.
	UnauthenticatedInterval = 6 * time.Second
)

// FetchFunc is the vulnerability collaborator: it returns the upstream
// database's native response to a keyword search.
type FetchFunc func(keyword string) ([]byte, error)

// Adapter queries a cached vulnerability database, rate-limiting upstream
// keyword searches and failing open on any transport or decode error.
type Adapter struct {
	fetchCVEs    FetchFunc
	cache        *cache.Cache[model.VulnerabilityList]
	limiter      *rate.Limiter
	ecosystemTag string
	logger       *slog.Logger
}

// New builds an Adapter. authenticated selects the 600ms/6s rate-limit
// cadence; ecosystemTag prefixes every keyword search (e.g. "npm", "go").
func New(fetchCVEs FetchFunc, c *cache.Cache[model.VulnerabilityList], ecosystemTag string, authenticated bool, logger *slog.Logger) *Adapter {
	interval := UnauthenticatedInterval
	if authenticated {
		interval = AuthenticatedInterval
	}
	return &Adapter{
		fetchCVEs:    fetchCVEs,
		cache:        c,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		ecosystemTag: ecosystemTag,
		logger:       logger,
	}
}

// Vulnerabilities returns the known vulnerabilities for (name, version).
// Cache-first; on a remote miss it rate-limits, queries upstream, and
// caches the normalized list. Transport and decode failures are reported
// as an error but the resolver's policy (enforced by callers, e.g.
// internal/mcts) is to treat them as the empty list — fail-open.
func (a *Adapter) Vulnerabilities(ctx context.Context, name, version string) (model.VulnerabilityList, error) {
	key := cache.Key{Name: name, VersionKey: version}
	if list, ok := a.cache.Get(key); ok {
		return list, nil
	}

	keyword := fmt.Sprintf("%s %s", a.ecosystemTag, name)
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := a.fetchCVEs(keyword)
	if err != nil {
		return nil, &TransportError{Keyword: keyword, Err: err}
	}

	list, err := Decode(raw)
	if err != nil {
		return nil, &DecodeError{Keyword: keyword, Err: err}
	}

	if err := a.cache.Put(key, list); err != nil && a.logger != nil {
		a.logger.Warn("vuln: cache put failed", "package", name, "error", err)
	}
	return list, nil
}

// VulnerabilitiesFailOpen calls Vulnerabilities and collapses any error to
// an empty list, per the resolver's fail-open threshold policy.
func (a *Adapter) VulnerabilitiesFailOpen(ctx context.Context, name, version string) model.VulnerabilityList {
	list, err := a.Vulnerabilities(ctx, name, version)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("vuln: failing open on error", "package", name, "version", version, "error", err)
		}
		return model.VulnerabilityList{}
	}
	return list
}
