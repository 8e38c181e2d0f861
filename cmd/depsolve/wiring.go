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
	"log/slog"

	bolt "go.etcd.io/bbolt"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/config"
	"github.com/contriboss/depsolve-mcts/internal/mcts"
	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/registry"
	"github.com/contriboss/depsolve-mcts/internal/vuln"
)

// app bundles everything a subcommand needs: the two adapters and the
// underlying bolt handle it shares between them, so Close tears down
// exactly once.
type app struct {
	cfg      config.Config
	db       *bolt.DB
	registry *registry.Adapter
	vuln     *vuln.Adapter
	logger   *slog.Logger
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newApp wires the registry and vulnerability adapters over one shared
// bbolt file (metadata and vulnerabilities each get their own bucket),
// per cache.OpenBoltDB's multi-bucket guidance.
func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	db, err := cache.OpenBoltDB(cfg.Cache.DurablePath)
	if err != nil {
		return nil, err
	}

	metricsReg := newMetricsRegistry()
	cacheMetrics := cache.NewMetrics(metricsReg)

	metaDurable, err := cache.NewBoltDurable[registry.RawPackage](db, "metadata")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("wiring: metadata bucket: %w", err)
	}
	metaOpts := []cache.Option[registry.RawPackage]{
		cache.WithLogger[registry.RawPackage](logger),
		cache.WithMetrics[registry.RawPackage](cacheMetrics),
	}
	if cfg.Cache.MemoryTier {
		metaOpts = append(metaOpts, cache.WithMemoryTier[registry.RawPackage](0, 0))
	}
	metaCache := cache.New("metadata", metaDurable, metaOpts...)

	vulnDurable, err := cache.NewBoltDurable[model.VulnerabilityList](db, "vulnerabilities")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("wiring: vulnerabilities bucket: %w", err)
	}
	vulnOpts := []cache.Option[model.VulnerabilityList]{
		cache.WithLogger[model.VulnerabilityList](logger),
		cache.WithMetrics[model.VulnerabilityList](cacheMetrics),
	}
	if cfg.Cache.MemoryTier {
		vulnOpts = append(vulnOpts, cache.WithMemoryTier[model.VulnerabilityList](0, 0))
	}
	vulnCache := cache.New("vulnerabilities", vulnDurable, vulnOpts...)

	httpClient := defaultHTTPClient()
	registryAdapter := registry.New(
		httpFetchRaw(httpClient, cfg.Registry.Endpoint, cfg.Registry.AuthToken),
		metaCache,
		registryDecoderFactory(cfg.Registry.Decoder),
		logger,
	)
	vulnAdapter := vuln.New(
		httpFetchCVEs(httpClient, cfg.Vulnerability.Endpoint, cfg.Vulnerability.AuthToken),
		vulnCache,
		"go",
		cfg.Vulnerability.Authenticated,
		logger,
	)

	return &app{cfg: cfg, db: db, registry: registryAdapter, vuln: vulnAdapter, logger: logger}, nil
}

// registryDecoderFactory translates the configured registry.decoder knob
// into the DecoderFactory the registry adapter decodes every fetched
// document with. "gomod" is for a collaborator fronting a Go module
// proxy, whose raw response is one version's go.mod content rather than
// a multi-version JSON document; anything else keeps the JSON default.
func registryDecoderFactory(decoder string) registry.DecoderFactory {
	if decoder == "gomod" {
		return registry.DecodeGoModAt
	}
	return registry.StaticDecoder(registry.DecodeJSON)
}

// resolverOptions translates the loaded config into mcts.Option values.
func (a *app) resolverOptions() []mcts.Option {
	r := a.cfg.Resolver
	opts := []mcts.Option{
		mcts.WithMaxIterations(r.MaxIterations),
		mcts.WithMaxSimulationDepth(r.MaxSimulationDepth),
		mcts.WithMaxCompareVersions(r.MaxCompareVersions),
		mcts.WithMaxDepth(r.MaxDepth),
		mcts.WithLambda(r.Lambda),
		mcts.WithInitVersions(r.InitVersions),
		mcts.WithDependencyType(r.DependencyTypeValue()),
		mcts.WithLogger(a.logger),
	}
	if threshold, ok := r.ThresholdValue(); ok {
		opts = append(opts, mcts.WithThreshold(threshold))
	}
	if r.Parallel {
		opts = append(opts, mcts.WithParallel(r.ParallelWorkers))
	}
	return opts
}

func (a *app) newResolver() *mcts.Resolver {
	return mcts.New(a.registry, a.vuln, a.resolverOptions()...)
}
