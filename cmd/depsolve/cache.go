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

	"github.com/spf13/cobra"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/registry"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the durable cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry counts for the metadata and vulnerability buckets",
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := cache.OpenBoltDB(cfg.Cache.DurablePath)
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	defer db.Close()

	metaDurable, err := cache.NewBoltDurable[registry.RawPackage](db, "metadata")
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	metaAll, err := metaDurable.LoadAll()
	if err != nil {
		return fmt.Errorf("cache stats: read metadata bucket: %w", err)
	}

	vulnDurable, err := cache.NewBoltDurable[model.VulnerabilityList](db, "vulnerabilities")
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	vulnAll, err := vulnDurable.LoadAll()
	if err != nil {
		return fmt.Errorf("cache stats: read vulnerabilities bucket: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "durable cache: %s\n", cfg.Cache.DurablePath)
	fmt.Fprintf(out, "  metadata entries:       %d\n", len(metaAll))
	fmt.Fprintf(out, "  vulnerability entries:   %d\n", len(vulnAll))
	return nil
}
