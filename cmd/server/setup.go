// Copyright 2025 Content Forge, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/contentforge/forge/internal/config"
	"github.com/contentforge/forge/internal/core/workflow"
	"github.com/contentforge/forge/internal/extract"
	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/store"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config   *config.Config
	registry *providers.Registry
	store    store.ContentStore
	pipeline *workflow.Pipeline
}

var state = &StateManager{}

// SetupOS points the config loader at the local configs directory when the
// environment does not say otherwise.
func SetupOS() error {
	if os.Getenv(config.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(config.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(config.EnvConfigRuntime) == "" {
		return os.Setenv(config.EnvConfigRuntime, "local")
	}
	return nil
}

func GetConfig() *config.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to prepare environment: %v\n", err)
		}
		cfg := config.NewConfig()
		config.LoadConfig(cfg)
		state.config = cfg
	}
	return state.config
}

// InitState builds the provider registry, the content store, and the
// pipeline.
func InitState(ctx context.Context) {
	cfg := GetConfig()

	registry, err := providers.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build providers: %v\n", err)
	}
	registry.Refresh(ctx)
	state.registry = registry

	if cfg.Storage.SQLitePath != "" {
		sqliteStore, err := store.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open content store: %v\n", err)
		}
		state.store = sqliteStore
		slog.Info("content store ready", "backend", "sqlite", "path", cfg.Storage.SQLitePath)
	} else {
		state.store = store.NewMemoryStore()
		slog.Info("content store ready", "backend", "memory")
	}

	// Analysis is pinned to the default provider rather than following the
	// caller's preference. A missing default just disables the analysis
	// stage.
	analysisProvider, err := state.registry.Resolve("")
	if err != nil {
		slog.Warn("no default provider configured; semantic analysis disabled")
		analysisProvider = nil
	}

	extractor := extract.NewDefaultExtractor(
		time.Duration(cfg.Pipeline.IngestionTimeoutInSeconds) * time.Second)

	pipeline, err := workflow.New(cfg, state.registry, analysisProvider, extractor, state.store)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v\n", err)
	}
	state.pipeline = pipeline
}
