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

package testutil

import (
	"encoding/json"

	"github.com/contentforge/forge/internal/config"
	"github.com/contentforge/forge/internal/core/model"
)

// TestConfig returns a config with defaults suitable for unit tests: short
// stage timeouts and the in-memory store.
func TestConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Pipeline.IngestionTimeoutInSeconds = 5
	cfg.Pipeline.AnalysisTimeoutInSeconds = 5
	cfg.Pipeline.GenerationTimeoutInSeconds = 5
	return cfg
}

// SummaryJSON renders a valid analysis-stage response body.
func SummaryJSON() string {
	data, err := json.Marshal(model.GetExampleSemanticSummary())
	if err != nil {
		panic(err)
	}
	return string(data)
}
