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

// Package config defines the application configuration, loaded from TOML
// files. Settings cover the HTTP server, the generation providers, pipeline
// limits and timeouts, quality thresholds, storage, and the prompt templates
// handed to the analysis and generation stages.
package config

// Provider configures one generation backend. Kind selects the client
// implementation (ollama, openai, anthropic, gemini); APIKeyEnv names the
// environment variable holding the credential so secrets stay out of the
// config files.
type Provider struct {
	Kind             string `toml:"kind"`
	BaseURL          string `toml:"base_url"`
	APIKeyEnv        string `toml:"api_key_env"`
	Model            string `toml:"model"`
	RateLimit        int    `toml:"rate_limit"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Pipeline holds the stage budgets and boundary limits for a single
// transformation request.
type Pipeline struct {
	IngestionTimeoutInSeconds  int     `toml:"ingestion_timeout_in_seconds"`
	AnalysisTimeoutInSeconds   int     `toml:"analysis_timeout_in_seconds"`
	GenerationTimeoutInSeconds int     `toml:"generation_timeout_in_seconds"`
	MaxFileSizeBytes           int64   `toml:"max_file_size_bytes"`
	MaxTokens                  int     `toml:"max_tokens"`
	QualityPassThreshold       float64 `toml:"quality_pass_threshold"`
}

// Storage configures result persistence. An empty SQLitePath selects the
// in-memory content store.
type Storage struct {
	SQLitePath string `toml:"sqlite_path"`
}

// PromptTemplates holds the text templates for prompts sent to the providers.
// Each is a Go text/template.
type PromptTemplates struct {
	AnalysisPrompt   string `toml:"analysis"`
	GenerationPrompt string `toml:"generation"`
	RevisionPrompt   string `toml:"revision"`
	FreshTakePrompt  string `toml:"fresh_take"`
}

// Config is the top-level configuration aggregate.
type Config struct {
	Application struct {
		Name            string `toml:"name"`
		Port            int    `toml:"port"`
		GoogleProjectId string `toml:"google_project_id"`
	} `toml:"application"`
	DefaultProvider string              `toml:"default_provider"`
	Providers       map[string]Provider `toml:"providers"`
	Pipeline        Pipeline            `toml:"pipeline"`
	Storage         Storage             `toml:"storage"`
	PromptTemplates PromptTemplates     `toml:"prompt_templates"`
}

// NewConfig creates a Config with initialized maps and working defaults. TOML
// files loaded on top override any of these.
func NewConfig() *Config {
	cfg := &Config{Providers: make(map[string]Provider)}
	cfg.Application.Name = "forge-transform"
	cfg.Application.Port = 8080
	cfg.DefaultProvider = "ollama"
	cfg.Pipeline = Pipeline{
		IngestionTimeoutInSeconds:  60,
		AnalysisTimeoutInSeconds:   60,
		GenerationTimeoutInSeconds: 180,
		MaxFileSizeBytes:           50 << 20,
		MaxTokens:                  4096,
		QualityPassThreshold:       70,
	}
	cfg.PromptTemplates = PromptTemplates{
		AnalysisPrompt:   DefaultAnalysisPrompt,
		GenerationPrompt: DefaultGenerationPrompt,
		RevisionPrompt:   DefaultRevisionPrompt,
		FreshTakePrompt:  DefaultFreshTakePrompt,
	}
	return cfg
}
