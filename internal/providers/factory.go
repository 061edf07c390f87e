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

package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/contentforge/forge/internal/config"
)

// FromConfig builds the provider registry from configuration. Providers whose
// credential environment variable is empty are skipped with a warning rather
// than failing startup: a deployment with only Ollama configured is valid.
// Each built provider is wrapped in the quota-aware decorator when a rate
// limit is configured.
func FromConfig(ctx context.Context, cfg *config.Config) (*Registry, error) {
	registry := NewRegistry(cfg.DefaultProvider)

	for name, pc := range cfg.Providers {
		timeout := time.Duration(pc.TimeoutInSeconds) * time.Second

		var apiKey string
		if pc.APIKeyEnv != "" {
			apiKey = os.Getenv(pc.APIKeyEnv)
		}

		var (
			provider Provider
			err      error
		)
		switch pc.Kind {
		case "ollama":
			provider = NewOllamaProvider(OllamaOptions{BaseURL: pc.BaseURL, Model: pc.Model, Timeout: timeout})
		case "openai":
			if apiKey == "" {
				slog.Warn("skipping provider: credential not set", "provider", name, "env", pc.APIKeyEnv)
				continue
			}
			provider, err = NewOpenAIProvider(OpenAIOptions{APIKey: apiKey, Model: pc.Model, BaseURL: pc.BaseURL, Timeout: timeout})
		case "anthropic":
			if apiKey == "" {
				slog.Warn("skipping provider: credential not set", "provider", name, "env", pc.APIKeyEnv)
				continue
			}
			provider, err = NewAnthropicProvider(AnthropicOptions{APIKey: apiKey, Model: pc.Model, BaseURL: pc.BaseURL, Timeout: timeout})
		case "gemini":
			if apiKey == "" {
				slog.Warn("skipping provider: credential not set", "provider", name, "env", pc.APIKeyEnv)
				continue
			}
			provider, err = NewGeminiProvider(ctx, GeminiOptions{APIKey: apiKey, Model: pc.Model})
		default:
			return nil, fmt.Errorf("unknown provider kind %q for provider %q", pc.Kind, name)
		}
		if err != nil {
			return nil, fmt.Errorf("building provider %q: %w", name, err)
		}

		if pc.RateLimit > 0 {
			provider = NewQuotaAwareProvider(provider, pc.RateLimit)
		}
		registry.Register(provider)
	}

	return registry, nil
}
