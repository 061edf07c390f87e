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

// This file implements a quota-aware decorator around any Provider. Hosted
// model APIs enforce requests-per-minute quotas; the decorator makes the
// application respect them instead of burning quota on rejected calls.
package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// QuotaAwareProvider wraps a Provider with a token-bucket rate limiter on the
// completion path. Health probes are not limited; they are cheap and already
// bounded by the registry's refresh timeout.
type QuotaAwareProvider struct {
	wrapped Provider
	limiter *rate.Limiter
}

// NewQuotaAwareProvider decorates wrapped with a limiter allowing
// requestsPerMinute sustained calls and a burst of one. A non-positive rate
// disables limiting.
func NewQuotaAwareProvider(wrapped Provider, requestsPerMinute int) *QuotaAwareProvider {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &QuotaAwareProvider{wrapped: wrapped, limiter: limiter}
}

// Name returns the wrapped provider's name.
func (q *QuotaAwareProvider) Name() string { return q.wrapped.Name() }

// Complete waits for the limiter (respecting ctx cancellation and deadline)
// and then delegates to the wrapped provider.
func (q *QuotaAwareProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return q.wrapped.Complete(ctx, req)
}

// Ping delegates to the wrapped provider without rate limiting.
func (q *QuotaAwareProvider) Ping(ctx context.Context) (string, error) {
	return q.wrapped.Ping(ctx)
}
