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

package providers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contentforge/forge/internal/providers"
	"github.com/contentforge/forge/internal/testutil"
)

// TestQuotaAwarePassThrough verifies that the decorator is transparent for
// name, completion, and health probing.
func TestQuotaAwarePassThrough(t *testing.T) {
	inner := testutil.NewFakeProvider("ollama", "the script")
	limited := providers.NewQuotaAwareProvider(inner, 600)

	assert.Equal(t, "ollama", limited.Name())

	result, err := limited.Complete(context.Background(), providers.CompletionRequest{Prompt: "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "the script", result.Text)

	model, err := limited.Ping(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "ollama-test-model", model)
}

// TestQuotaAwareHonorsCancellation verifies that a canceled context aborts a
// rate-limited wait instead of blocking.
func TestQuotaAwareHonorsCancellation(t *testing.T) {
	inner := testutil.NewFakeProvider("ollama", "the script")
	// One request per minute: the second call must wait, and the canceled
	// context must cut that wait short.
	limited := providers.NewQuotaAwareProvider(inner, 1)

	_, err := limited.Complete(context.Background(), providers.CompletionRequest{Prompt: "first"})
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = limited.Complete(ctx, providers.CompletionRequest{Prompt: "second"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.Completes)
}

// TestQuotaAwareDisabledLimit verifies that a non-positive rate limit leaves
// calls unthrottled.
func TestQuotaAwareDisabledLimit(t *testing.T) {
	inner := testutil.NewFakeProvider("ollama", "the script")
	limited := providers.NewQuotaAwareProvider(inner, 0)

	for i := 0; i < 5; i++ {
		_, err := limited.Complete(context.Background(), providers.CompletionRequest{Prompt: "go"})
		assert.NoError(t, err)
	}
	assert.Equal(t, 5, inner.Completes)
}
