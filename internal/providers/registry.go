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
	"errors"
	"sync"
	"time"
)

// ErrNoProvider is returned by Resolve when neither the preferred nor the
// default provider is usable.
var ErrNoProvider = errors.New("no generation provider available")

// pingTimeout bounds one health probe during Refresh.
const pingTimeout = 5 * time.Second

// Descriptor is the externally visible health snapshot of one provider.
// Model and Error are nil when unknown.
type Descriptor struct {
	Name    string  `json:"name"`
	Healthy bool    `json:"healthy"`
	Model   *string `json:"model"`
	Error   *string `json:"error"`
}

// Registry tracks the configured providers and a health snapshot for each.
// Health state is refreshed only by explicit Refresh calls (driven by the
// providers and health endpoints); the generation stage trusts the cached
// snapshot optimistically and lets a stale-healthy provider's call fail
// naturally. The registry is an explicit dependency of the generation stage,
// never package-level state, so tests can build one with controlled health.
type Registry struct {
	mu          sync.RWMutex
	defaultName string
	order       []string
	providers   map[string]Provider
	status      map[string]Descriptor
}

// NewRegistry creates an empty registry whose fallback target is the named
// default provider.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		defaultName: defaultName,
		providers:   make(map[string]Provider),
		status:      make(map[string]Descriptor),
	}
}

// Register adds a provider. Registration order is preserved in snapshots.
// Until the first Refresh the provider is reported unhealthy-unknown but is
// still resolvable; optimism is preferable to blocking generation behind a
// probe.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	if _, exists := r.status[name]; !exists {
		r.status[name] = Descriptor{Name: name}
	}
}

// DefaultName returns the registry's designated default provider name.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Refresh probes every registered provider and replaces the health snapshot.
// Individual probe failures mark that provider unhealthy with the error
// recorded; they never fail the refresh as a whole.
func (r *Registry) Refresh(ctx context.Context) {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	providers := make(map[string]Provider, len(r.providers))
	for n, p := range r.providers {
		providers[n] = p
	}
	r.mu.RUnlock()

	fresh := make(map[string]Descriptor, len(names))
	for _, name := range names {
		probeCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		model, err := providers[name].Ping(probeCtx)
		cancel()
		d := Descriptor{Name: name}
		if err != nil {
			msg := err.Error()
			d.Error = &msg
		} else {
			d.Healthy = true
			d.Model = &model
		}
		fresh[name] = d
	}

	r.mu.Lock()
	r.status = fresh
	r.mu.Unlock()
}

// Healthy reports the cached health of the named provider. Unknown names are
// unhealthy.
func (r *Registry) Healthy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status[name].Healthy
}

// Snapshot returns the default provider name and the descriptors in
// registration order.
func (r *Registry) Snapshot() (string, []Descriptor) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.status[name])
	}
	return r.defaultName, out
}

// Resolve picks the provider for a generation call. The preferred provider is
// used when it is registered and its cached health is good; otherwise the
// default provider is used regardless of its cached health (the call may
// still fail naturally, which the generation stage reports). A preferred name
// unknown to the registry falls back rather than failing the request.
func (r *Registry) Resolve(preferred string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if preferred != "" {
		if p, ok := r.providers[preferred]; ok && r.status[preferred].Healthy {
			return p, nil
		}
	}
	if p, ok := r.providers[r.defaultName]; ok {
		return p, nil
	}
	return nil, ErrNoProvider
}
