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

package cor

import "context"

// BaseContext is the default implementation of the Context interface. It is
// the shared state for one workflow execution. A BaseContext is used by a
// single chain execution at a time and is deliberately not synchronized; the
// pipeline is strictly sequential within a request.
type BaseContext struct {
	data     map[string]any
	errors   map[string]error
	warnings map[string][]string
	metadata map[string]map[string]any
	records  []StageRecord
	context  context.Context
}

// NewBaseContext creates an empty context ready for a chain execution.
func NewBaseContext() Context {
	return &BaseContext{
		data:     make(map[string]any),
		errors:   make(map[string]error),
		warnings: make(map[string][]string),
		metadata: make(map[string]map[string]any),
		records:  make([]StageRecord, 0, 4),
	}
}

// SetContext sets the underlying standard Go context. The chain updates this
// as it opens a span per command.
func (c *BaseContext) SetContext(ctx context.Context) {
	c.context = ctx
}

// GetContext retrieves the underlying standard Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Add stores a key-value pair in the context's data bag.
func (c *BaseContext) Add(key string, value any) Context {
	c.data[key] = value
	return c
}

// Get retrieves a value from the data bag, or nil when absent.
func (c *BaseContext) Get(key string) any {
	return c.data[key]
}

// Remove deletes a key-value pair from the data bag.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// AddError records a fatal failure for the named command.
func (c *BaseContext) AddError(name string, err error) {
	c.errors[name] = err
}

// ErrorFor returns the error recorded for the named command, or nil.
func (c *BaseContext) ErrorFor(name string) error {
	return c.errors[name]
}

// HasErrors reports whether any command has recorded an error.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

// AddWarning appends a non-fatal warning for the named command.
func (c *BaseContext) AddWarning(name string, warning string) {
	c.warnings[name] = append(c.warnings[name], warning)
}

// WarningsFor returns the warnings recorded for the named command in order.
func (c *BaseContext) WarningsFor(name string) []string {
	return c.warnings[name]
}

// AddMetadata attaches one metadata entry to the named command.
func (c *BaseContext) AddMetadata(name string, key string, value any) {
	m, ok := c.metadata[name]
	if !ok {
		m = make(map[string]any)
		c.metadata[name] = m
	}
	m[key] = value
}

// MetadataFor returns the metadata map for the named command, or nil.
func (c *BaseContext) MetadataFor(name string) map[string]any {
	return c.metadata[name]
}

// RecordStage appends a completed stage record.
func (c *BaseContext) RecordStage(record StageRecord) {
	c.records = append(c.records, record)
}

// Records returns all stage records in execution order.
func (c *BaseContext) Records() []StageRecord {
	return c.records
}
