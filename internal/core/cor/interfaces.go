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

// Package cor (Chain of Responsibility) provides the building blocks for the
// transformation pipeline. A workflow is a Chain of Commands executed in a
// fixed order over a shared Context. The Context is the property bag commands
// use to pass artifacts to one another; it also accumulates the per-stage
// bookkeeping the pipeline contract requires: errors, non-fatal warnings,
// stage metadata, and a timed StageRecord for every command that actually
// ran. Commands that are not executable with the current context state (their
// required input is missing, typically because an upstream stage failed) are
// skipped entirely and leave no record.
package cor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used for the primary data flow within a
// chain. The chain moves the value a command leaves under CtxOut into CtxIn
// before the next command runs.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// StageRecord is the chain's account of one executed command: whether it
// succeeded, how long it ran, and the warnings and metadata it reported.
// Records are kept in execution order.
type StageRecord struct {
	Name     string
	Success  bool
	Duration time.Duration
	Err      error
	Warnings []string
	Metadata map[string]any
}

// Context is the shared state object passed through a chain of commands for a
// single workflow execution.
type Context interface {
	// SetContext and GetContext manage the standard Go context used for
	// cancellation, deadlines, and trace propagation.
	SetContext(ctx context.Context)
	GetContext() context.Context

	// Add stores a key-value pair; it returns the Context for chaining.
	Add(key string, value any) Context

	// Get retrieves a value by key, or nil when absent.
	Get(key string) any

	// Remove deletes a key-value pair.
	Remove(key string)

	// AddError records a fatal failure of the named command. At most one
	// error is kept per command.
	AddError(name string, err error)

	// ErrorFor returns the error recorded for the named command, or nil.
	ErrorFor(name string) error

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// AddWarning appends a non-fatal warning to the named command. A command
	// may warn any number of times and still succeed.
	AddWarning(name string, warning string)

	// WarningsFor returns the warnings recorded for the named command, in
	// order, or nil.
	WarningsFor(name string) []string

	// AddMetadata attaches a metadata entry to the named command's record.
	AddMetadata(name string, key string, value any)

	// MetadataFor returns the metadata map for the named command, or nil.
	MetadataFor(name string) map[string]any

	// RecordStage appends a completed stage record. Called by the chain, not
	// by commands.
	RecordStage(record StageRecord)

	// Records returns all stage records in execution order.
	Records() []StageRecord
}

// Executable is any object with a core execution step.
type Executable interface {
	// Execute performs the unit of work, reading inputs from and writing
	// outputs to the given Context.
	Execute(context Context)
}

// Command is an atomic, testable unit of pipeline work.
type Command interface {
	Executable

	// GetName returns the command's unique name, used as the stage name in
	// records, logs, and telemetry.
	GetName() string

	// GetInputParam and GetOutputParam return the context keys for the
	// command's primary input and output.
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable reports whether the command can run with the current
	// context state. A false return skips the command without recording a
	// stage result; this is how downstream stages are aborted when the stage
	// they depend on produced nothing.
	IsExecutable(context Context) bool

	// GetTracer, GetMeter, and the counters expose the command's
	// OpenTelemetry instrumentation.
	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains can be nested.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error. The transformation pipeline runs with this
	// enabled: failure isolation between stages is expressed through
	// IsExecutable gating rather than by halting the chain.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
