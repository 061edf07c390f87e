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

// This file defines BaseChain, the default Chain implementation.
//
// Execution flow:
//  1. A span is opened for the whole chain, then one child span per command.
//  2. Before each command the chain checks the halt condition: if a previous
//     command failed and ContinueOnFailure is off, remaining commands are
//     skipped. The transformation pipeline runs with ContinueOnFailure on, so
//     a stage failure by itself never halts the chain; stages that depend on
//     the failed stage's output simply report IsExecutable == false.
//  3. Each executed command is timed. When it returns, the chain assembles a
//     StageRecord from the timing plus the error, warnings, and metadata the
//     command reported to the context, and appends it to the context's record
//     list. Skipped commands leave no record.
//  4. After each command the chain pipes CtxOut into CtxIn so the next
//     command's default input is the previous command's output.
package cor

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain is the default implementation of the Chain interface. It holds a
// slice of commands executed strictly sequentially.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates a chain with the given name.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// ContinueOnFailure sets whether the chain keeps executing after a command
// records an error. Returns the chain for fluent construction.
func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

// AddCommand appends a command to the chain's execution sequence.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable reports whether the chain can run; a chain only needs a valid
// Go context.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context.GetContext() != nil
}

// Execute runs all commands in order, recording a StageRecord for each one
// that actually executes.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()

	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	for _, command := range c.commands {
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())

		if chCtx.HasErrors() && !c.continueOnFailure {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if command.IsExecutable(chCtx) {
			name := command.GetName()

			// Run the command under its own span, timing it independently of
			// any orchestration overhead.
			chCtx.SetContext(commandContext)
			start := time.Now()
			command.Execute(chCtx)
			elapsed := time.Since(start)
			chCtx.SetContext(outerCtx)

			err := chCtx.ErrorFor(name)
			chCtx.RecordStage(StageRecord{
				Name:     name,
				Success:  err == nil,
				Duration: elapsed,
				Err:      err,
				Warnings: chCtx.WarningsFor(name),
				Metadata: chCtx.MetadataFor(name),
			})
			if err != nil {
				commandSpan.SetStatus(codes.Error, err.Error())
			} else {
				commandSpan.SetStatus(codes.Ok, "command completed successfully")
			}
		} else {
			commandSpan.SetStatus(codes.Error, fmt.Sprintf("command not executable: %s", command.GetName()))
		}
		commandSpan.End()

		// Pipe the output of the command that just ran into the input slot
		// for the next one.
		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain completed with stage failures")
	}
}
