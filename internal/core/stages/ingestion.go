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

package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contentforge/forge/internal/core/cor"
	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/extract"
)

// IngestionCommand resolves every source in the input bundle to text and
// combines the results into a single corpus. Partial failure is the expected
// mode: each unresolvable source becomes a warning, and the stage fails only
// when not a single source yielded text.
type IngestionCommand struct {
	cor.BaseCommand
	extractor extract.Extractor
	timeout   time.Duration
}

func NewIngestionCommand(extractor extract.Extractor, timeout time.Duration) *IngestionCommand {
	return &IngestionCommand{
		BaseCommand: *cor.NewBaseCommand(model.StageIngestion),
		extractor:   extractor,
		timeout:     timeout,
	}
}

func (c *IngestionCommand) IsExecutable(chCtx cor.Context) bool {
	return chCtx != nil && chCtx.GetContext() != nil && chCtx.Get(KeyBundle) != nil
}

func (c *IngestionCommand) Execute(chCtx cor.Context) {
	name := c.GetName()
	bundle := chCtx.Get(KeyBundle).(*model.InputBundle)

	ctx := chCtx.GetContext()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// Files refused at the boundary still surface here so the caller sees
	// them on the stage's warning list.
	for _, rej := range bundle.RejectedFiles {
		chCtx.AddWarning(name, rej.Warning())
	}

	var sections []string
	resolved := 0

	if text := strings.TrimSpace(bundle.TextInput); text != "" {
		sections = append(sections, "=== direct text input ===\n"+text)
		resolved++
	}

	for _, file := range bundle.Files {
		text, err := c.extractor.FromFile(ctx, file)
		if err != nil {
			chCtx.AddWarning(name, err.Error())
			continue
		}
		sections = append(sections, fmt.Sprintf("=== file: %s ===\n%s", file.Filename, text))
		resolved++
	}

	for _, url := range bundle.URLs {
		text, err := c.extractor.FromURL(ctx, url)
		if err != nil {
			chCtx.AddWarning(name, err.Error())
			continue
		}
		sections = append(sections, fmt.Sprintf("=== url: %s ===\n%s", url, text))
		resolved++
	}

	chCtx.AddMetadata(name, "sources_total", bundle.SourceCount())
	chCtx.AddMetadata(name, "sources_resolved", resolved)
	chCtx.AddMetadata(name, "files_rejected", len(bundle.RejectedFiles))

	if resolved == 0 {
		chCtx.AddError(name, errors.New("no input source could be resolved to text"))
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	chCtx.Add(KeyExtractedContent, strings.Join(sections, "\n\n"))
	c.GetSuccessCounter().Add(ctx, 1)
}
