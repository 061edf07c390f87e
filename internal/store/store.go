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

// Package store persists transformation records. Records are append-only:
// regeneration never mutates an existing record, it writes a new one linked
// to its parent, so the full lineage of a piece of content stays queryable.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/contentforge/forge/internal/core/model"
)

// ErrNotFound is returned when no record exists for the requested content id.
var ErrNotFound = errors.New("content not found")

// Record is one persisted transformation. ParentID is empty for an original
// transformation and holds the source record's content id for regenerations.
// ExtractedContent and Semantic carry the ingestion and analysis artifacts
// forward so regeneration can skip both stages.
type Record struct {
	ContentID        string                      `json:"content_id"`
	ParentID         string                      `json:"parent_id,omitempty"`
	Result           model.TransformationResult  `json:"result"`
	Bundle           model.InputBundle           `json:"bundle"`
	ExtractedContent string                      `json:"extracted_content"`
	Semantic         *model.SemanticSummary      `json:"semantic,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// ContentStore is the persistence boundary for transformation records.
// Implementations must be safe for concurrent use; the server handles
// requests in parallel.
type ContentStore interface {
	// Put writes a record. Content ids are unique; writing an existing id is
	// an error.
	Put(ctx context.Context, rec Record) error
	// Get returns the record for the content id, or ErrNotFound.
	Get(ctx context.Context, contentID string) (Record, error)
	// Children returns the direct regenerations of the given record in
	// creation order. A missing parent yields an empty slice, not an error.
	Children(ctx context.Context, parentID string) ([]Record, error)
	// Close releases any underlying resources.
	Close() error
}
