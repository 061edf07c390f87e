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

// Package store_test exercises both content store implementations through
// the shared interface, plus the memory store's concurrency behavior.
package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contentforge/forge/internal/core/model"
	"github.com/contentforge/forge/internal/store"
)

// makeRecord builds a stored transformation with the given ids.
func makeRecord(contentID, parentID string) store.Record {
	script := "the script for " + contentID
	return store.Record{
		ContentID: contentID,
		ParentID:  parentID,
		Result: model.TransformationResult{
			ContentID:       contentID,
			Success:         true,
			GeneratedScript: &script,
			OutputFormat:    model.FormatBlogPost,
		},
		Bundle:           model.InputBundle{TextInput: "source text", OutputFormat: model.FormatBlogPost},
		ExtractedContent: "extracted source text",
		CreatedAt:        time.Now().UTC(),
	}
}

// storeUnderTest runs the shared interface checks against any ContentStore.
func storeUnderTest(t *testing.T, s store.ContentStore) {
	t.Helper()
	ctx := context.Background()

	// Unknown id before any writes.
	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Round trip.
	assert.NoError(t, s.Put(ctx, makeRecord("parent", "")))
	got, err := s.Get(ctx, "parent")
	assert.NoError(t, err)
	assert.Equal(t, "parent", got.ContentID)
	assert.Equal(t, "extracted source text", got.ExtractedContent)
	assert.True(t, got.Result.Success)
	assert.Equal(t, "the script for parent", *got.Result.GeneratedScript)

	// Duplicate ids are rejected.
	assert.Error(t, s.Put(ctx, makeRecord("parent", "")))

	// Lineage: children are returned in creation order, and the parent
	// record itself is untouched by their arrival.
	assert.NoError(t, s.Put(ctx, makeRecord("child-1", "parent")))
	assert.NoError(t, s.Put(ctx, makeRecord("child-2", "parent")))

	children, err := s.Children(ctx, "parent")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(children))
	assert.Equal(t, "child-1", children[0].ContentID)
	assert.Equal(t, "child-2", children[1].ContentID)

	again, err := s.Get(ctx, "parent")
	assert.NoError(t, err)
	assert.Equal(t, got.Result.ContentID, again.Result.ContentID)

	// A record with no children yields an empty slice, not an error.
	children, err = s.Children(ctx, "child-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(children))
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	storeUnderTest(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := store.OpenSQLite(t.TempDir() + "/forge.db")
	assert.NoError(t, err)
	defer s.Close()
	storeUnderTest(t, s)
}

// TestMemoryStoreConcurrentWrites verifies that parallel writers with
// distinct ids all land, mirroring concurrent transform requests.
func TestMemoryStoreConcurrentWrites(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("content-%d", n)
			assert.NoError(t, s.Put(ctx, makeRecord(id, "")))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		_, err := s.Get(ctx, fmt.Sprintf("content-%d", i))
		assert.NoError(t, err)
	}
}

// TestSQLiteStorePersistsAcrossReopen verifies durability: a record written
// before close is readable after reopening the same file.
func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/forge.db"

	s, err := store.OpenSQLite(path)
	assert.NoError(t, err)
	assert.NoError(t, s.Put(context.Background(), makeRecord("durable", "")))
	assert.NoError(t, s.Close())

	reopened, err := store.OpenSQLite(path)
	assert.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "durable")
	assert.NoError(t, err)
	assert.Equal(t, "durable", got.ContentID)
}
