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

package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps records in process memory. It is the default when no
// sqlite path is configured and the backing store for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	children map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]Record),
		children: make(map[string][]string),
	}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ContentID]; exists {
		return fmt.Errorf("content id %q already stored", rec.ContentID)
	}
	s.records[rec.ContentID] = rec
	if rec.ParentID != "" {
		s.children[rec.ParentID] = append(s.children[rec.ParentID], rec.ContentID)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, contentID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[contentID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Children(_ context.Context, parentID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.children[parentID]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
