// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"sync"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// MemoryStore satisfies Store entirely in memory. It backs tests and
// store-less invocations where no database path is configured.
type MemoryStore struct {
	mu      sync.Mutex
	closed  bool
	nodes   []*graph.Node
	edges   map[string]graph.Edge
	metrics map[string]graph.NodeMetrics
	Imports []graph.ResolvedImport
	Rules   []RuleRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store pre-populated with the given graph.
func NewMemoryStore(nodes []*graph.Node, edges []graph.Edge) *MemoryStore {
	m := &MemoryStore{
		nodes:   nodes,
		edges:   make(map[string]graph.Edge, len(edges)),
		metrics: make(map[string]graph.NodeMetrics),
	}
	for _, e := range edges {
		m.edges[e.Key()] = e
	}
	return m
}

// SetMetrics records per-node metrics to be served with snapshots.
func (m *MemoryStore) SetMetrics(metrics map[string]graph.NodeMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// LoadSnapshot builds a snapshot from the in-memory graph.
func (m *MemoryStore) LoadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	edges := make([]graph.Edge, 0, len(m.edges))
	for _, e := range m.edges {
		edges = append(edges, e)
	}
	snap, err := graph.NewSnapshot(m.nodes, edges)
	if err != nil {
		return nil, err
	}
	metrics := make(map[string]graph.NodeMetrics, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}
	snap.SetMetrics(metrics)
	return snap, nil
}

// MergeEdges upserts edges into the in-memory edge set.
func (m *MemoryStore) MergeEdges(ctx context.Context, edges []graph.Edge) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrStoreClosed
	}
	inserted := 0
	for _, e := range edges {
		if _, dup := m.edges[e.Key()]; dup {
			continue
		}
		m.edges[e.Key()] = e
		inserted++
	}
	return inserted, nil
}

// ReplaceImports replaces the recorded imports.
func (m *MemoryStore) ReplaceImports(ctx context.Context, imports []graph.ResolvedImport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.Imports = append([]graph.ResolvedImport(nil), imports...)
	return nil
}

// ReplaceRules replaces the recorded rule inventory.
func (m *MemoryStore) ReplaceRules(ctx context.Context, rules []RuleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.Rules = append([]RuleRecord(nil), rules...)
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
