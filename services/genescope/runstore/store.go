// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package runstore keeps finished analyses in memory for a limited time so
// the web UI can fetch downloads and network views after the run.
package runstore

import (
	"errors"
	"time"

	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a finished run stays available.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for unknown or expired run ids.
var ErrNotFound = errors.New("run not found or expired")

// Store is a TTL-bounded map of run id to result. Safe for concurrent use.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// New creates a store whose entries expire after ttl. Expired entries are
// purged every ttl/2.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: gocache.New(ttl, ttl/2), ttl: ttl}
}

// TTL returns the entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Put stores res under a fresh id and returns the id.
func (s *Store) Put(res *pipeline.Result) string {
	id := uuid.NewString()
	s.cache.Set(id, res, gocache.DefaultExpiration)
	return id
}

// Get returns the result stored under id.
func (s *Store) Get(id string) (*pipeline.Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*pipeline.Result), nil
}

// Delete removes a run.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of stored runs, including expired ones not yet
// purged.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
