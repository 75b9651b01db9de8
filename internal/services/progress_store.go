package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/visionforge/visionforge-backend/internal/types"
)

// ProgressStore is the in-memory, process-wide view of running and finished
// releases, keyed by release id. It is injected into the release service so
// separate service instances (and tests) never share state. Entries are not
// persisted and are left in place after completion or failure.
type ProgressStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*types.ReleaseProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{entries: make(map[uuid.UUID]*types.ReleaseProgress)}
}

// Begin registers a new release in pending state.
func (s *ProgressStore) Begin(releaseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[releaseID] = &types.ReleaseProgress{
		ReleaseID: releaseID,
		Status:    types.ReleaseStatusPending,
		StartedAt: time.Now(),
	}
}

// Get returns a copy of the progress entry, non-blocking for writers.
func (s *ProgressStore) Get(releaseID uuid.UUID) (types.ReleaseProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[releaseID]
	if !ok {
		return types.ReleaseProgress{}, false
	}
	return *entry, true
}

// Update applies a mutation under the write lock. The progress percentage is
// clamped to [0,100] and never allowed to decrease while processing.
func (s *ProgressStore) Update(releaseID uuid.UUID, mutate func(*types.ReleaseProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[releaseID]
	if !ok {
		return
	}
	before := entry.ProgressPercentage
	mutate(entry)
	if entry.ProgressPercentage < before && entry.Status == types.ReleaseStatusProcessing {
		entry.ProgressPercentage = before
	}
	if entry.ProgressPercentage < 0 {
		entry.ProgressPercentage = 0
	}
	if entry.ProgressPercentage > 100 {
		entry.ProgressPercentage = 100
	}
}

// Delete removes an entry. Only used by explicit cleanup.
func (s *ProgressStore) Delete(releaseID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, releaseID)
}
