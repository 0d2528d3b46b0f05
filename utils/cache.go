package utils

import (
	"context"
	"sync"
	"time"
)

// CacheEntry represents a cached game document
type CacheEntry struct {
	Doc       Document
	ExpiresAt time.Time
}

// CachedStore is a write-through cache in front of another DocumentStore
type CachedStore struct {
	backend       DocumentStore
	data          map[string]*CacheEntry
	mutex         sync.RWMutex
	ttl           time.Duration
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// NewCachedStore wraps backend. Expired entries are swept every cleanupEvery.
func NewCachedStore(backend DocumentStore, ttl, cleanupEvery time.Duration) *CachedStore {
	cs := &CachedStore{
		backend: backend,
		data:    make(map[string]*CacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	if cleanupEvery > 0 {
		cs.cleanupTicker = time.NewTicker(cleanupEvery)
		go cs.cleanupRoutine()
	}
	return cs
}

// Load returns a copy of the cached document, reading through on a miss
func (cs *CachedStore) Load(ctx context.Context, gameID string) (Document, error) {
	cs.mutex.RLock()
	entry, exists := cs.data[gameID]
	cs.mutex.RUnlock()

	if exists && time.Now().Before(entry.ExpiresAt) {
		return entry.Doc.Clone(), nil
	}

	doc, err := cs.backend.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	cs.set(gameID, doc)
	return doc, nil
}

// Save writes to the backend first and only then refreshes the cache
func (cs *CachedStore) Save(ctx context.Context, gameID string, doc Document) error {
	if err := cs.backend.Save(ctx, gameID, doc); err != nil {
		cs.Delete(gameID)
		return err
	}
	cs.set(gameID, doc)
	return nil
}

func (cs *CachedStore) set(gameID string, doc Document) {
	entry := &CacheEntry{
		Doc:       doc.Clone(),
		ExpiresAt: time.Now().Add(cs.ttl),
	}

	cs.mutex.Lock()
	cs.data[gameID] = entry
	cs.mutex.Unlock()
}

// Delete removes a game from cache
func (cs *CachedStore) Delete(gameID string) {
	cs.mutex.Lock()
	delete(cs.data, gameID)
	cs.mutex.Unlock()
}

// Size returns the number of entries in cache
func (cs *CachedStore) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.data)
}

// Close stops the cleanup routine and closes the backend
func (cs *CachedStore) Close() error {
	cs.closeOnce.Do(func() {
		if cs.cleanupTicker != nil {
			cs.cleanupTicker.Stop()
		}
		close(cs.done)
	})
	return cs.backend.Close()
}

func (cs *CachedStore) cleanupRoutine() {
	for {
		select {
		case <-cs.cleanupTicker.C:
			cs.cleanup(time.Now())
		case <-cs.done:
			return
		}
	}
}

// cleanup removes entries that expired before now
func (cs *CachedStore) cleanup(now time.Time) int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	removed := 0
	for gameID, entry := range cs.data {
		if now.After(entry.ExpiresAt) {
			delete(cs.data, gameID)
			removed++
		}
	}

	if removed > 0 {
		BotLogf("STORE", "Cleaned up %d expired cache entries. Cache size: %d", removed, len(cs.data))
	}
	return removed
}
