// Package file keeps the leaderboard in a flat JSON document mapping
// stringified author IDs to star counts.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/VTGare/Starlight/store"
)

// Leaderboard is a store.LeaderboardStore backed by a single file that is
// rewritten wholesale after every mutation.
type Leaderboard struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
}

var _ store.LeaderboardStore = (*Leaderboard)(nil)

// Open loads the leaderboard at path. A missing file is an empty
// leaderboard; unparsable content fails with store.ErrStorageCorrupt.
func Open(path string) (*Leaderboard, error) {
	lb := &Leaderboard{path: path}

	counts, err := lb.Load()
	if err != nil {
		return nil, err
	}

	lb.counts = counts
	return lb, nil
}

// Load reads the persisted mapping without touching the in-memory one.
func (lb *Leaderboard) Load() (map[string]int, error) {
	data, err := os.ReadFile(lb.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]int), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	return decode(data)
}

// Save replaces the whole leaderboard with counts, on disk and in memory.
func (lb *Leaderboard) Save(counts map[string]int) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if err := lb.save(counts); err != nil {
		return err
	}

	next := make(map[string]int, len(counts))
	for id, stars := range counts {
		next[id] = stars
	}

	lb.counts = next
	return nil
}

// save atomically replaces the persisted mapping: the content goes to a
// temporary file in the same directory which is then renamed over the old
// one. Callers hold lb.mu.
func (lb *Leaderboard) save(counts map[string]int) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	dir := filepath.Dir(lb.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(lb.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// No-op once the rename succeeded.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), lb.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func (lb *Leaderboard) Increment(ctx context.Context, authorID string, delta int) (int, error) {
	log := ctxzap.Extract(ctx)

	lb.mu.Lock()
	defer lb.mu.Unlock()

	prev, existed := lb.counts[authorID]
	next := prev + delta
	if next < 0 {
		next = 0
	}

	lb.counts[authorID] = next
	if err := lb.save(lb.counts); err != nil {
		// Memory never runs ahead of the file.
		if existed {
			lb.counts[authorID] = prev
		} else {
			delete(lb.counts, authorID)
		}

		log.With("author_id", authorID, "delta", delta, "error", err).
			Error("failed to persist leaderboard")

		return prev, err
	}

	log.With("author_id", authorID, "delta", delta, "stars", next).
		Info("updated leaderboard")

	return next, nil
}

func (lb *Leaderboard) Count(_ context.Context, authorID string) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	return lb.counts[authorID], nil
}

func (lb *Leaderboard) Entries(_ context.Context) ([]*store.LeaderboardEntry, error) {
	lb.mu.Lock()
	entries := make([]*store.LeaderboardEntry, 0, len(lb.counts))
	for id, stars := range lb.counts {
		entries = append(entries, &store.LeaderboardEntry{AuthorID: id, Stars: stars})
	}
	lb.mu.Unlock()

	store.SortEntries(entries)
	return entries, nil
}

func decode(data []byte) (map[string]int, error) {
	counts := make(map[string]int)
	if len(bytes.TrimSpace(data)) == 0 {
		return counts, nil
	}

	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorageCorrupt, err)
	}

	// JSON null decodes into a nil map.
	if counts == nil {
		return nil, fmt.Errorf("%w: leaderboard is not an object", store.ErrStorageCorrupt)
	}

	for id, stars := range counts {
		if stars < 0 {
			return nil, fmt.Errorf("%w: negative count %d for %v", store.ErrStorageCorrupt, stars, id)
		}
	}

	return counts, nil
}
