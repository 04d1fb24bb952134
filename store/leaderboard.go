package store

import (
	"context"
	"sort"
)

// LeaderboardStore is the only writer of the persisted leaderboard. Counts
// never go below zero.
type LeaderboardStore interface {
	// Increment adds delta, which may be negative, to the author's count,
	// floors the result at zero, persists, and returns the new count.
	Increment(ctx context.Context, authorID string, delta int) (int, error)
	Count(ctx context.Context, authorID string) (int, error)
	// Entries returns every author ordered by count, highest first.
	Entries(ctx context.Context) ([]*LeaderboardEntry, error)
}

type LeaderboardEntry struct {
	AuthorID string `json:"author_id"`
	Stars    int    `json:"stars"`
}

// SortEntries orders entries by stars descending, breaking ties by author ID
// so the order is stable across reloads.
func SortEntries(entries []*LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stars != entries[j].Stars {
			return entries[i].Stars > entries[j].Stars
		}

		return entries[i].AuthorID < entries[j].AuthorID
	})
}
