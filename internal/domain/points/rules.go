package points

import (
	"cmp"
	"errors"
	"slices"
	"time"
)

var (
	ErrUnknownAction    = errors.New("unknown action type")
	ErrNegativePoints   = errors.New("points must not be negative")
	ErrMetadataMismatch = errors.New("metadata does not match action type")
)

func Total(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Points
	}
	return total
}

// SumSince adds the points of entries created at or after since.
func SumSince(entries []Entry, since time.Time) int64 {
	var total int64
	for _, e := range entries {
		if !e.CreatedAt.Before(since) {
			total += e.Points
		}
	}
	return total
}

func CountByAction(entries []Entry, action ActionType) int {
	n := 0
	for _, e := range entries {
		if e.ActionType == action {
			n++
		}
	}
	return n
}

func FilterByAction(entries []Entry, action ActionType) []Entry {
	out := make([]Entry, 0)
	for _, e := range entries {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

// SortRecent returns a copy ordered newest first, ties by ID descending.
func SortRecent(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// Recent returns at most limit entries from SortRecent. limit <= 0 means all.
func Recent(entries []Entry, limit int) []Entry {
	sorted := SortRecent(entries)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func LastActivity(entries []Entry) *time.Time {
	var last *time.Time
	for _, e := range entries {
		if last == nil || e.CreatedAt.After(*last) {
			t := e.CreatedAt
			last = &t
		}
	}
	return last
}

// Summarize aggregates one user's entries.
func Summarize(userID string, entries []Entry) Summary {
	return Summary{
		UserID:       userID,
		TotalPoints:  Total(entries),
		EntryCount:   len(entries),
		LastActivity: LastActivity(entries),
	}
}
