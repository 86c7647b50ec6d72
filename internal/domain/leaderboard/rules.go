package leaderboard

import (
	"cmp"
	"slices"
	"strings"
)

// Matches applies one equality predicate per non-empty filter field.
func (f Filter) Matches(e Entry) bool {
	if f.Sport != "" && !strings.EqualFold(e.SportName, f.Sport) {
		return false
	}
	if f.League != "" && !strings.EqualFold(e.LeagueName, f.League) {
		return false
	}
	if f.Club != "" && !strings.EqualFold(e.ClubName, f.Club) {
		return false
	}
	return true
}

func compare(a, b Entry) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	switch {
	case a.LastActivity != nil && b.LastActivity == nil:
		return -1
	case a.LastActivity == nil && b.LastActivity != nil:
		return 1
	case a.LastActivity != nil && b.LastActivity != nil:
		if c := a.LastActivity.Compare(*b.LastActivity); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.UserID, b.UserID)
}

// Sort orders all entries without filtering or truncation.
func Sort(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, compare)
	return out
}

// Apply filters and orders entries without truncating.
func Apply(entries []Entry, filter Filter) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, compare)
	return out
}

// Rank filters, orders by points (ties: earliest activity, then user id)
// and truncates to the filter limit.
func Rank(entries []Entry, filter Filter) []Entry {
	out := Apply(entries, filter)
	if limit := filter.NormalizedLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UserRank is the 1-based position of userID in ranked.
func UserRank(ranked []Entry, userID string) (int, bool) {
	idx := slices.IndexFunc(ranked, func(e Entry) bool { return e.UserID == userID })
	if idx < 0 {
		return 0, false
	}
	return idx + 1, true
}
