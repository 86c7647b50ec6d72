package leaderboard

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func sampleEntries() []Entry {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []Entry{
		{UserID: "user-1", DisplayName: "SportsFan123", TotalPoints: 2500, SportName: "Soccer", LeagueName: "Premier League", ClubName: "Arsenal", LastActivity: ptr(at)},
		{UserID: "user-2", DisplayName: "BasketballKing", TotalPoints: 1800, SportName: "Basketball", LeagueName: "NBA", ClubName: "Lakers", LastActivity: ptr(at)},
		{UserID: "demo-user-id", DisplayName: "You", TotalPoints: 110, SportName: "Soccer", LeagueName: "Premier League", ClubName: "Arsenal", LastActivity: ptr(at)},
	}
}

func TestRank_FilterBySport(t *testing.T) {
	ranked := Rank(sampleEntries(), Filter{Sport: "Basketball"})
	if len(ranked) != 1 || ranked[0].UserID != "user-2" {
		t.Fatalf("expected only BasketballKing, got %+v", ranked)
	}
	rank, ok := UserRank(ranked, "user-2")
	if !ok || rank != 1 {
		t.Fatalf("expected rank 1, got %d (found=%v)", rank, ok)
	}
}

func TestRank_AnyFilterCombination(t *testing.T) {
	ranked := Rank(sampleEntries(), Filter{League: "Premier League", Club: "Arsenal"})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].UserID != "user-1" {
		t.Fatalf("expected highest points first, got %s", ranked[0].UserID)
	}
	if _, ok := UserRank(ranked, "user-2"); ok {
		t.Fatalf("filtered out user must not have a rank")
	}
}

func TestRank_TieBreakByEarliestActivity(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{UserID: "c", TotalPoints: 100},
		{UserID: "b", TotalPoints: 100, LastActivity: ptr(at.Add(time.Hour))},
		{UserID: "a", TotalPoints: 100, LastActivity: ptr(at)},
		{UserID: "d", TotalPoints: 100, LastActivity: ptr(at)},
	}

	got := Rank(entries, Filter{})
	ids := []string{got[0].UserID, got[1].UserID, got[2].UserID, got[3].UserID}
	if !slices.Equal(ids, []string{"a", "d", "b", "c"}) {
		t.Fatalf("unexpected tie order: %v", ids)
	}
}

func TestRank_IsDeterministic(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, 50)
	for i := 0; i < 50; i++ {
		entries = append(entries, Entry{
			UserID:       fmt.Sprintf("u-%02d", i),
			TotalPoints:  int64(i % 7 * 10),
			LastActivity: ptr(at.Add(time.Duration(i%3) * time.Hour)),
		})
	}

	want := Rank(entries, Filter{})
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(entries)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Rank(shuffled, Filter{})
		for j := range want {
			if got[j].UserID != want[j].UserID {
				t.Fatalf("run %d: position %d = %s, want %s", i, j, got[j].UserID, want[j].UserID)
			}
			if rank, _ := UserRank(got, got[j].UserID); rank != j+1 {
				t.Fatalf("UserRank(%s) = %d, want %d", got[j].UserID, rank, j+1)
			}
		}
	}
}

func TestFilter_NormalizedLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -5: DefaultLimit, 10: 10, 10_000: MaxLimit}
	for in, want := range cases {
		if got := (Filter{Limit: in}).NormalizedLimit(); got != want {
			t.Fatalf("limit %d normalized to %d, want %d", in, got, want)
		}
	}

	entries := sampleEntries()
	if got := Rank(entries, Filter{Limit: 2}); len(got) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(got))
	}
}
