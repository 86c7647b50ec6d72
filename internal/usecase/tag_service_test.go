package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
)

func tagIDs(items []tag.UserTag) []string {
	out := make([]string, 0, len(items))
	for _, ut := range items {
		out = append(out, ut.TagID)
	}
	return out
}

func TestTagService_TagsByType(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())

	sports, err := h.tags.TagsByType(t.Context(), "sport", "")
	if err != nil {
		t.Fatalf("sports: %v", err)
	}
	if len(sports) != 3 {
		t.Fatalf("expected 3 sports, got %d", len(sports))
	}

	leagues, err := h.tags.TagsByType(t.Context(), "league", "sport-2")
	if err != nil {
		t.Fatalf("leagues: %v", err)
	}
	if len(leagues) != 1 || leagues[0].Name != "NBA" {
		t.Fatalf("unexpected leagues under basketball: %+v", leagues)
	}

	if _, err := h.tags.TagsByType(t.Context(), "team", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown type, got %v", err)
	}
}

func TestTagService_SelectClubSelectsChain(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())

	selected, err := h.tags.SelectTag(t.Context(), "user-1", "club-2")
	if err != nil {
		t.Fatalf("select club: %v", err)
	}
	got := tagIDs(selected)
	if len(got) != 3 || got[0] != "sport-2" || got[1] != "league-2" || got[2] != "club-2" {
		t.Fatalf("unexpected selection: %v", got)
	}

	prefs, err := h.tags.Preferences(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if !prefs.HasCompletePreferences || prefs.Club.Name != "Lakers" {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
	if h.invalidator.calls != 1 {
		t.Fatalf("expected leaderboard invalidation, got %d", h.invalidator.calls)
	}
}

func TestTagService_SelectSportReplacesLowerLevels(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.tags.SelectTag(t.Context(), "user-1", "club-1"); err != nil {
		t.Fatalf("select club: %v", err)
	}

	selected, err := h.tags.SelectTag(t.Context(), "user-1", "sport-3")
	if err != nil {
		t.Fatalf("select sport: %v", err)
	}
	if got := tagIDs(selected); len(got) != 1 || got[0] != "sport-3" {
		t.Fatalf("expected only the new sport, got %v", got)
	}
}

func TestTagService_ReselectLeagueKeepsClub(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.tags.SelectTag(t.Context(), "user-1", "club-1"); err != nil {
		t.Fatalf("select club: %v", err)
	}

	selected, err := h.tags.SelectTag(t.Context(), "user-1", "league-1")
	if err != nil {
		t.Fatalf("reselect league: %v", err)
	}
	if got := tagIDs(selected); len(got) != 3 || got[2] != "club-1" {
		t.Fatalf("expected club kept under reselected league, got %v", got)
	}

	prefs, err := h.tags.Preferences(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if !prefs.HasCompletePreferences || prefs.Club.ID != "club-1" {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
}

func TestTagService_SelectUnknownTag(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.tags.SelectTag(t.Context(), "user-1", "club-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTagService_RemoveCascades(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.tags.SelectTag(t.Context(), "user-1", "club-3"); err != nil {
		t.Fatalf("select club: %v", err)
	}

	remaining, err := h.tags.RemoveTag(t.Context(), "user-1", "league-3")
	if err != nil {
		t.Fatalf("remove league: %v", err)
	}
	if got := tagIDs(remaining); len(got) != 1 || got[0] != "sport-3" {
		t.Fatalf("expected club removed with league, got %v", got)
	}

	unchanged, err := h.tags.RemoveTag(t.Context(), "user-1", "club-1")
	if err != nil {
		t.Fatalf("remove unheld tag: %v", err)
	}
	if len(unchanged) != 1 {
		t.Fatalf("expected no-op, got %v", tagIDs(unchanged))
	}
}

func TestTagService_RemoveWithoutCascade(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	h.tags.cascade = false
	if _, err := h.tags.SelectTag(t.Context(), "user-1", "club-3"); err != nil {
		t.Fatalf("select club: %v", err)
	}

	remaining, err := h.tags.RemoveTag(t.Context(), "user-1", "league-3")
	if err != nil {
		t.Fatalf("remove league: %v", err)
	}
	if got := tagIDs(remaining); len(got) != 2 || got[1] != "club-3" {
		t.Fatalf("expected club kept, got %v", got)
	}
}
