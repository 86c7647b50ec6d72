package points

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTotal_ExampleLedger(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "1", UserID: "demo", ActionType: ActionDailyCheckin, Points: 10, CreatedAt: now},
		{ID: "2", UserID: "demo", ActionType: ActionTicketUpload, Points: 100, CreatedAt: now.Add(time.Hour)},
	}

	if got := Total(entries); got != 110 {
		t.Fatalf("total = %d, want 110", got)
	}
	if got := CountByAction(entries, ActionDailyCheckin); got != 1 {
		t.Fatalf("checkin count = %d, want 1", got)
	}
}

func TestTotal_EqualsSumOfAwards(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals sum of appended points", prop.ForAll(
		func(awards []int64) bool {
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			entries := make([]Entry, 0, len(awards))
			var want int64
			for i, p := range awards {
				entries = append(entries, Entry{
					ID:         string(rune('a' + i%26)),
					UserID:     "u",
					ActionType: ActionAdminAdjustment,
					Points:     p,
					CreatedAt:  base.Add(time.Duration(i) * time.Minute),
				})
				want += p
			}
			return Total(entries) == want && Summarize("u", entries).TotalPoints == want
		},
		gen.SliceOf(gen.Int64Range(0, 10_000)),
	))

	properties.TestingRun(t)
}

func TestSumSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "old", Points: 400, CreatedAt: now.AddDate(0, 0, -8)},
		{ID: "edge", Points: 50, CreatedAt: now.AddDate(0, 0, -7)},
		{ID: "new", Points: 25, CreatedAt: now.Add(-time.Hour)},
	}

	if got := SumSince(entries, now.AddDate(0, 0, -7)); got != 75 {
		t.Fatalf("sum since = %d, want 75", got)
	}
}

func TestRecent_OrdersNewestFirstWithIDTieBreak(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", CreatedAt: at},
		{ID: "c", CreatedAt: at.Add(time.Minute)},
		{ID: "b", CreatedAt: at},
	}

	got := Recent(entries, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if entries[0].ID != "a" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestEntryValidate(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := Entry{
		ID:         "e1",
		UserID:     "u1",
		ActionType: ActionDailyCheckin,
		Points:     10,
		Metadata:   CheckinMetadata{Date: "2026-03-01"},
		CreatedAt:  at,
	}

	tests := []struct {
		name      string
		mutate    func(*Entry)
		targetErr error
		wantErr   bool
	}{
		{name: "valid", mutate: func(*Entry) {}},
		{name: "negative points", mutate: func(e *Entry) { e.Points = -1 }, targetErr: ErrNegativePoints},
		{name: "unknown action", mutate: func(e *Entry) { e.ActionType = "bonus" }, targetErr: ErrUnknownAction},
		{
			name:      "metadata mismatch",
			mutate:    func(e *Entry) { e.Metadata = TicketMetadata{TicketID: "t1"} },
			targetErr: ErrMetadataMismatch,
		},
		{name: "missing user", mutate: func(e *Entry) { e.UserID = "" }, wantErr: true},
		{name: "nil metadata allowed", mutate: func(e *Entry) { e.Metadata = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entry := valid
			tc.mutate(&entry)
			err := entry.Validate()
			switch {
			case tc.targetErr != nil:
				if !errors.Is(err, tc.targetErr) {
					t.Fatalf("expected %v, got %v", tc.targetErr, err)
				}
			case tc.wantErr:
				if err == nil {
					t.Fatalf("expected error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}
