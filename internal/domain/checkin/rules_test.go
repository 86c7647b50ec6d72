package checkin

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDerive_NoHistory(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	status := Derive(nil, now, DefaultPolicy())
	if !status.CanCheckin || status.State != StateCanCheckin {
		t.Fatalf("expected CAN_CHECKIN, got %+v", status)
	}
	if status.Streak != 0 || status.LastCheckin != nil {
		t.Fatalf("expected empty status, got %+v", status)
	}
	if status.NextMilestone == nil || status.NextMilestone.Days != 3 {
		t.Fatalf("expected first milestone to be 3 days, got %+v", status.NextMilestone)
	}
}

func TestDerive_AlreadyCheckedInToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	history := []time.Time{now.Add(-22 * time.Hour)}

	status := Derive(history, now, DefaultPolicy())
	if status.CanCheckin || status.State != StateAlreadyCheckedToday {
		t.Fatalf("expected ALREADY_CHECKED_IN_TODAY, got %+v", status)
	}
	if status.Streak != 1 {
		t.Fatalf("expected streak 1, got %d", status.Streak)
	}
}

func TestDerive_NewDayReopensCheckin(t *testing.T) {
	now := time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)
	history := []time.Time{time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)}

	status := Derive(history, now, DefaultPolicy())
	if !status.CanCheckin {
		t.Fatalf("expected check-in to reopen after midnight")
	}
	if status.Streak != 1 {
		t.Fatalf("yesterday's streak stays alive, got %d", status.Streak)
	}
	if got := NextStreak(status, now, DefaultPolicy()); got != 2 {
		t.Fatalf("next streak = %d, want 2", got)
	}
}

func TestDerive_LapsedStreakIsZero(t *testing.T) {
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	history := []time.Time{
		time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	status := Derive(history, now, DefaultPolicy())
	if status.Streak != 0 {
		t.Fatalf("expected lapsed streak 0, got %d", status.Streak)
	}
	if status.TotalCheckins != 2 {
		t.Fatalf("expected 2 total check-ins, got %d", status.TotalCheckins)
	}
	if got := NextStreak(status, now, DefaultPolicy()); got != 1 {
		t.Fatalf("check-in after a gap must reset to 1, got %d", got)
	}
}

func TestDerive_UsesPolicyTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	policy := DefaultPolicy()
	policy.Location = jakarta

	// 16:00 UTC is 23:00 on the 10th in UTC+7; 18:00 UTC is already the 11th there.
	last := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	if status := Derive([]time.Time{last}, now, policy); !status.CanCheckin {
		t.Fatalf("expected a new local day in UTC+7")
	}
	if status := Derive([]time.Time{last}, now, DefaultPolicy()); status.CanCheckin {
		t.Fatalf("same UTC day must block a second check-in")
	}
	if got := DayKey(now, jakarta); got != "2026-03-11" {
		t.Fatalf("day key = %s, want 2026-03-11", got)
	}
}

func TestStreakAt_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	properties.Property("consecutive days produce streak N", prop.ForAll(
		func(n int) bool {
			history := make([]time.Time, 0, n)
			for i := 0; i < n; i++ {
				history = append(history, start.AddDate(0, 0, i))
			}
			return StreakAt(history, time.UTC) == n
		},
		gen.IntRange(1, 90),
	))

	properties.Property("a skipped day resets the streak to 1", prop.ForAll(
		func(n, gap int) bool {
			history := make([]time.Time, 0, n+1)
			for i := 0; i < n; i++ {
				history = append(history, start.AddDate(0, 0, i))
			}
			history = append(history, start.AddDate(0, 0, n-1+gap))
			return StreakAt(history, time.UTC) == 1
		},
		gen.IntRange(1, 60),
		gen.IntRange(2, 10),
	))

	properties.Property("repeat check-ins on one day do not extend the streak", prop.ForAll(
		func(n, repeats int) bool {
			history := make([]time.Time, 0, n+repeats)
			for i := 0; i < n; i++ {
				history = append(history, start.AddDate(0, 0, i))
			}
			last := start.AddDate(0, 0, n-1)
			for r := 0; r < repeats; r++ {
				history = append(history, last.Add(time.Duration(r+1)*time.Minute))
			}
			return StreakAt(history, time.UTC) == n
		},
		gen.IntRange(1, 30),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func TestReached(t *testing.T) {
	got := Reached(14)
	if len(got) != 3 || got[2].Label != "Fortnight Master" {
		t.Fatalf("unexpected milestones for 14: %+v", got)
	}
	if len(Reached(2)) != 0 {
		t.Fatalf("no milestone below 3 days")
	}
}
