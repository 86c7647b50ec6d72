package checkin

import (
	"slices"
	"time"
)

const dayLayout = "2006-01-02"

// Day is the calendar day of t in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayKey formats the calendar day of t as yyyy-mm-dd.
func DayKey(t time.Time, loc *time.Location) string {
	return Day(t, loc).Format(dayLayout)
}

func sameDay(a, b time.Time) bool {
	return a.Equal(b)
}

func nextDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1)
}

// distinctDays returns the sorted calendar days on which check-ins happened.
func distinctDays(checkins []time.Time, loc *time.Location) []time.Time {
	days := make([]time.Time, 0, len(checkins))
	for _, at := range checkins {
		days = append(days, Day(at, loc))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(days, sameDay)
}

// StreakAt computes the consecutive-day run ending at the latest check-in.
// A skipped day resets the run to 1.
func StreakAt(checkins []time.Time, loc *time.Location) int {
	days := distinctDays(checkins, loc)
	if len(days) == 0 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if sameDay(days[i], nextDay(days[i-1])) {
			streak++
			continue
		}
		streak = 1
	}
	return streak
}

// Derive builds the check-in status at now. The streak is reported only
// while it is still alive, i.e. the last check-in was today or yesterday.
func Derive(checkins []time.Time, now time.Time, policy Policy) Status {
	loc := policy.location()
	status := Status{
		State:         StateCanCheckin,
		CanCheckin:    true,
		TotalCheckins: len(distinctDays(checkins, loc)),
	}
	if len(checkins) == 0 {
		status.NextMilestone = nextMilestone(0)
		return status
	}

	last := checkins[0]
	for _, at := range checkins[1:] {
		if at.After(last) {
			last = at
		}
	}
	status.LastCheckin = &last

	today := Day(now, loc)
	lastDay := Day(last, loc)
	if !lastDay.Before(today) {
		status.State = StateAlreadyCheckedToday
		status.CanCheckin = false
	}

	if !lastDay.Before(today.AddDate(0, 0, -1)) {
		status.Streak = StreakAt(checkins, loc)
	}
	status.Milestones = Reached(status.Streak)
	status.NextMilestone = nextMilestone(status.Streak)
	return status
}

// NextStreak is the streak a check-in at now would produce.
func NextStreak(previous Status, now time.Time, policy Policy) int {
	if previous.LastCheckin == nil {
		return 1
	}
	loc := policy.location()
	if sameDay(nextDay(Day(*previous.LastCheckin, loc)), Day(now, loc)) {
		return previous.Streak + 1
	}
	return 1
}

// Reached lists the milestones a streak has passed.
func Reached(streak int) []Milestone {
	out := make([]Milestone, 0, len(Milestones))
	for _, m := range Milestones {
		if streak >= m.Days {
			out = append(out, m)
		}
	}
	return out
}

func nextMilestone(streak int) *Milestone {
	for _, m := range Milestones {
		if streak < m.Days {
			next := m
			return &next
		}
	}
	return nil
}
