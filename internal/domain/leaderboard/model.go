package leaderboard

import "time"

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Entry is a read-only projection of one fan's standing.
type Entry struct {
	UserID        string
	DisplayName   string
	Country       string
	TotalPoints   int64
	CheckinStreak int
	SportName     string
	LeagueName    string
	ClubName      string
	BadgeCount    int
	LastActivity  *time.Time
}

// Filter narrows the board. Empty fields are ignored.
type Filter struct {
	Sport  string
	League string
	Club   string
	Limit  int
}

func (f Filter) NormalizedLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// CacheKey identifies the filter without its limit.
func (f Filter) CacheKey() string {
	return "sport=" + f.Sport + "|league=" + f.League + "|club=" + f.Club
}
