package badge

import "time"

type Type string

const (
	TypeTop1Percent  Type = "top_1_percent"
	TypeTop5Percent  Type = "top_5_percent"
	TypeTop10Percent Type = "top_10_percent"
	TypeSuperfan     Type = "superfan"
	TypeDailyDevotee Type = "daily_devotee"
	TypeRisingStar   Type = "rising_star"
	TypeLoyalFan     Type = "loyal_fan"
)

// OrderedTypes is the display order of badges.
var OrderedTypes = []Type{
	TypeTop1Percent,
	TypeTop5Percent,
	TypeTop10Percent,
	TypeSuperfan,
	TypeDailyDevotee,
	TypeRisingStar,
	TypeLoyalFan,
}

type Definition struct {
	Label       string
	Description string
}

var Definitions = map[Type]Definition{
	TypeTop1Percent:  {Label: "Top 1%", Description: "Top 1% of all fans"},
	TypeTop5Percent:  {Label: "Top 5%", Description: "Top 5% of all fans"},
	TypeTop10Percent: {Label: "Top 10%", Description: "Top 10% of all fans"},
	TypeSuperfan:     {Label: "Superfan", Description: "1000+ points earned"},
	TypeDailyDevotee: {Label: "Daily Devotee", Description: "30+ daily check-ins"},
	TypeRisingStar:   {Label: "Rising Star", Description: "Rapid point accumulation"},
	TypeLoyalFan:     {Label: "Loyal Fan", Description: "Consistent engagement"},
}

func ParseType(raw string) (Type, bool) {
	t := Type(raw)
	_, ok := Definitions[t]
	return t, ok
}

// Snapshot records the figures a badge was granted on.
type Snapshot struct {
	TotalPoints   int64 `json:"total_points"`
	TotalCheckins int   `json:"total_checkins"`
	ActiveStreak  int   `json:"active_streak"`
	RecentPoints  int64 `json:"recent_points"`
	Rank          int   `json:"rank,omitempty"`
	RankedUsers   int   `json:"ranked_users,omitempty"`
}

type Badge struct {
	ID       string
	UserID   string
	Type     Type
	EarnedAt time.Time
	Metadata Snapshot
}

// Input is everything Evaluate needs about one user.
type Input struct {
	TotalPoints   int64
	TotalCheckins int
	ActiveStreak  int
	RecentPoints  int64
	// Rank is the 1-based position among RankedUsers by total points; 0 if unranked.
	Rank        int
	RankedUsers int
}

func (in Input) Snapshot() Snapshot {
	return Snapshot(in)
}

// Thresholds are the badge qualification limits.
type Thresholds struct {
	SuperfanPoints   int64
	DailyDevoteeDays int
	LoyalFanStreak   int
	RisingStarPoints int64
	RisingStarWindow time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SuperfanPoints:   1000,
		DailyDevoteeDays: 30,
		LoyalFanStreak:   7,
		RisingStarPoints: 500,
		RisingStarWindow: 7 * 24 * time.Hour,
	}
}
