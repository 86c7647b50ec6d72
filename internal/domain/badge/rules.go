package badge

import "slices"

var percentileTiers = []struct {
	badge   Type
	percent int
}{
	{badge: TypeTop1Percent, percent: 1},
	{badge: TypeTop5Percent, percent: 5},
	{badge: TypeTop10Percent, percent: 10},
}

// PercentileCutoff is the lowest rank still inside the top percent of n users.
func PercentileCutoff(n, percent int) int {
	if n <= 0 || percent <= 0 {
		return 0
	}
	return (n*percent + 99) / 100
}

// Evaluate returns every badge type the input qualifies for, in display
// order. Percentile tiers are cumulative and need a non-zero total.
func Evaluate(in Input, th Thresholds) []Type {
	qualified := make(map[Type]bool, len(OrderedTypes))

	if in.TotalPoints >= th.SuperfanPoints {
		qualified[TypeSuperfan] = true
	}
	if in.TotalCheckins >= th.DailyDevoteeDays {
		qualified[TypeDailyDevotee] = true
	}
	if in.ActiveStreak >= th.LoyalFanStreak {
		qualified[TypeLoyalFan] = true
	}
	if th.RisingStarPoints > 0 && in.RecentPoints >= th.RisingStarPoints {
		qualified[TypeRisingStar] = true
	}
	if in.Rank > 0 && in.TotalPoints > 0 {
		for _, tier := range percentileTiers {
			if in.Rank <= PercentileCutoff(in.RankedUsers, tier.percent) {
				qualified[tier.badge] = true
			}
		}
	}

	out := make([]Type, 0, len(qualified))
	for _, t := range OrderedTypes {
		if qualified[t] {
			out = append(out, t)
		}
	}
	return out
}

// NewTypes filters qualified down to the types not already held.
func NewTypes(held []Badge, qualified []Type) []Type {
	out := make([]Type, 0, len(qualified))
	for _, t := range qualified {
		if slices.ContainsFunc(held, func(b Badge) bool { return b.Type == t }) {
			continue
		}
		if slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortForDisplay orders badges by OrderedTypes then earned time.
func SortForDisplay(badges []Badge) []Badge {
	out := slices.Clone(badges)
	slices.SortStableFunc(out, func(a, b Badge) int {
		ai, bi := slices.Index(OrderedTypes, a.Type), slices.Index(OrderedTypes, b.Type)
		if ai != bi {
			return ai - bi
		}
		return a.EarnedAt.Compare(b.EarnedAt)
	})
	return out
}
