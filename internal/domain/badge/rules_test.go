package badge

import (
	"slices"
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		in   Input
		want []Type
	}{
		{
			name: "nothing earned",
			in:   Input{TotalPoints: 110, TotalCheckins: 1, ActiveStreak: 1},
			want: []Type{},
		},
		{
			name: "superfan at exactly 1000",
			in:   Input{TotalPoints: 1000},
			want: []Type{TypeSuperfan},
		},
		{
			name: "daily devotee and loyal fan",
			in:   Input{TotalPoints: 300, TotalCheckins: 30, ActiveStreak: 7},
			want: []Type{TypeDailyDevotee, TypeLoyalFan},
		},
		{
			name: "lapsed streak is not loyal",
			in:   Input{TotalCheckins: 12, ActiveStreak: 0},
			want: []Type{},
		},
		{
			name: "rising star",
			in:   Input{TotalPoints: 600, RecentPoints: 500},
			want: []Type{TypeRisingStar},
		},
		{
			name: "rank one of three is top 1, 5 and 10 percent",
			in:   Input{TotalPoints: 2500, Rank: 1, RankedUsers: 3},
			want: []Type{TypeTop1Percent, TypeTop5Percent, TypeTop10Percent, TypeSuperfan},
		},
		{
			name: "rank 8 of 100 is top 10 percent only",
			in:   Input{TotalPoints: 50, Rank: 8, RankedUsers: 100},
			want: []Type{TypeTop10Percent},
		},
		{
			name: "rank 5 of 100 is top 5 and 10",
			in:   Input{TotalPoints: 50, Rank: 5, RankedUsers: 100},
			want: []Type{TypeTop5Percent, TypeTop10Percent},
		},
		{
			name: "zero points never ranks",
			in:   Input{TotalPoints: 0, Rank: 1, RankedUsers: 1},
			want: []Type{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.in, th)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPercentileCutoff(t *testing.T) {
	cases := []struct{ n, pct, want int }{
		{n: 0, pct: 1, want: 0},
		{n: 1, pct: 1, want: 1},
		{n: 100, pct: 1, want: 1},
		{n: 101, pct: 1, want: 2},
		{n: 200, pct: 5, want: 10},
		{n: 3, pct: 10, want: 1},
	}
	for _, c := range cases {
		if got := PercentileCutoff(c.n, c.pct); got != c.want {
			t.Fatalf("PercentileCutoff(%d, %d) = %d, want %d", c.n, c.pct, got, c.want)
		}
	}
}

func TestNewTypes_IsIdempotent(t *testing.T) {
	in := Input{TotalPoints: 1200, TotalCheckins: 31, ActiveStreak: 9}
	qualified := Evaluate(in, DefaultThresholds())

	first := NewTypes(nil, qualified)
	if len(first) != 3 {
		t.Fatalf("expected 3 new badges, got %v", first)
	}

	held := make([]Badge, 0, len(first))
	for _, typ := range first {
		held = append(held, Badge{UserID: "u1", Type: typ})
	}
	if again := NewTypes(held, Evaluate(in, DefaultThresholds())); len(again) != 0 {
		t.Fatalf("re-evaluation must not produce duplicates, got %v", again)
	}
}

func TestSortForDisplay(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	got := SortForDisplay([]Badge{
		{Type: TypeLoyalFan, EarnedAt: at},
		{Type: TypeSuperfan, EarnedAt: at},
		{Type: TypeTop1Percent, EarnedAt: at},
	})
	if got[0].Type != TypeTop1Percent || got[2].Type != TypeLoyalFan {
		t.Fatalf("unexpected order: %v", got)
	}
}
