package memory

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
)

const DemoUserID = "demo-user-id"

// Seed is the demo dataset loaded into the memory store.
type Seed struct {
	Tags     []tag.Tag
	Markets  []prediction.Market
	Profiles []profile.Profile
	Ledger   []points.Entry
	UserTags []tag.UserTag
}

type demoFan struct {
	profile     profile.Profile
	streak      int
	totalPoints int64
	lastActive  time.Duration
	clubID      string
}

// SeedDemo builds the reference catalog, a few markets and the showcase
// fans. extraFans adds gofakeit-generated fans, reproducible for a seed.
func SeedDemo(now time.Time, extraFans int, fakeSeed uint64) Seed {
	now = now.UTC()
	catalog := tag.DefaultCatalog(now)
	byID := make(map[string]tag.Tag, len(catalog))
	for _, t := range catalog {
		byID[t.ID] = t
	}

	fans := []demoFan{
		{
			profile:     profile.Profile{UserID: "user-1", DisplayName: "SportsFan123", Email: "fan1@example.com", FirstName: "John", LastName: "Doe", Country: "US"},
			streak:      15,
			totalPoints: 2500,
			clubID:      "club-1",
		},
		{
			profile:     profile.Profile{UserID: "user-2", DisplayName: "BasketballKing", Email: "fan2@example.com", FirstName: "Jane", LastName: "Smith", Country: "CA"},
			streak:      8,
			totalPoints: 1800,
			lastActive:  24 * time.Hour,
			clubID:      "club-2",
		},
		{
			profile:     profile.Profile{UserID: DemoUserID, DisplayName: "Demo User", Email: "demo@sportsx.com", FirstName: "Demo", LastName: "User", Country: "US"},
			streak:      1,
			totalPoints: 110,
			clubID:      "club-3",
		},
	}

	faker := gofakeit.New(fakeSeed)
	clubs := make([]tag.Tag, 0)
	for _, t := range catalog {
		if t.Type == tag.TypeClub {
			clubs = append(clubs, t)
		}
	}
	for i := range extraFans {
		first, last := faker.FirstName(), faker.LastName()
		fans = append(fans, demoFan{
			profile: profile.Profile{
				UserID:      fmt.Sprintf("fan-%04d", i+1),
				DisplayName: faker.Username(),
				Email:       faker.Email(),
				FirstName:   first,
				LastName:    last,
				Country:     faker.CountryAbr(),
			},
			streak:      faker.IntRange(0, 10),
			totalPoints: int64(faker.IntRange(10, 150) * 10),
			lastActive:  time.Duration(faker.IntRange(0, 72)) * time.Hour,
			clubID:      clubs[i%len(clubs)].ID,
		})
	}

	seed := Seed{Tags: catalog, Markets: SeedMarkets(now)}
	for _, fan := range fans {
		p := fan.profile
		p.ID = "profile-" + p.UserID
		p.CreatedAt = now.Add(-30 * 24 * time.Hour)
		p.UpdatedAt = p.CreatedAt
		seed.Profiles = append(seed.Profiles, p)

		seed.Ledger = append(seed.Ledger, seedLedger(p.UserID, fan, now)...)

		chain, err := tag.Ancestors(byID, byID[fan.clubID])
		if err != nil {
			continue
		}
		for _, t := range chain {
			seed.UserTags = append(seed.UserTags, tag.UserTag{UserID: p.UserID, TagID: t.ID, CreatedAt: p.CreatedAt, Tag: t})
		}
	}
	return seed
}

// seedLedger spreads a fan's total over a check-in streak ending at their
// last activity, a ticket, and an adjustment for the remainder.
func seedLedger(userID string, fan demoFan, now time.Time) []points.Entry {
	last := now.Add(-fan.lastActive)
	entries := make([]points.Entry, 0, fan.streak+2)
	remaining := fan.totalPoints
	seq := 0
	next := func() string {
		seq++
		return fmt.Sprintf("seed-%s-%04d", userID, seq)
	}

	// oldest first so the ledger stays in append order
	for day := fan.streak - 1; day >= 0; day-- {
		at := last.AddDate(0, 0, -day)
		entries = append(entries, points.Entry{
			ID:         next(),
			UserID:     userID,
			ActionType: points.ActionDailyCheckin,
			Points:     10,
			Metadata:   points.CheckinMetadata{Date: at.Format("2006-01-02")},
			CreatedAt:  at,
		})
		remaining -= 10
	}

	if remaining >= 100 {
		entries = append(entries, points.Entry{
			ID:         next(),
			UserID:     userID,
			ActionType: points.ActionTicketUpload,
			Points:     100,
			Metadata:   points.TicketMetadata{TicketID: "seed-ticket-" + userID, AutoApproved: true},
			CreatedAt:  last.Add(-2 * time.Minute),
		})
		remaining -= 100
	}
	if remaining > 0 {
		entries = append(entries, points.Entry{
			ID:         next(),
			UserID:     userID,
			ActionType: points.ActionAdminAdjustment,
			Points:     remaining,
			Metadata:   points.AdjustmentMetadata{Reason: "historical balance", AdminID: "seed"},
			CreatedAt:  last.Add(-3 * time.Minute),
		})
	}
	return entries
}

func SeedMarkets(now time.Time) []prediction.Market {
	return []prediction.Market{
		{
			ID:              "market-1",
			Title:           "Patriots vs Jets",
			Description:     "Who wins this week's divisional game?",
			SportID:         "sport-1",
			LeagueID:        "league-1",
			ClubID:          "club-1",
			ContractAddress: "0x0000000000000000000000000000000000000001",
			ChainID:         prediction.DefaultChainID,
			OutcomeA:        "Patriots",
			OutcomeB:        "Jets",
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(6 * 24 * time.Hour),
			Status:          prediction.StatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              "market-2",
			Title:           "Lakers vs Celtics",
			Description:     "Rivalry night at the Crypto.com Arena.",
			SportID:         "sport-2",
			LeagueID:        "league-2",
			ClubID:          "club-2",
			ContractAddress: "0x0000000000000000000000000000000000000002",
			ChainID:         prediction.DefaultChainID,
			OutcomeA:        "Lakers",
			OutcomeB:        "Celtics",
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(3 * 24 * time.Hour),
			Status:          prediction.StatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              "market-3",
			Title:           "Arsenal vs Chelsea",
			Description:     "North vs west London derby.",
			SportID:         "sport-3",
			LeagueID:        "league-3",
			ClubID:          "club-3",
			ContractAddress: "0x0000000000000000000000000000000000000003",
			ChainID:         prediction.DefaultChainID,
			OutcomeA:        "Arsenal",
			OutcomeB:        "Chelsea",
			StartsAt:        now.Add(-24 * time.Hour),
			EndsAt:          now.Add(10 * 24 * time.Hour),
			Status:          prediction.StatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}
