package prediction

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusResolved  Status = "resolved"
	StatusCancelled Status = "cancelled"
)

const (
	OutcomeA = 0
	OutcomeB = 1
)

// DefaultChainID is Base mainnet.
const DefaultChainID int64 = 8453

type Market struct {
	ID              string
	Title           string
	Description     string
	SportID         string
	LeagueID        string
	ClubID          string
	ContractAddress string
	ChainID         int64
	OutcomeA        string
	OutcomeB        string
	StartsAt        time.Time
	EndsAt          time.Time
	ResolvedAt      *time.Time
	WinningOutcome  *int
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen reports whether submissions are accepted at now.
func (m Market) IsOpen(now time.Time) bool {
	return m.Status == StatusActive && !now.Before(m.StartsAt) && !now.After(m.EndsAt)
}

func (m Market) OutcomeLabel(outcome int) string {
	if outcome == OutcomeB {
		return m.OutcomeB
	}
	return m.OutcomeA
}

type Prediction struct {
	ID                  string
	UserID              string
	MarketID            string
	Outcome             int
	Amount              float64
	TxHash              string
	BlockNumber         *int64
	PointsAwarded       int64
	IsWinningPrediction *bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Submission is an unvalidated prediction request.
type Submission struct {
	UserID      string
	MarketID    string
	Outcome     int
	Amount      float64
	TxHash      string
	BlockNumber *int64
}

// MarketFilter narrows markets by tag. Empty fields are ignored.
type MarketFilter struct {
	SportID  string
	LeagueID string
	ClubID   string
}

func (f MarketFilter) Matches(m Market) bool {
	if f.SportID != "" && m.SportID != f.SportID {
		return false
	}
	if f.LeagueID != "" && m.LeagueID != f.LeagueID {
		return false
	}
	if f.ClubID != "" && m.ClubID != f.ClubID {
		return false
	}
	return true
}
