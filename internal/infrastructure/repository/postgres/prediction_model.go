package postgres

import (
	"database/sql"
	"time"
)

type marketTableModel struct {
	ID              string         `db:"id"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	SportID         sql.NullString `db:"sport_id"`
	LeagueID        sql.NullString `db:"league_id"`
	ClubID          sql.NullString `db:"club_id"`
	ContractAddress string         `db:"contract_address"`
	ChainID         int64          `db:"chain_id"`
	OutcomeA        string         `db:"outcome_a"`
	OutcomeB        string         `db:"outcome_b"`
	StartsAt        time.Time      `db:"starts_at"`
	EndsAt          time.Time      `db:"ends_at"`
	ResolvedAt      sql.NullTime   `db:"resolved_at"`
	WinningOutcome  sql.NullInt64  `db:"winning_outcome"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type predictionTableModel struct {
	ID                  string        `db:"id"`
	UserID              string        `db:"user_id"`
	MarketID            string        `db:"market_id"`
	Outcome             int           `db:"outcome"`
	Amount              float64       `db:"amount"`
	TxHash              string        `db:"tx_hash"`
	BlockNumber         sql.NullInt64 `db:"block_number"`
	PointsAwarded       int64         `db:"points_awarded"`
	IsWinningPrediction sql.NullBool  `db:"is_winning_prediction"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}
