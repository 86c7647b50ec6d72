package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

type MarketRepository struct {
	db *sqlx.DB
}

func NewMarketRepository(db *sqlx.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func (r *MarketRepository) List(ctx context.Context, filter prediction.MarketFilter) ([]prediction.Market, error) {
	conditions := make([]qb.Condition, 0, 3)
	if filter.SportID != "" {
		conditions = append(conditions, qb.Eq("sport_id", filter.SportID))
	}
	if filter.LeagueID != "" {
		conditions = append(conditions, qb.Eq("league_id", filter.LeagueID))
	}
	if filter.ClubID != "" {
		conditions = append(conditions, qb.Eq("club_id", filter.ClubID))
	}

	query, args, err := qb.Select("*").From("prediction_markets").
		Where(conditions...).
		OrderBy("ends_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select markets query: %w", err)
	}

	var rows []marketTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select markets: %w", err)
	}

	out := make([]prediction.Market, 0, len(rows))
	for _, row := range rows {
		out = append(out, marketFromRow(row))
	}
	return out, nil
}

func (r *MarketRepository) GetByID(ctx context.Context, marketID string) (prediction.Market, bool, error) {
	query, args, err := qb.Select("*").From("prediction_markets").Where(qb.Eq("id", marketID)).ToSQL()
	if err != nil {
		return prediction.Market{}, false, fmt.Errorf("build get market query: %w", err)
	}

	var row marketTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Market{}, false, nil
		}
		return prediction.Market{}, false, fmt.Errorf("get market %s: %w", marketID, err)
	}
	return marketFromRow(row), true, nil
}

func (r *MarketRepository) MarkResolved(ctx context.Context, marketID string, winningOutcome int, resolvedAt time.Time) error {
	query, args, err := qb.Update("prediction_markets").
		Set("status", string(prediction.StatusResolved)).
		Set("winning_outcome", winningOutcome).
		Set("resolved_at", resolvedAt).
		Set("updated_at", resolvedAt).
		Where(qb.Eq("id", marketID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build resolve market query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve market %s: %w", marketID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected resolve market: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("market %s not found", marketID)
	}
	return nil
}

// Upsert is used by the bootstrap seed.
func (r *MarketRepository) Upsert(ctx context.Context, markets []prediction.Market) error {
	if len(markets) == 0 {
		return nil
	}

	insert := qb.InsertInto("prediction_markets").Columns(
		"id", "title", "description", "sport_id", "league_id", "club_id",
		"contract_address", "chain_id", "outcome_a", "outcome_b",
		"starts_at", "ends_at", "status", "created_at", "updated_at",
	)
	for _, m := range markets {
		insert.Values(
			m.ID, m.Title, m.Description, nullString(m.SportID), nullString(m.LeagueID), nullString(m.ClubID),
			m.ContractAddress, m.ChainID, m.OutcomeA, m.OutcomeB,
			m.StartsAt, m.EndsAt, string(m.Status), m.CreatedAt, m.UpdatedAt,
		)
	}
	query, args, err := insert.Suffix("ON CONFLICT (id) DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert markets query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert markets: %w", err)
	}
	return nil
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.Prediction) error {
	query, args, err := qb.InsertInto("predictions").
		Columns("id", "user_id", "market_id", "outcome", "amount", "tx_hash", "block_number", "points_awarded", "created_at", "updated_at").
		Values(p.ID, p.UserID, p.MarketID, p.Outcome, p.Amount, p.TxHash, nullInt64(p.BlockNumber), p.PointsAwarded, p.CreatedAt, p.UpdatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("prediction for user %s market %s already exists: %w", p.UserID, p.MarketID, err)
		}
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) Delete(ctx context.Context, predictionID string) error {
	query, args, err := qb.DeleteFrom("predictions").Where(qb.Eq("id", predictionID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete prediction %s: %w", predictionID, err)
	}
	return nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions for user %s: %w", userID, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) GetByUserAndMarket(ctx context.Context, userID, marketID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("market_id", marketID)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}
	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) SettleMarket(ctx context.Context, marketID string, winningOutcome int, updatedAt time.Time) (int, error) {
	query, args, err := qb.Update("predictions").
		SetExpr("is_winning_prediction", "(outcome = ?)", winningOutcome).
		Set("updated_at", updatedAt).
		Where(qb.Eq("market_id", marketID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build settle predictions query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("settle predictions for market %s: %w", marketID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected settle predictions: %w", err)
	}
	return int(affected), nil
}

func marketFromRow(row marketTableModel) prediction.Market {
	m := prediction.Market{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description,
		SportID:         row.SportID.String,
		LeagueID:        row.LeagueID.String,
		ClubID:          row.ClubID.String,
		ContractAddress: row.ContractAddress,
		ChainID:         row.ChainID,
		OutcomeA:        row.OutcomeA,
		OutcomeB:        row.OutcomeB,
		StartsAt:        row.StartsAt,
		EndsAt:          row.EndsAt,
		ResolvedAt:      timePtr(row.ResolvedAt),
		Status:          prediction.Status(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.WinningOutcome.Valid {
		outcome := int(row.WinningOutcome.Int64)
		m.WinningOutcome = &outcome
	}
	return m
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	p := prediction.Prediction{
		ID:            row.ID,
		UserID:        row.UserID,
		MarketID:      row.MarketID,
		Outcome:       row.Outcome,
		Amount:        row.Amount,
		TxHash:        row.TxHash,
		BlockNumber:   int64Ptr(row.BlockNumber),
		PointsAwarded: row.PointsAwarded,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.IsWinningPrediction.Valid {
		won := row.IsWinningPrediction.Bool
		p.IsWinningPrediction = &won
	}
	return p
}
