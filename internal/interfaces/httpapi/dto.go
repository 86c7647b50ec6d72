package httpapi

import (
	"time"

	"github.com/riskibarqy/fan-identity/internal/domain/badge"
	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/leaderboard"
	"github.com/riskibarqy/fan-identity/internal/domain/points"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/domain/waitlist"
	"github.com/riskibarqy/fan-identity/internal/usecase"
)

type joinWaitlistRequest struct {
	FirstName string `json:"firstname" validate:"required,max=100"`
	LastName  string `json:"lastname" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

type checkinRequest struct {
	TeamType string `json:"team_type" validate:"omitempty,max=50"`
}

type selectTagRequest struct {
	TagID string `json:"tag_id" validate:"required"`
}

type submitPredictionRequest struct {
	MarketID    string  `json:"market_id" validate:"required"`
	Outcome     *int    `json:"outcome" validate:"required"`
	Amount      float64 `json:"amount" validate:"required"`
	TxHash      string  `json:"tx_hash" validate:"omitempty"`
	BlockNumber *int64  `json:"block_number,omitempty"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=50"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	Country     *string `json:"country" validate:"omitempty,len=2"`
}

type walletRequest struct {
	Address  string `json:"address" validate:"omitempty"`
	Provider string `json:"provider" validate:"omitempty,max=50"`
}

type approveTicketRequest struct {
	Points int64 `json:"points" validate:"gte=0"`
}

type rejectTicketRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type adjustPointsRequest struct {
	Points int64  `json:"points" validate:"gt=0"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type recordResolutionRequest struct {
	WinningOutcome *int `json:"winning_outcome" validate:"required"`
}

type waitlistSignupDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tagDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type userTagDTO struct {
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
	Tag       tagDTO    `json:"tag"`
}

type preferencesDTO struct {
	Sport                  *tagDTO `json:"sport"`
	League                 *tagDTO `json:"league"`
	Club                   *tagDTO `json:"club"`
	HasCompletePreferences bool    `json:"has_complete_preferences"`
}

type ledgerEntryDTO struct {
	ID         string         `json:"id"`
	ActionType string         `json:"action_type"`
	Points     int64          `json:"points"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type pointsSummaryDTO struct {
	TotalPoints int64            `json:"total_points"`
	Recent      []ledgerEntryDTO `json:"recent"`
}

type milestoneDTO struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

type checkinStatusDTO struct {
	State         string         `json:"state"`
	CanCheckin    bool           `json:"can_checkin"`
	LastCheckin   *time.Time     `json:"last_checkin,omitempty"`
	Streak        int            `json:"streak"`
	TotalCheckins int            `json:"total_checkins"`
	Milestones    []milestoneDTO `json:"milestones"`
	NextMilestone *milestoneDTO  `json:"next_milestone,omitempty"`
}

type checkinResultDTO struct {
	Status        checkinStatusDTO `json:"status"`
	Awarded       bool             `json:"awarded"`
	PointsAwarded int64            `json:"points_awarded"`
}

type badgeDTO struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	EarnedAt    time.Time      `json:"earned_at"`
	Metadata    badge.Snapshot `json:"metadata"`
}

type leaderboardEntryDTO struct {
	Rank          int        `json:"rank"`
	UserID        string     `json:"user_id"`
	DisplayName   string     `json:"display_name"`
	Country       string     `json:"country,omitempty"`
	TotalPoints   int64      `json:"total_points"`
	CheckinStreak int        `json:"checkin_streak"`
	Sport         string     `json:"sport,omitempty"`
	League        string     `json:"league,omitempty"`
	Club          string     `json:"club,omitempty"`
	BadgeCount    int        `json:"badge_count"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

type userRankDTO struct {
	Rank       int                 `json:"rank"`
	TotalUsers int                 `json:"total_users"`
	Entry      leaderboardEntryDTO `json:"entry"`
}

type marketDTO struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	SportID         string     `json:"sport_id,omitempty"`
	LeagueID        string     `json:"league_id,omitempty"`
	ClubID          string     `json:"club_id,omitempty"`
	ContractAddress string     `json:"contract_address"`
	ChainID         int64      `json:"chain_id"`
	OutcomeA        string     `json:"outcome_a"`
	OutcomeB        string     `json:"outcome_b"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          time.Time  `json:"ends_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	WinningOutcome  *int       `json:"winning_outcome,omitempty"`
	Status          string     `json:"status"`
}

type predictionDTO struct {
	ID                  string    `json:"id"`
	MarketID            string    `json:"market_id"`
	Outcome             int       `json:"outcome"`
	Amount              float64   `json:"amount"`
	TxHash              string    `json:"tx_hash,omitempty"`
	BlockNumber         *int64    `json:"block_number,omitempty"`
	PointsAwarded       int64     `json:"points_awarded"`
	IsWinningPrediction *bool     `json:"is_winning_prediction,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type resolutionDTO struct {
	Market  marketDTO `json:"market"`
	Settled int       `json:"settled"`
}

type ocrDTO struct {
	FoundKeywords []string `json:"found_keywords"`
	Confidence    float64  `json:"confidence"`
	IsValidTicket bool     `json:"is_valid_ticket"`
}

type ticketDTO struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	FileName        string    `json:"file_name"`
	FileURL         string    `json:"file_url"`
	ContentType     string    `json:"content_type"`
	OCR             *ocrDTO   `json:"ocr,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	PointsAwarded   int64     `json:"points_awarded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type profileDTO struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"display_name"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	Country        string    `json:"country,omitempty"`
	WalletAddress  string    `json:"wallet_address,omitempty"`
	WalletProvider string    `json:"wallet_provider,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type adminUserDTO struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"display_name"`
	TotalPoints int64      `json:"total_points"`
	TicketCount int        `json:"ticket_count"`
	LastCheckin *time.Time `json:"last_checkin,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func waitlistSignupToDTO(v waitlist.Signup) waitlistSignupDTO {
	return waitlistSignupDTO{
		ID:        v.ID,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		Email:     v.Email,
		CreatedAt: v.CreatedAt,
	}
}

func tagToDTO(v tag.Tag) tagDTO {
	return tagDTO{ID: v.ID, Type: string(v.Type), Name: v.Name, ParentID: v.ParentID}
}

func tagPtrToDTO(v *tag.Tag) *tagDTO {
	if v == nil {
		return nil
	}
	out := tagToDTO(*v)
	return &out
}

func userTagsToDTO(items []tag.UserTag) []userTagDTO {
	out := make([]userTagDTO, 0, len(items))
	for _, item := range items {
		out = append(out, userTagDTO{TagID: item.TagID, CreatedAt: item.CreatedAt, Tag: tagToDTO(item.Tag)})
	}
	return out
}

func preferencesToDTO(v tag.Preferences) preferencesDTO {
	return preferencesDTO{
		Sport:                  tagPtrToDTO(v.Sport),
		League:                 tagPtrToDTO(v.League),
		Club:                   tagPtrToDTO(v.Club),
		HasCompletePreferences: v.HasCompletePreferences,
	}
}

func ledgerEntryToDTO(v points.Entry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:         v.ID,
		ActionType: string(v.ActionType),
		Points:     v.Points,
		Metadata:   ledgerMetadataToMap(v.Metadata),
		CreatedAt:  v.CreatedAt,
	}
}

func ledgerMetadataToMap(m points.Metadata) map[string]any {
	switch v := m.(type) {
	case points.CheckinMetadata:
		return map[string]any{"date": v.Date, "team_type": v.TeamType}
	case points.TicketMetadata:
		return map[string]any{"ticket_id": v.TicketID, "auto_approved": v.AutoApproved}
	case points.PredictionMetadata:
		return map[string]any{"market_id": v.MarketID, "prediction_id": v.PredictionID}
	case points.AdjustmentMetadata:
		return map[string]any{"reason": v.Reason, "admin_id": v.AdminID}
	default:
		return nil
	}
}

func milestoneToDTO(v checkin.Milestone) milestoneDTO {
	return milestoneDTO{Days: v.Days, Label: v.Label}
}

func checkinStatusToDTO(v checkin.Status) checkinStatusDTO {
	out := checkinStatusDTO{
		State:         string(v.State),
		CanCheckin:    v.CanCheckin,
		LastCheckin:   v.LastCheckin,
		Streak:        v.Streak,
		TotalCheckins: v.TotalCheckins,
		Milestones:    make([]milestoneDTO, 0, len(v.Milestones)),
	}
	for _, m := range v.Milestones {
		out.Milestones = append(out.Milestones, milestoneToDTO(m))
	}
	if v.NextMilestone != nil {
		next := milestoneToDTO(*v.NextMilestone)
		out.NextMilestone = &next
	}
	return out
}

func badgeToDTO(v badge.Badge) badgeDTO {
	def := badge.Definitions[v.Type]
	return badgeDTO{
		ID:          v.ID,
		Type:        string(v.Type),
		Label:       def.Label,
		Description: def.Description,
		EarnedAt:    v.EarnedAt,
		Metadata:    v.Metadata,
	}
}

func badgesToDTO(items []badge.Badge) []badgeDTO {
	out := make([]badgeDTO, 0, len(items))
	for _, item := range items {
		out = append(out, badgeToDTO(item))
	}
	return out
}

func leaderboardEntryToDTO(rank int, v leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:          rank,
		UserID:        v.UserID,
		DisplayName:   v.DisplayName,
		Country:       v.Country,
		TotalPoints:   v.TotalPoints,
		CheckinStreak: v.CheckinStreak,
		Sport:         v.SportName,
		League:        v.LeagueName,
		Club:          v.ClubName,
		BadgeCount:    v.BadgeCount,
		LastActivity:  v.LastActivity,
	}
}

func userRankToDTO(v usecase.UserRank) userRankDTO {
	return userRankDTO{
		Rank:       v.Rank,
		TotalUsers: v.TotalUsers,
		Entry:      leaderboardEntryToDTO(v.Rank, v.Entry),
	}
}

func marketToDTO(v prediction.Market) marketDTO {
	return marketDTO{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		SportID:         v.SportID,
		LeagueID:        v.LeagueID,
		ClubID:          v.ClubID,
		ContractAddress: v.ContractAddress,
		ChainID:         v.ChainID,
		OutcomeA:        v.OutcomeA,
		OutcomeB:        v.OutcomeB,
		StartsAt:        v.StartsAt,
		EndsAt:          v.EndsAt,
		ResolvedAt:      v.ResolvedAt,
		WinningOutcome:  v.WinningOutcome,
		Status:          string(v.Status),
	}
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:                  v.ID,
		MarketID:            v.MarketID,
		Outcome:             v.Outcome,
		Amount:              v.Amount,
		TxHash:              v.TxHash,
		BlockNumber:         v.BlockNumber,
		PointsAwarded:       v.PointsAwarded,
		IsWinningPrediction: v.IsWinningPrediction,
		CreatedAt:           v.CreatedAt,
	}
}

func ticketToDTO(v ticket.Ticket) ticketDTO {
	out := ticketDTO{
		ID:              v.ID,
		UserID:          v.UserID,
		FileName:        v.FileName,
		FileURL:         v.FileURL,
		ContentType:     v.ContentType,
		Status:          string(v.Status),
		RejectionReason: v.RejectionReason,
		PointsAwarded:   v.PointsAwarded,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	if v.OCR != nil {
		out.OCR = &ocrDTO{
			FoundKeywords: v.OCR.FoundKeywords,
			Confidence:    v.OCR.Confidence,
			IsValidTicket: v.OCR.IsValidTicket,
		}
	}
	return out
}

func ticketsToDTO(items []ticket.Ticket) []ticketDTO {
	out := make([]ticketDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ticketToDTO(item))
	}
	return out
}

func profileToDTO(v profile.Profile) profileDTO {
	return profileDTO{
		UserID:         v.UserID,
		Email:          v.Email,
		DisplayName:    v.Name(),
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		Country:        v.Country,
		WalletAddress:  v.WalletAddress,
		WalletProvider: v.WalletProvider,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func adminUserToDTO(v usecase.AdminUser) adminUserDTO {
	return adminUserDTO{
		UserID:      v.UserID,
		Email:       v.Email,
		DisplayName: v.DisplayName,
		TotalPoints: v.TotalPoints,
		TicketCount: v.TicketCount,
		LastCheckin: v.LastCheckin,
		CreatedAt:   v.CreatedAt,
	}
}
