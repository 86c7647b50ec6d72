package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fan-identity/internal/domain/leaderboard"
	"github.com/riskibarqy/fan-identity/internal/domain/prediction"
	"github.com/riskibarqy/fan-identity/internal/domain/tag"
	"github.com/riskibarqy/fan-identity/internal/usecase"
)

func (h *Handler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinWaitlist")
	defer span.End()

	var req joinWaitlistRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	signup, err := h.svc.Waitlist.Join(ctx, usecase.JoinWaitlistInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.fail(ctx, w, "join waitlist failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, waitlistSignupToDTO(signup))
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTags")
	defer span.End()

	tagType := queryString(r, "type")
	parentID := queryString(r, "parent_id")

	var (
		items []tag.Tag
		err   error
	)
	if tagType == "" && parentID == "" {
		items, err = h.svc.Tags.ListTags(ctx)
	} else {
		items, err = h.svc.Tags.TagsByType(ctx, tagType, parentID)
	}
	if err != nil {
		h.fail(ctx, w, "list tags failed", err, "type", tagType, "parent_id", parentID)
		return
	}

	out := make([]tagDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tagToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	filter, err := leaderboardFilterFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.svc.Leaderboard.Rank(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "rank leaderboard failed", err)
		return
	}

	out := make([]leaderboardEntryDTO, 0, len(entries))
	for i, entry := range entries {
		out = append(out, leaderboardEntryToDTO(i+1, entry))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMarkets")
	defer span.End()

	markets, err := h.svc.Predictions.ListMarkets(ctx, prediction.MarketFilter{
		SportID:  queryString(r, "sport_id"),
		LeagueID: queryString(r, "league_id"),
		ClubID:   queryString(r, "club_id"),
	})
	if err != nil {
		h.fail(ctx, w, "list markets failed", err)
		return
	}

	out := make([]marketDTO, 0, len(markets))
	for _, m := range markets {
		out = append(out, marketToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func leaderboardFilterFromQuery(r *http.Request) (leaderboard.Filter, error) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return leaderboard.Filter{}, err
	}
	return leaderboard.Filter{
		Sport:  queryString(r, "sport"),
		League: queryString(r, "league"),
		Club:   queryString(r, "club"),
		Limit:  limit,
	}, nil
}
