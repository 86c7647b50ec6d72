package httpapi

import "net/http"

func (h *Handler) ListMyTags(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTags")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.svc.Tags.ListUserTags(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "list user tags failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userTagsToDTO(items))
}

func (h *Handler) SelectTag(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectTag")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req selectTagRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.svc.Tags.SelectTag(ctx, principal.UserID, req.TagID)
	if err != nil {
		h.fail(ctx, w, "select tag failed", err, "user_id", principal.UserID, "tag_id", req.TagID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userTagsToDTO(items))
}

func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveTag")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tagID := r.PathValue("tagID")

	items, err := h.svc.Tags.RemoveTag(ctx, principal.UserID, tagID)
	if err != nil {
		h.fail(ctx, w, "remove tag failed", err, "user_id", principal.UserID, "tag_id", tagID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, userTagsToDTO(items))
}

func (h *Handler) GetMyPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyPreferences")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	prefs, err := h.svc.Tags.Preferences(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "get preferences failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, preferencesToDTO(prefs))
}
