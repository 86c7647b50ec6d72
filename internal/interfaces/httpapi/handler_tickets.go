package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	"github.com/riskibarqy/fan-identity/internal/usecase"
)

const ticketFormField = "file"

func (h *Handler) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTickets")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.svc.Tickets.ListByUser(ctx, principal.UserID)
	if err != nil {
		h.fail(ctx, w, "list tickets failed", err, "user_id", principal.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, ticketsToDTO(items))
}

// UploadTicket accepts a multipart form with the ticket under "file".
func (h *Handler) UploadTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadTicket")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ticket.MaxFileSize+(1<<20))
	file, header, err := r.FormFile(ticketFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, ticket.ErrFileTooLarge))
			return
		}
		writeError(ctx, w, fmt.Errorf("%w: multipart field %q is required", usecase.ErrInvalidInput, ticketFormField))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, ticket.MaxFileSize+1))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read upload: %v", usecase.ErrInvalidInput, err))
		return
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	item, err := h.svc.Tickets.Upload(ctx, usecase.UploadTicketInput{
		UserID:      principal.UserID,
		FileName:    header.Filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		h.fail(ctx, w, "upload ticket failed", err, "user_id", principal.UserID, "file_name", header.Filename)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, ticketToDTO(item))
}
