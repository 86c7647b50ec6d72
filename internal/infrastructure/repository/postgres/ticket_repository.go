package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fan-identity/internal/domain/ticket"
	qb "github.com/riskibarqy/fan-identity/internal/platform/querybuilder"
)

type TicketRepository struct {
	db *sqlx.DB
}

func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t ticket.Ticket) error {
	ocr, err := encodeOCR(t.OCR)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("tickets").
		Columns("id", "user_id", "file_name", "file_url", "file_hash", "content_type", "ocr", "status", "rejection_reason", "points_awarded", "created_at", "updated_at").
		Values(t.ID, t.UserID, t.FileName, t.FileURL, t.FileHash, t.ContentType, ocr, string(t.Status), nullString(t.RejectionReason), t.PointsAwarded, t.CreatedAt, t.UpdatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert ticket query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: hash %s", ticket.ErrDuplicate, t.FileHash)
		}
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Transition guards the write with the expected status so concurrent
// reviews of one ticket cannot both succeed.
func (r *TicketRepository) Transition(ctx context.Context, t ticket.Ticket, from ticket.Status) error {
	ocr, err := encodeOCR(t.OCR)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("tickets").
		Set("status", string(t.Status)).
		Set("ocr", ocr).
		Set("rejection_reason", nullString(t.RejectionReason)).
		Set("points_awarded", t.PointsAwarded).
		Set("updated_at", t.UpdatedAt).
		Where(qb.Eq("id", t.ID), qb.Eq("status", string(from))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update ticket query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ticket %s: %w", t.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update ticket: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: ticket %s is no longer %s", ticket.ErrStatusChanged, t.ID, from)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID string) (ticket.Ticket, bool, error) {
	return r.getOne(ctx, qb.Eq("id", ticketID))
}

func (r *TicketRepository) GetByHash(ctx context.Context, fileHash string) (ticket.Ticket, bool, error) {
	return r.getOne(ctx, qb.Eq("file_hash", fileHash))
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]ticket.Ticket, error) {
	return r.list(ctx, qb.Eq("user_id", userID))
}

// List returns every ticket when status is empty.
func (r *TicketRepository) List(ctx context.Context, status ticket.Status) ([]ticket.Ticket, error) {
	if status == "" {
		return r.list(ctx)
	}
	return r.list(ctx, qb.Eq("status", string(status)))
}

func (r *TicketRepository) getOne(ctx context.Context, condition qb.Condition) (ticket.Ticket, bool, error) {
	query, args, err := qb.Select("*").From("tickets").Where(condition).Limit(1).ToSQL()
	if err != nil {
		return ticket.Ticket{}, false, fmt.Errorf("build get ticket query: %w", err)
	}

	var row ticketTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ticket.Ticket{}, false, nil
		}
		return ticket.Ticket{}, false, fmt.Errorf("get ticket: %w", err)
	}

	t, err := ticketFromRow(row)
	if err != nil {
		return ticket.Ticket{}, false, err
	}
	return t, true, nil
}

func (r *TicketRepository) list(ctx context.Context, conditions ...qb.Condition) ([]ticket.Ticket, error) {
	query, args, err := qb.Select("*").From("tickets").
		Where(conditions...).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tickets query: %w", err)
	}

	var rows []ticketTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tickets: %w", err)
	}

	out := make([]ticket.Ticket, 0, len(rows))
	for _, row := range rows {
		t, err := ticketFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func encodeOCR(ocr *ticket.OCR) ([]byte, error) {
	if ocr == nil {
		return nil, nil
	}
	raw, err := sonic.Marshal(ocr)
	if err != nil {
		return nil, fmt.Errorf("encode ticket ocr: %w", err)
	}
	return raw, nil
}

func ticketFromRow(row ticketTableModel) (ticket.Ticket, error) {
	t := ticket.Ticket{
		ID:              row.ID,
		UserID:          row.UserID,
		FileName:        row.FileName,
		FileURL:         row.FileURL,
		FileHash:        row.FileHash,
		ContentType:     row.ContentType,
		Status:          ticket.Status(row.Status),
		RejectionReason: row.RejectionReason.String,
		PointsAwarded:   row.PointsAwarded,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if len(row.OCR) > 0 {
		var ocr ticket.OCR
		if err := sonic.Unmarshal(row.OCR, &ocr); err != nil {
			return ticket.Ticket{}, fmt.Errorf("decode ticket %s ocr: %w", row.ID, err)
		}
		t.OCR = &ocr
	}
	return t, nil
}
