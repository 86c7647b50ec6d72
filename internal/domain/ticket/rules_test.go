package ticket

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateUpload(t *testing.T) {
	if err := ValidateUpload("t.png", "image/png", 1024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateUpload("t.gif", "image/gif", 1024); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if err := ValidateUpload("t.pdf", "application/pdf", MaxFileSize+1); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if err := ValidateUpload("t.pdf", "application/pdf", 0); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestHash_IsStable(t *testing.T) {
	a := Hash([]byte("same"))
	if a != Hash([]byte("same")) || a == Hash([]byte("other")) {
		t.Fatalf("hash must be content addressed")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}

func TestKeywordScanner(t *testing.T) {
	scanner := NewKeywordScanner()

	content := append([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, []byte("Super Bowl Ticket, Section A, Row 5, Seat 12")...)
	content = append(content, 0xff, 0x00)

	ocr, err := scanner.Scan(t.Context(), "image/png", content)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if !ocr.IsValidTicket || ocr.Confidence != 1 {
		t.Fatalf("expected valid ticket with full confidence, got %+v", ocr)
	}
	if !strings.Contains(ocr.Text, "Seat 12") {
		t.Fatalf("expected extracted text, got %q", ocr.Text)
	}

	weak := scanner.ScanText("Concert Row 5")
	if weak.IsValidTicket {
		t.Fatalf("one keyword must not pass, got %+v", weak)
	}
	if weak.Confidence != 0.25 {
		t.Fatalf("confidence = %v, want 0.25", weak.Confidence)
	}
}

func TestTicketTransitions(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pending := Ticket{ID: "t1", Status: StatusPending}

	approved, err := pending.Approve(100, now)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved || approved.PointsAwarded != 100 {
		t.Fatalf("unexpected approved ticket: %+v", approved)
	}
	if _, err := approved.Reject("blurry", now); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}

	rejected, err := pending.Reject("  blurry  ", now)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectionReason != "blurry" {
		t.Fatalf("unexpected reason %q", rejected.RejectionReason)
	}
	if _, err := pending.Reject(" ", now); err == nil {
		t.Fatalf("expected error for empty reason")
	}
}
