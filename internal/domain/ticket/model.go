package ticket

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const (
	MaxFileSize         = 10 << 20
	DefaultRewardPoints = 100
	MinConfidence       = 0.6
)

var AllowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// OCR is the text recognition result of an uploaded image.
type OCR struct {
	Text          string   `json:"text"`
	FoundKeywords []string `json:"found_keywords"`
	Confidence    float64  `json:"confidence"`
	IsValidTicket bool     `json:"is_valid_ticket"`
}

type Ticket struct {
	ID              string
	UserID          string
	FileName        string
	FileURL         string
	FileHash        string
	ContentType     string
	OCR             *OCR
	Status          Status
	RejectionReason string
	PointsAwarded   int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Scanner extracts ticket text from an uploaded image.
type Scanner interface {
	Scan(ctx context.Context, contentType string, content []byte) (OCR, error)
}
