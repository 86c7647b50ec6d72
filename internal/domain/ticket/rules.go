package ticket

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNotPending      = errors.New("ticket is not pending review")
	ErrDuplicate       = errors.New("ticket already uploaded")
	ErrStatusChanged   = errors.New("ticket status changed")
)

func ValidateUpload(fileName, contentType string, size int) error {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Errorf("file name is required")
	}
	if _, ok := AllowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	return nil
}

// Hash is the hex SHA-256 of the file content, used for duplicate detection.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// StoragePath is the object key a ticket file is stored under.
func StoragePath(userID, fileName string, at time.Time) string {
	return path.Join(userID, fmt.Sprintf("%d_%s", at.UnixMilli(), path.Base(fileName)))
}

// Approve moves a pending ticket to approved with points awarded.
func (t Ticket) Approve(points int64, now time.Time) (Ticket, error) {
	if t.Status != StatusPending {
		return t, fmt.Errorf("%w: status=%s", ErrNotPending, t.Status)
	}
	if points < 0 {
		return t, fmt.Errorf("points must not be negative")
	}
	t.Status = StatusApproved
	t.PointsAwarded = points
	t.RejectionReason = ""
	t.UpdatedAt = now
	return t, nil
}

func (t Ticket) Reject(reason string, now time.Time) (Ticket, error) {
	if t.Status != StatusPending {
		return t, fmt.Errorf("%w: status=%s", ErrNotPending, t.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return t, fmt.Errorf("rejection reason is required")
	}
	t.Status = StatusRejected
	t.RejectionReason = reason
	t.UpdatedAt = now
	return t, nil
}
