package prediction

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrInvalidOutcome     = errors.New("outcome must be 0 or 1")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrInvalidTxHash      = errors.New("invalid transaction hash")
	ErrMarketClosed       = errors.New("market is not active")
	ErrOutsideWindow      = errors.New("market is not accepting predictions at this time")
	ErrAlreadyResolved    = errors.New("market already resolved")
	ErrInvalidBlockNumber = errors.New("block number must not be negative")
)

func ValidOutcome(outcome int) bool {
	return outcome == OutcomeA || outcome == OutcomeB
}

// NormalizeTxHash validates a 0x-prefixed 32-byte hash and returns it in
// lower-case canonical form. An empty hash is allowed.
func NormalizeTxHash(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	decoded, err := hexutil.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTxHash, err)
	}
	if len(decoded) != common.HashLength {
		return "", fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidTxHash, common.HashLength, len(decoded))
	}
	return common.BytesToHash(decoded).Hex(), nil
}

// ValidateSubmission checks a submission against the market at now.
func ValidateSubmission(m Market, sub Submission, now time.Time) error {
	if !ValidOutcome(sub.Outcome) {
		return fmt.Errorf("%w: got %d", ErrInvalidOutcome, sub.Outcome)
	}
	if math.IsNaN(sub.Amount) || math.IsInf(sub.Amount, 0) || sub.Amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, sub.Amount)
	}
	if _, err := NormalizeTxHash(sub.TxHash); err != nil {
		return err
	}
	if sub.BlockNumber != nil && *sub.BlockNumber < 0 {
		return ErrInvalidBlockNumber
	}
	if m.Status != StatusActive {
		return fmt.Errorf("%w: status=%s", ErrMarketClosed, m.Status)
	}
	if !m.IsOpen(now) {
		return fmt.Errorf("%w: window=[%s, %s]", ErrOutsideWindow, m.StartsAt.Format(time.RFC3339), m.EndsAt.Format(time.RFC3339))
	}
	return nil
}

// ValidateResolution checks that the market can record winningOutcome.
func ValidateResolution(m Market, winningOutcome int) error {
	if !ValidOutcome(winningOutcome) {
		return fmt.Errorf("%w: got %d", ErrInvalidOutcome, winningOutcome)
	}
	if m.Status == StatusResolved {
		return ErrAlreadyResolved
	}
	if m.Status == StatusCancelled {
		return fmt.Errorf("%w: status=%s", ErrMarketClosed, m.Status)
	}
	return nil
}

// IsWinning reports whether p picked winningOutcome.
func IsWinning(p Prediction, winningOutcome int) bool {
	return p.Outcome == winningOutcome
}
