package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidWalletAddress = errors.New("invalid wallet address")

// WalletGenerator creates a custodial account and keeps its private key.
type WalletGenerator interface {
	NewAddress() (string, error)
}

// NormalizeAddress validates a hex address and returns its EIP-55 form.
// Mixed-case input must already carry a valid checksum.
func NormalizeAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletAddress, raw)
	}

	checksummed := common.HexToAddress(raw).Hex()
	body := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	mixed := body != strings.ToLower(body) && body != strings.ToUpper(body)
	if mixed && "0x"+body != checksummed {
		return "", fmt.Errorf("%w: bad checksum", ErrInvalidWalletAddress)
	}
	return checksummed, nil
}
