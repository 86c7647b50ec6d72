package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type Config struct {
	Dir        string
	Passphrase string
	// LightScrypt uses cheap key derivation. Only for dev and tests.
	LightScrypt bool
}

// Keystore provisions custodial accounts. Every private key is written to
// Dir as an encrypted key file before its address is handed out.
type Keystore struct {
	store      *keystore.KeyStore
	passphrase string
	logger     *logging.Logger
}

func NewKeystore(cfg Config, logger *logging.Logger) (*Keystore, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, errors.New("keystore dir is required")
	}
	if cfg.Passphrase == "" {
		return nil, errors.New("keystore passphrase is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
	if cfg.LightScrypt {
		scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
	}

	return &Keystore{
		store:      keystore.NewKeyStore(dir, scryptN, scryptP),
		passphrase: cfg.Passphrase,
		logger:     logger,
	}, nil
}

func (k *Keystore) NewAddress() (string, error) {
	account, err := k.store.NewAccount(k.passphrase)
	if err != nil {
		return "", fmt.Errorf("create keystore account: %w", err)
	}

	address := account.Address.Hex()
	k.logger.Info("custodial key stored", "address", address)
	return address, nil
}
