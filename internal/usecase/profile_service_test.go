package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/fan-identity/internal/domain/checkin"
	"github.com/riskibarqy/fan-identity/internal/domain/profile"
	"github.com/riskibarqy/fan-identity/internal/domain/user"
	"github.com/riskibarqy/fan-identity/internal/infrastructure/wallet"
	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

type fixedWallets struct {
	address string
	calls   int
}

func (w *fixedWallets) NewAddress() (string, error) {
	w.calls++
	return w.address, nil
}

func TestProfileService_GetOrCreateAndUpdate(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	principal := user.Principal{UserID: "user-1", Email: "fan@example.com"}

	created, err := h.profiles.GetOrCreate(t.Context(), principal)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	again, err := h.profiles.GetOrCreate(t.Context(), principal)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if created.ID != again.ID {
		t.Fatalf("expected same profile, got %s and %s", created.ID, again.ID)
	}
	if created.Name() != "fan" {
		t.Fatalf("expected email local part as name, got %q", created.Name())
	}

	displayName := "  Ultra Fan "
	country := "ID"
	updated, err := h.profiles.Update(t.Context(), "user-1", profile.Update{DisplayName: &displayName, Country: &country})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != "Ultra Fan" || updated.Country != "ID" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	bad := "Indonesia"
	if _, err := h.profiles.Update(t.Context(), "user-1", profile.Update{Country: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid country, got %v", err)
	}
	if _, err := h.profiles.Update(t.Context(), "nobody", profile.Update{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileService_CreateWalletIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	wallets := &fixedWallets{address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}
	h.profiles.wallets = wallets

	if _, err := h.profiles.GetOrCreate(t.Context(), user.Principal{UserID: "user-1"}); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	first, err := h.profiles.CreateWallet(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	second, err := h.profiles.CreateWallet(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("create wallet again: %v", err)
	}
	if first.WalletAddress != second.WalletAddress || wallets.calls != 1 {
		t.Fatalf("expected one generated wallet, calls=%d", wallets.calls)
	}
	if first.WalletProvider != profile.WalletProviderCustodial {
		t.Fatalf("unexpected provider: %s", first.WalletProvider)
	}
}

func TestProfileService_CreateWalletStoresKey(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	ks, err := wallet.NewKeystore(wallet.Config{Dir: t.TempDir(), Passphrase: "harness", LightScrypt: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	h.profiles.wallets = ks
	if _, err := h.profiles.GetOrCreate(t.Context(), user.Principal{UserID: "user-1"}); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	item, err := h.profiles.CreateWallet(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if _, err := profile.NormalizeAddress(item.WalletAddress); err != nil {
		t.Fatalf("generated address is not valid: %v", err)
	}
	if item.WalletProvider != profile.WalletProviderCustodial {
		t.Fatalf("unexpected provider: %s", item.WalletProvider)
	}
}

func TestProfileService_CreateWalletWithoutGenerator(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.profiles.GetOrCreate(t.Context(), user.Principal{UserID: "user-1"}); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	if _, err := h.profiles.CreateWallet(t.Context(), "user-1"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	stored, err := h.profiles.Get(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.HasWallet() {
		t.Fatalf("expected no wallet, got %+v", stored)
	}
}

func TestProfileService_LinkWallet(t *testing.T) {
	t.Parallel()

	h := newFanHarness(t, emptySeed(), checkin.DefaultPolicy())
	if _, err := h.profiles.GetOrCreate(t.Context(), user.Principal{UserID: "user-1"}); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	linked, err := h.profiles.LinkWallet(t.Context(), "user-1", strings.ToLower("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), "")
	if err != nil {
		t.Fatalf("link wallet: %v", err)
	}
	if linked.WalletAddress != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" || linked.WalletProvider != profile.WalletProviderExternal {
		t.Fatalf("unexpected linked wallet: %+v", linked)
	}

	if _, err := h.profiles.LinkWallet(t.Context(), "user-1", "0x123", "metamask"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}
