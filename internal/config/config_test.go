package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("SEED_DEMO_DATA", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SeedDemoData {
		t.Fatalf("expected demo seed disabled in prod by default")
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected StorageDriver: %q", cfg.StorageDriver)
	}
	if cfg.Checkin.RewardPoints != 10 {
		t.Fatalf("unexpected check-in reward: %d", cfg.Checkin.RewardPoints)
	}
	if cfg.Checkin.Location != time.UTC {
		t.Fatalf("expected UTC check-in location, got %v", cfg.Checkin.Location)
	}
	if cfg.BadgeThresholds.SuperfanPoints != 1000 {
		t.Fatalf("unexpected superfan threshold: %d", cfg.BadgeThresholds.SuperfanPoints)
	}
	if cfg.PredictionRewardPoints != 50 {
		t.Fatalf("unexpected prediction reward: %d", cfg.PredictionRewardPoints)
	}
	if !cfg.TagRemoveCascade {
		t.Fatalf("expected tag cascade enabled by default")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected ShutdownTimeout: %s", cfg.ShutdownTimeout)
	}

	t.Setenv("APP_ENV", EnvDev)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SeedDemoData {
		t.Fatalf("expected demo seed enabled in dev by default")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORAGE_DRIVER")
	}

	t.Setenv("STORAGE_DRIVER", "Postgres")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected StorageDriver: %q", cfg.StorageDriver)
	}
}

func TestLoad_CheckinTimezone(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CHECKIN_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Checkin.Location.String() != "Asia/Jakarta" {
		t.Fatalf("unexpected location: %v", cfg.Checkin.Location)
	}

	t.Setenv("CHECKIN_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown CHECKIN_TIMEZONE")
	}
}

func TestLoad_RejectsNonPositiveRules(t *testing.T) {
	cases := map[string]string{
		"CHECKIN_REWARD_POINTS":        "0",
		"BADGE_SUPERFAN_POINTS":        "-1",
		"BADGE_WORKERS":                "0",
		"BADGE_RISING_STAR_WINDOW":     "0s",
		"PREDICTION_REWARD_POINTS":     "-5",
		"RATE_LIMIT_BURST":             "0",
		"ANUBIS_CIRCUIT_FAILURE_COUNT": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_AuthDevBypassOnlyInDev(t *testing.T) {
	t.Setenv("AUTH_DEV_BYPASS", "true")

	t.Setenv("APP_ENV", EnvDev)
	if _, err := Load(); err != nil {
		t.Fatalf("expected dev bypass to load in dev: %v", err)
	}

	t.Setenv("APP_ENV", EnvStage)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for AUTH_DEV_BYPASS outside dev")
	}
}

func TestLoad_CTARequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CTA_ENABLED", "true")
	t.Setenv("CTA_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when CTA_ENABLED=true without CTA_BASE_URL")
	}

	t.Setenv("CTA_BASE_URL", "https://cta.example.com")
	t.Setenv("CTA_RETRIES", "4")
	t.Setenv("CTA_CIRCUIT_OPEN_TIMEOUT", "45s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CTARetries != 4 {
		t.Fatalf("unexpected CTARetries: %d", cfg.CTARetries)
	}
	if cfg.CTACircuit.OpenTimeout != 45*time.Second {
		t.Fatalf("unexpected CTA circuit open timeout: %s", cfg.CTACircuit.OpenTimeout)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	got := splitCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected split: %#v", got)
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("TRUSTED_PROXY_CIDRS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Fatalf("expected no trusted proxies by default, got %v", cfg.TrustedProxies)
	}

	t.Setenv("TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 172.16.0.9, fdaa::/16")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := []string{"10.0.0.0/8", "172.16.0.9/32", "fdaa::/16"}
	if len(cfg.TrustedProxies) != len(want) {
		t.Fatalf("unexpected trusted proxies: %v", cfg.TrustedProxies)
	}
	for i, prefix := range cfg.TrustedProxies {
		if prefix.String() != want[i] {
			t.Fatalf("trusted proxy %d = %s, want %s", i, prefix, want[i])
		}
	}

	t.Setenv("TRUSTED_PROXY_CIDRS", "10.0.0.0/8,not-a-cidr")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid TRUSTED_PROXY_CIDRS entry")
	}
}

func TestLoad_WalletKeystore(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WALLET_KEYSTORE_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WalletKeystoreDir != "" {
		t.Fatalf("expected custodial wallets disabled by default")
	}

	t.Setenv("WALLET_KEYSTORE_DIR", "/var/lib/fan-identity/keystore")
	t.Setenv("WALLET_KEYSTORE_PASSPHRASE", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WALLET_KEYSTORE_DIR is set without a passphrase")
	}

	t.Setenv("WALLET_KEYSTORE_PASSPHRASE", "s3cret")
	t.Setenv("WALLET_KEYSTORE_LIGHT_SCRYPT", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WalletLightScrypt || cfg.WalletKeystorePassphrase != "s3cret" {
		t.Fatalf("unexpected wallet config: dir=%s light=%v", cfg.WalletKeystoreDir, cfg.WalletLightScrypt)
	}

	t.Setenv("APP_ENV", EnvProd)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for light scrypt in prod")
	}
}
