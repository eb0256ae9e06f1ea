package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("COD_PINCODES", "")
	t.Setenv("USER_TOKEN_TTL", "")

	cfg := Load()
	if cfg.HTTPAddr != ":8081" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.UserTokenTTL != 7*24*time.Hour {
		t.Fatalf("UserTokenTTL = %s", cfg.UserTokenTTL)
	}
	if cfg.AdminTokenTTL != 24*time.Hour {
		t.Fatalf("AdminTokenTTL = %s", cfg.AdminTokenTTL)
	}
	if len(cfg.CODPincodes) != len(defaultCODPincodes) {
		t.Fatalf("expected default pincodes, got %v", cfg.CODPincodes)
	}
	if cfg.Production() {
		t.Fatal("default env must not be production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("COD_PINCODES", "123456,654321")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("ADMIN_TOKEN_TTL", "2h")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if len(cfg.CODPincodes) != 2 || cfg.CODPincodes[0] != "123456" {
		t.Fatalf("CODPincodes = %v", cfg.CODPincodes)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("invalid SMTP_PORT should fall back, got %d", cfg.SMTPPort)
	}
	if cfg.AdminTokenTTL != 2*time.Hour {
		t.Fatalf("AdminTokenTTL = %s", cfg.AdminTokenTTL)
	}
	if !cfg.Production() {
		t.Fatal("APP_ENV=production should be production")
	}
}
