package config

import (
	"testing"
	"time"
)

func TestLoadRequiresMarketplaceOwner(t *testing.T) {
	t.Setenv("MARKETPLACE_OWNER", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing owner to fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MARKETPLACE_OWNER", "admin")
	t.Setenv("MARKETPLACE_FEE_BPS", "")
	t.Setenv("MARKETPLACE_MAX_FEE_BPS", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("OUTBOX_TOPIC", "")
	t.Setenv("POSTGRES_AUTO_MIGRATE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Marketplace.FeeBPS != 100 || cfg.Marketplace.MaxFeeBPS != 1000 {
		t.Fatalf("expected default fees, got %+v", cfg.Marketplace)
	}
	if cfg.OutboxTopic != "marketplace.events" || !cfg.AutoMigrate {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("expected default broker, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MARKETPLACE_OWNER", " admin ")
	t.Setenv("MARKETPLACE_FEE_BPS", "250")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("OUTBOX_INTERVAL", "250ms")
	t.Setenv("POSTGRES_AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Marketplace.Owner != "admin" || cfg.Marketplace.FeeBPS != 250 {
		t.Fatalf("unexpected marketplace config %+v", cfg.Marketplace)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.OutboxInterval != 250*time.Millisecond || cfg.AutoMigrate {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MARKETPLACE_OWNER", "admin")
	t.Setenv("MARKETPLACE_FEE_BPS", "70000")
	if _, err := Load(); err == nil {
		t.Fatalf("expected out of range fee to fail")
	}

	t.Setenv("MARKETPLACE_FEE_BPS", "")
	t.Setenv("OUTBOX_INTERVAL", "-1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected negative interval to fail")
	}
}
