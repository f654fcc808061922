package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string
	AutoMigrate  bool

	// LedgerURL selects the HTTP ledger adapter; empty runs the in-memory ledger.
	LedgerURL     string
	OwnerCacheTTL time.Duration

	OutboxTopic    string
	OutboxInterval time.Duration

	Marketplace MarketplaceConfig
}

type MarketplaceConfig struct {
	Owner        string
	FeeRecipient string
	FeeBPS       uint16
	MaxFeeBPS    uint16
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; real environment variables take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "nftmarket"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	fee, err := envUint16("MARKETPLACE_FEE_BPS", 100)
	if err != nil {
		return Config{}, err
	}
	maxFee, err := envUint16("MARKETPLACE_MAX_FEE_BPS", 1000)
	if err != nil {
		return Config{}, err
	}
	ownerTTL, err := envDuration("LEDGER_OWNER_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	outboxInterval, err := envDuration("OUTBOX_INTERVAL", time.Second)
	if err != nil {
		return Config{}, err
	}

	owner := strings.TrimSpace(os.Getenv("MARKETPLACE_OWNER"))
	if owner == "" {
		return Config{}, errors.New("MARKETPLACE_OWNER is required")
	}

	topic := strings.TrimSpace(os.Getenv("OUTBOX_TOPIC"))
	if topic == "" {
		topic = "marketplace.events"
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,
		AutoMigrate:  envBool("POSTGRES_AUTO_MIGRATE", true),

		LedgerURL:     strings.TrimSpace(os.Getenv("LEDGER_URL")),
		OwnerCacheTTL: ownerTTL,

		OutboxTopic:    topic,
		OutboxInterval: outboxInterval,

		Marketplace: MarketplaceConfig{
			Owner:        owner,
			FeeRecipient: strings.TrimSpace(os.Getenv("MARKETPLACE_FEE_RECIPIENT")),
			FeeBPS:       fee,
			MaxFeeBPS:    maxFee,
		},
	}, nil
}

func envUint16(name string, fallback uint16) (uint16, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer in [0, 65535]: %w", name, err)
	}
	return uint16(value), nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", name)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
