package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr             string
	StoreBackend     string // memory, sqlite or postgres
	DatabaseURL      string
	SQLitePath       string
	TonRecipient     string
	BoosterPrice     int64 // nanoton
	BoosterDuration  time.Duration
	SessionTickEvery time.Duration
	SessionTTL       time.Duration
	SweepEvery       time.Duration
	LeaderboardSize  int
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("COINSEC_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		StoreBackend:     envStoreBackendDefault(),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:       envDefault("COINSEC_SQLITE_PATH", "coinsec.db"),
		TonRecipient:     strings.TrimSpace(os.Getenv("COINSEC_TON_RECIPIENT")),
		BoosterPrice:     envInt64Default("COINSEC_BOOSTER_PRICE_NANOTON", 500000000),
		BoosterDuration:  envDurationDefault("COINSEC_BOOSTER_DURATION", 30*time.Minute),
		SessionTickEvery: envDurationDefault("COINSEC_SESSION_TICK_EVERY", time.Second),
		SessionTTL:       envDurationDefault("COINSEC_SESSION_TTL", 2*time.Minute),
		SweepEvery:       envDurationDefault("COINSEC_SWEEP_EVERY", 5*time.Minute),
		LeaderboardSize:  envIntDefault("COINSEC_LEADERBOARD_SIZE", 20),
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required when COINSEC_STORE=postgres")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("CSC_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envStoreBackendDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("COINSEC_STORE")))
	switch v {
	case "memory", "sqlite", "postgres":
		return v
	default:
		return "memory"
	}
}
