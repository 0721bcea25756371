package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	BaseURL     string
	LogLevel    string
	DatabaseURL string
	JourneyTTL  time.Duration
	Redis       RedisConfig
	Kafka       KafkaConfig
	TrnLookup   TrnLookupConfig
	Session     SessionConfig
}

// RedisConfig configures the journey state store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures support ticket publishing. No brokers selects the
// log-only ticket raiser.
type KafkaConfig struct {
	Brokers     []string
	TicketTopic string
}

type TrnLookupConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type SessionConfig struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// DefaultTrnLookupTimeout bounds a single call to the teacher records matcher.
const DefaultTrnLookupTimeout = 5 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Development default; production deployments must override it.
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:        getEnv("SIGNIN_ADDR", ":8080"),
		BaseURL:     strings.TrimSuffix(getEnv("SIGNIN_BASE_URL", ""), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JourneyTTL:  getDuration("JOURNEY_TTL", time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			TicketTopic: getEnv("KAFKA_TICKET_TOPIC", "signin.support-tickets"),
		},
		TrnLookup: TrnLookupConfig{
			BaseURL: os.Getenv("TRN_LOOKUP_BASE_URL"),
			APIKey:  os.Getenv("TRN_LOOKUP_API_KEY"),
			Timeout: getDuration("TRN_LOOKUP_TIMEOUT", DefaultTrnLookupTimeout),
		},
		Session: SessionConfig{
			SigningKey: signingKey,
			Issuer:     getEnv("SESSION_ISSUER", "teacherid"),
			TTL:        getDuration("SESSION_TTL", 8*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
