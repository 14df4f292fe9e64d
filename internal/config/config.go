package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	GRPCAddr    string
	ServiceName string

	DatabaseURL      string
	RedisAddr        string
	KafkaBrokers     []string
	KafkaTopicPrefix string

	TracingEnabled bool
	JaegerURL      string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	LambdaFunctionURL string
	StagesFile        string
	ChallengesFile    string

	TickInterval       time.Duration
	EscalateWait       time.Duration
	ChallengeInterval  time.Duration
	AmbientProbability float64
	MaxRetained        int
	GateEscalation     bool
	RandomSeed         int64
}

// Load reads the environment. In development a local .env file is loaded
// first; variables already set win over the file.
func Load() *Config {
	if getEnv("COURTROOM_ENV", "") == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("config: ignoring .env: %v", err)
		}
	}

	return &Config{
		HTTPPort:    fixPort(getEnv("HTTP_PORT", "8080")),
		GRPCAddr:    fixPort(getEnv("GRPC_ADDR", ":50070")),
		ServiceName: getEnv("SERVICE_NAME", "courtroom"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		KafkaBrokers:     getEnvList("KAFKA_BROKERS"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "courtroom"),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		JaegerURL:      getEnv("JAEGER_URL", "http://localhost:14268/api/traces"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		LambdaFunctionURL: getEnv("LAMBDA_FUNCTION_URL", ""),
		StagesFile:        getEnv("STAGES_FILE", ""),
		ChallengesFile:    getEnv("CHALLENGES_FILE", ""),

		TickInterval:       getEnvDuration("TICK_INTERVAL", time.Second),
		EscalateWait:       getEnvDuration("ESCALATE_WAIT", 120*time.Second),
		ChallengeInterval:  getEnvDuration("CHALLENGE_INTERVAL", 20*time.Second),
		AmbientProbability: getEnvFloat("AMBIENT_PROBABILITY", 0.03),
		MaxRetained:        getEnvInt("MAX_RETAINED", 200),
		GateEscalation:     getEnvBool("GATE_ESCALATION", false),
		RandomSeed:         int64(getEnvInt("RANDOM_SEED", 0)),
	}
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true"
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		log.Printf("config: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
