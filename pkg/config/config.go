package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	ServerPort  string
	Environment string
	StoreDriver string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	FirebaseAuthEnabled        bool
	StorageBucket              string

	JWTSecret string
	JWTExpiry int64

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	DeliveryFee float64

	CartRateLimit  int
	CartRateWindow time.Duration
	ChatRateLimit  int
	ChatRateWindow time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		StoreDriver: getEnv("STORE_DRIVER", StoreFirestore),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseAuthEnabled:        getEnvAsBool("FIREBASE_AUTH_ENABLED", false),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry: getEnvAsInt64("JWT_EXPIRY", 7*24*60*60), // 7 days

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         int(getEnvAsInt64("REDIS_DB", 0)),
		ProductCacheTTL: time.Duration(getEnvAsInt64("PRODUCT_CACHE_TTL", 300)) * time.Second,

		KafkaBrokers:     getEnvAsList("KAFKA_BROKERS"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "slem"),

		DeliveryFee: float64(getEnvAsInt64("DELIVERY_FEE", 20000)),

		CartRateLimit:  int(getEnvAsInt64("CART_RATE_LIMIT", 50)),
		CartRateWindow: 15 * time.Minute,
		ChatRateLimit:  int(getEnvAsInt64("CHAT_RATE_LIMIT", 30)),
		ChatRateWindow: time.Minute,
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
