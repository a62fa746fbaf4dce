package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	Port         string
	MongoURL     string
	MongoDB      string
	RedisURL     string
	JWTSecret    string
	CatalogURL   string
	CatalogTTL   time.Duration
	KafkaBrokers string
	KafkaTopic   string
	SNSTopicArn  string
}

// Load reads configuration from the environment, falling back to local-dev
// defaults. JWT_SECRET has no default; startup fails without it.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	return Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		MongoURL:     getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "easybuy"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:    secret,
		CatalogURL:   getEnv("CATALOG_URL", "http://localhost:8090"),
		CatalogTTL:   time.Hour,
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "order.created"),
		SNSTopicArn:  getEnv("SNS_TOPIC_ARN", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
