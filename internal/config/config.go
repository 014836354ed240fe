package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GoEnv    string
	DBDriver string
	DBDSN    string
	MediaDir string
	LogFile  string

	AdminEmail    string
	AdminPassword string

	GeminiAPIKey string
	GeminiModel  string

	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	KafkaBrokers  []string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	AllowedOrigins string
	CookieSecure   bool
}

// Load reads .env.<GO_ENV> (falling back to .env) and then the process
// environment. Variables already set in the environment win.
func Load() (Config, error) {
	env := getEnv("GO_ENV", "development")
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("[config] no .env file found, using process environment")
		}
	} else {
		log.Printf("[config] loaded %s", envFile)
	}

	cfg := Config{
		Port:     getEnv("PORT", "8081"),
		GoEnv:    getEnv("GO_ENV", "development"),
		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "bazaar.db"),
		MediaDir: getEnv("MEDIA_DIR", "./web/media"),
		LogFile:  getEnv("LOG_FILE", "./bazaar.log"),

		AdminEmail:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", "admin@bazaar.dz"))),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "bazaar.orders"),
		KafkaUsername: getEnv("KAFKA_USERNAME", ""),
		KafkaPassword: getEnv("KAFKA_PASSWORD", ""),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:8081"),
		CookieSecure:   getBool("COOKIE_SECURE", false),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	log.Printf("[config] PORT=%s GO_ENV=%s DB_DRIVER=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s ADMIN_EMAIL=%s GEMINI=%s S3_BUCKET=%s KAFKA=%v",
		cfg.Port, cfg.GoEnv, cfg.DBDriver, mask(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.AdminEmail,
		mask(cfg.GeminiAPIKey), cfg.AWSS3Bucket, cfg.KafkaBrokers)
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	return nil
}

func (c Config) IsProduction() bool { return c.GoEnv == "production" }

func (c Config) Origins() []string { return splitList(c.AllowedOrigins) }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mask hides everything but a short prefix of secrets and DSNs in logs.
func mask(s string) string {
	if s == "" {
		return "<unset>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
