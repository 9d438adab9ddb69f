package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
	BackendFile      = "file"
)

type Config struct {
	Port string `yaml:"port"`

	// ✅ Event collection
	CollectionBackend string `yaml:"collection_backend"` // firestore, redis, memory
	EventsCollection  string `yaml:"events_collection"`

	// ✅ Firebase Config
	FirebaseProjectID string `yaml:"firebase_project_id"`
	CredentialsPath   string `yaml:"credentials_path"` // GOOGLE_APPLICATION_CREDENTIALS
	FCMTopic          string `yaml:"fcm_topic"`

	// ✅ Redis Config
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// ✅ Kafka change feed
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// ✅ Audit database (optional)
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	// ✅ Calendar preferences
	PreferencesBackend string `yaml:"preferences_backend"` // file, redis
	PreferencesPath    string `yaml:"preferences_path"`

	// ✅ Event store tuning
	WriteMaxAttempts        int `yaml:"write_max_attempts"`
	WriteRetryInitialMS     int `yaml:"write_retry_initial_ms"`
	WriteTimeoutSeconds     int `yaml:"write_timeout_seconds"`
	ResubscribeDelaySeconds int `yaml:"resubscribe_delay_seconds"`
	SessionTTLMinutes       int `yaml:"session_ttl_minutes"`

	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins"`
	SecureCookies      bool     `yaml:"secure_cookies"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:                    "8080",
		CollectionBackend:       BackendMemory,
		EventsCollection:        "events",
		FCMTopic:                "calendar",
		RedisAddr:               "localhost:6379",
		KafkaTopic:              "calendar.events",
		DBPort:                  "5432",
		PreferencesBackend:      BackendFile,
		PreferencesPath:         "./data/preferences.json",
		WriteMaxAttempts:        3,
		WriteRetryInitialMS:     200,
		WriteTimeoutSeconds:     10,
		ResubscribeDelaySeconds: 2,
		SessionTTLMinutes:       30,
		RateLimitPerMinute:      120,
		CORSOrigins:             []string{"http://localhost:3000", "http://localhost:8080"},
	}
}

// Load reads .env, then the YAML file named by CONFIG_FILE if any, then
// environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		log.Printf("✅ Loaded config file %s", path)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	var firstErr error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s must be a number: %w", key, err)
			}
			return
		}
		*dst = n
	}

	str("PORT", &c.Port)
	str("COLLECTION_BACKEND", &c.CollectionBackend)
	str("EVENTS_COLLECTION", &c.EventsCollection)
	str("FIREBASE_PROJECT_ID", &c.FirebaseProjectID)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.CredentialsPath)
	str("FCM_TOPIC", &c.FCMTopic)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	num("REDIS_DB", &c.RedisDB)
	list("KAFKA_BROKERS", &c.KafkaBrokers)
	str("KAFKA_TOPIC", &c.KafkaTopic)
	str("DB_HOST", &c.DBHost)
	str("DB_PORT", &c.DBPort)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("PREFERENCES_BACKEND", &c.PreferencesBackend)
	str("PREFERENCES_PATH", &c.PreferencesPath)
	num("WRITE_MAX_ATTEMPTS", &c.WriteMaxAttempts)
	num("WRITE_RETRY_INITIAL_MS", &c.WriteRetryInitialMS)
	num("WRITE_TIMEOUT_SECONDS", &c.WriteTimeoutSeconds)
	num("RESUBSCRIBE_DELAY_SECONDS", &c.ResubscribeDelaySeconds)
	num("SESSION_TTL_MINUTES", &c.SessionTTLMinutes)
	num("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	list("CORS_ORIGINS", &c.CORSOrigins)
	if v, ok := lookup("SECURE_COOKIES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("SECURE_COOKIES must be a boolean: %w", err)
		}
		c.SecureCookies = b
	}

	return firstErr
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.CollectionBackend {
	case BackendFirestore, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown COLLECTION_BACKEND %q", c.CollectionBackend)
	}
	switch c.PreferencesBackend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown PREFERENCES_BACKEND %q", c.PreferencesBackend)
	}
	if c.CollectionBackend == BackendFirestore && c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore backend")
	}
	if c.WriteMaxAttempts < 1 {
		return fmt.Errorf("WRITE_MAX_ATTEMPTS must be at least 1")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}

// DatabaseEnabled reports whether enough is set to open the audit database.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

// DSN is the postgres connection string for the audit database.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) WriteRetryInitial() time.Duration {
	return time.Duration(c.WriteRetryInitialMS) * time.Millisecond
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c *Config) ResubscribeDelay() time.Duration {
	return time.Duration(c.ResubscribeDelaySeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
