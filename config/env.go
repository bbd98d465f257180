package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppEnv        = "local"
	defaultAppPort       = "3000"
	defaultGRPCPort      = "50051"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "shopfront"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultCacheTTL      = 5 * time.Minute
	defaultMaxBodyBytes  = 25 << 20
	defaultRateLimit     = 200
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once. Process environment variables
// always take precedence over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":        defaultAppEnv,
		"APP_PORT":       defaultAppPort,
		"GRPC_PORT":      defaultGRPCPort,
		"MONGODB_URI":    defaultMongoURI,
		"MONGODB_DB":     defaultMongoDatabase,
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
		"JWT_SECRET":     defaultJWTSecret,
		"CACHE_TTL":      defaultCacheTTL.String(),
		"AUTO_MIGRATE":   "true",
		"STORAGE_DISK":   "local",
	}
}

// ── Application ──────────────────────────────────────────────────────────────

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func GRPCPort() string {
	_ = Load()
	return get("GRPC_PORT", defaultGRPCPort)
}

// MaxBodyBytes caps JSON request bodies. Product payloads may carry data-URL
// images, hence the generous default.
func MaxBodyBytes() int64 {
	return int64(Int("MAX_BODY_BYTES", defaultMaxBodyBytes))
}

// RateLimit is the number of requests a client may make per minute.
func RateLimit() int {
	return Int("RATE_LIMIT", defaultRateLimit)
}

func AutoMigrate() bool { return Bool("AUTO_MIGRATE", true) }

// EnforceBans makes the bearer strategy reject users whose ban has not expired.
func EnforceBans() bool { return Bool("ENFORCE_BANS", false) }

// BanSweepInterval is how often expired bans are lifted.
func BanSweepInterval() time.Duration { return Duration("BAN_SWEEP_INTERVAL", time.Minute) }

// ── Database / cache / broker ────────────────────────────────────────────────

func MongoURI() string {
	_ = Load()
	return get("MONGODB_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGODB_DB", defaultMongoDatabase)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func CacheTTL() time.Duration { return Duration("CACHE_TTL", defaultCacheTTL) }

// KafkaBrokers returns the comma-separated KAFKA_BROKERS list; empty disables
// event publishing.
func KafkaBrokers() []string {
	_ = Load()
	raw := get("KAFKA_BROKERS", "")
	if raw == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func GoogleClientID() string {
	_ = Load()
	return get("GOOGLE_CLIENT_ID", "")
}

func AdminEmail() string { return Get("ADMIN_EMAIL", "admin@shopfront.local") }
func AdminPassword() string { return Get("ADMIN_PASSWORD", "") }

// ── Logging ──────────────────────────────────────────────────────────────────

func LogFile() string { return Get("LOG_FILE", "") }
func LogMongo() bool { return Bool("LOG_MONGO", false) }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string { return Get("STORAGE_DISK", "local") }
func StorageLocalRoot() string { return Get("STORAGE_LOCAL_ROOT", "storage") }
func StorageURL() string { return Get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage") }
func OffloadImages() bool { return Bool("OFFLOAD_IMAGES", false) }
func StorageS3Bucket() string { return Get("S3_BUCKET", "") }
func StorageS3Region() string { return Get("S3_REGION", "us-east-1") }
func StorageS3Key() string { return Get("S3_KEY", "") }
func StorageS3Secret() string { return Get("S3_SECRET", "") }
func StorageS3Endpoint() string { return Get("S3_ENDPOINT", "") }
func StorageS3URL() string { return Get("S3_URL", "") }

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case bool, float64:
			out[k] = fmt.Sprint(v)
		}
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

func get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Bool reads a boolean key. Unparseable values yield fallback.
func Bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(Get(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

// Int reads a positive integer key. Unparseable or non-positive values yield fallback.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, strconv.Itoa(fallback)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Duration reads a time.ParseDuration formatted key such as "4h" or "90s".
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(Get(key, fallback.String()))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
