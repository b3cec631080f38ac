package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL    = "http://localhost:3000/api"
	defaultAppEnv        = "local"
	defaultSessionDriver = "file"
	defaultDatabaseDSN   = "vendordesk.db"
	defaultDBDriver      = "sqlite"
	defaultRedisAddr     = "localhost:6379"
	defaultHTTPTimeout   = 30 * time.Second
	defaultHTTPRetries   = 2
	defaultCacheTTL      = 5 * time.Minute
	defaultOrdersLimit   = 10
	defaultMockAPIAddr   = ":3000"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()

	configPath = "config/app.json"
	envPath    = ".env"
)

// Load merges config/app.json and .env over the defaults. Process
// environment variables always win over both files.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles(configPath, envPath)
	})
	return loadErr
}

// Reset drops everything loaded so far and points Load at new files.
// Empty paths keep the current ones. Tests use it to isolate config.
func Reset(appJSON, dotEnv string) {
	mu.Lock()
	defer mu.Unlock()

	if appJSON != "" {
		configPath = appJSON
	}
	if dotEnv != "" {
		envPath = dotEnv
	}
	values = defaultValues()
	loadOnce = sync.Once{}
	loadErr = nil
}

func defaultValues() map[string]string {
	return map[string]string{
		"API_BASE_URL":   defaultAPIBaseURL,
		"APP_ENV":        defaultAppEnv,
		"APP_KEY":        "",
		"SESSION_DRIVER": defaultSessionDriver,
		"SESSION_PATH":   "",
		"DB_DRIVER":      defaultDBDriver,
		"DATABASE_DSN":   "",
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
		"STORAGE_DISK":   "local",
		"LOG_LEVEL":      "",
	}
}

// ── API ──────────────────────────────────────────────────────────────────────

// APIBaseURL is the host + path prefix of the vendor REST API.
func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

func HTTPTimeout() time.Duration {
	_ = Load()
	return duration("HTTP_TIMEOUT", defaultHTTPTimeout)
}

// HTTPRetries is the total number of attempts for idempotent requests.
func HTTPRetries() int {
	_ = Load()
	n := integer("HTTP_RETRIES", defaultHTTPRetries)
	if n < 1 {
		return 1
	}
	return n
}

func CacheTTL() time.Duration {
	_ = Load()
	return duration("CACHE_TTL", defaultCacheTTL)
}

func OrdersPageLimit() int {
	_ = Load()
	n := integer("ORDERS_PAGE_LIMIT", defaultOrdersLimit)
	if n < 1 {
		return defaultOrdersLimit
	}
	return n
}

// ── App ──────────────────────────────────────────────────────────────────────

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func IsProduction() bool {
	switch AppEnv() {
	case "production", "prod":
		return true
	}
	return false
}

// AppKey encrypts persisted session values when set.
func AppKey() string {
	_ = Load()
	return get("APP_KEY", "")
}

func LogLevel() string {
	_ = Load()
	return strings.ToLower(get("LOG_LEVEL", ""))
}

func LogMongoURI() string { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string  { _ = Load(); return get("LOG_MONGO_DB", "vendordesk") }
func MetricsAddr() string { _ = Load(); return get("METRICS_ADDR", "") }
func MockAPIAddr() string { _ = Load(); return get("MOCK_API_ADDR", defaultMockAPIAddr) }

func MockAPISecret() string {
	_ = Load()
	return get("MOCK_API_SECRET", "mock-api-secret-change-me")
}

// ── Session persistence ──────────────────────────────────────────────────────

func SessionDriver() string {
	_ = Load()

	driver := strings.ToLower(get("SESSION_DRIVER", defaultSessionDriver))
	switch driver {
	case "memory", "file", "redis", "sql":
		return driver
	default:
		return defaultSessionDriver
	}
}

// SessionPath is the JSON file used by the "file" session driver.
func SessionPath() string {
	_ = Load()
	if p := get("SESSION_PATH", ""); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vendordesk", "session.json")
	}
	return filepath.Join(home, ".vendordesk", "session.json")
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDBDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDBDriver
	}
}

func DatabaseDSN() string {
	_ = Load()
	return get("DATABASE_DSN", defaultDatabaseDSN)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", ".")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

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
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
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
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func integer(key string, fallback int) int {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// duration accepts Go durations ("15s") or bare seconds ("15").
func duration(key string, fallback time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
