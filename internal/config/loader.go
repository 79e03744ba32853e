package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// fieldTags is the parsed form of a struct field's configuration tags.
type fieldTags struct {
	env      string
	envAlt   string
	def      string
	required bool
}

func tagsOf(f reflect.StructField) fieldTags {
	return fieldTags{
		env:      f.Tag.Get("env"),
		envAlt:   f.Tag.Get("envAlt"),
		def:      f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
}

// lookup returns the raw string for a field: primary env var, then the
// alternate, then the default.
func (t fieldTags) lookup() (string, error) {
	if v := os.Getenv(t.env); v != "" {
		return v, nil
	}
	if t.envAlt != "" {
		if v := os.Getenv(t.envAlt); v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.env)
	}
	return t.def, nil
}

// populate walks a struct and fills tagged fields, recursing into sections.
func populate(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if sf.Type.Kind() == reflect.Struct {
			if err := populate(fv); err != nil {
				return err
			}
			continue
		}

		tags := tagsOf(sf)
		if tags.env == "" {
			continue
		}

		raw, err := tags.lookup()
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}

		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", tags.env, raw, err)
		}
	}

	return nil
}

// assign converts raw into the field's kind and stores it.
func assign(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		fail("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		fail("SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		fail("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Storage
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		fail("DATA_DIR must not be empty")
	}
	if c.Storage.MaxFileSize <= 0 {
		fail("STORAGE_MAX_FILE_SIZE must be positive")
	}

	// Engine
	if c.Engine.SampleSize <= 0 {
		fail("INFER_SAMPLE_SIZE must be positive")
	}
	if utf8.RuneCountInString(c.Engine.Delimiter) != 1 {
		fail("CSV_DELIMITER (%q) must be a single character", c.Engine.Delimiter)
	} else if d := c.Engine.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		fail("CSV_DELIMITER (%q) is not a usable separator", c.Engine.Delimiter)
	}
	if c.Engine.SessionTTL <= 0 {
		fail("SESSION_TTL must be positive")
	}
	if c.Engine.SweepInterval <= 0 {
		fail("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Engine.MaxConcurrentLoads <= 0 {
		fail("LOAD_MAX_CONCURRENT must be positive")
	}
	if c.Engine.MaxLoadWait <= 0 {
		fail("LOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Engine.PageSize <= 0 {
		fail("PAGE_SIZE must be positive")
	}

	// History
	switch strings.ToLower(c.History.Driver) {
	case "none", "sqlite":
	case "postgres":
		if c.History.DatabaseURL == "" {
			fail("DATABASE_URL is required when HISTORY_DRIVER is postgres")
		}
		if c.History.MaxConns <= 0 {
			fail("DB_MAX_CONNS must be positive")
		}
		if c.History.MinConns < 0 {
			fail("DB_MIN_CONNS must be non-negative")
		}
		if c.History.MaxConns < c.History.MinConns {
			fail("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.History.MaxConns, c.History.MinConns)
		}
	default:
		fail("HISTORY_DRIVER (%q) must be one of: none, postgres, sqlite", c.History.Driver)
	}
	if strings.EqualFold(c.History.Driver, "sqlite") && c.History.SQLitePath == "" {
		fail("SQLITE_PATH is required when HISTORY_DRIVER is sqlite")
	}
	if c.History.RetentionDays <= 0 {
		fail("HISTORY_RETENTION_DAYS must be positive")
	}
	if c.History.PruneInterval <= 0 {
		fail("HISTORY_PRUNE_INTERVAL must be positive")
	}

	// Rate limiting
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		fail("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.UploadLimit <= 0 {
		fail("RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	// Security
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		fail("REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		fail("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		fail("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL and API keys are masked.
func (c *Config) String() string {
	dbURL := ""
	if c.History.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Storage: {DataDir: %q, MaxFileSize: %d}, ", c.Storage.DataDir, c.Storage.MaxFileSize)
	fmt.Fprintf(&b, "Engine: {SampleSize: %d, Delimiter: %q, SessionTTL: %s, MaxConcurrentLoads: %d}, ",
		c.Engine.SampleSize, c.Engine.Delimiter, c.Engine.SessionTTL, c.Engine.MaxConcurrentLoads)
	fmt.Fprintf(&b, "History: {Driver: %q, DatabaseURL: %q, SQLitePath: %q}, ",
		c.History.Driver, dbURL, c.History.SQLitePath)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d configured}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
