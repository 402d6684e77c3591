package config

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv, applies defaults for unset
// values and validates the result.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
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

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, getenv); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := getenv(envName)
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = getenv(alt)
		}

		if value == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Fetch
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, "FETCH_TIMEOUT must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, "FETCH_MAX_BYTES must be positive")
	}
	if c.Fetch.RateLimit <= 0 {
		errs = append(errs, "FETCH_RATE_LIMIT must be positive")
	}
	if c.Fetch.RateBurst <= 0 {
		errs = append(errs, "FETCH_RATE_BURST must be positive")
	}

	// S3
	if c.S3.Enabled() && (c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "") {
		errs = append(errs, "S3_ENDPOINT is set but S3_ACCESS_KEY_ID or S3_SECRET_ACCESS_KEY is empty")
	}

	// Merge
	if c.Merge.MaxTables <= 0 {
		errs = append(errs, "MERGE_MAX_TABLES must be positive")
	}
	if c.Merge.MaxParallel < 0 {
		errs = append(errs, "MERGE_MAX_PARALLEL must be non-negative")
	}
	if c.Merge.MaxConcurrent <= 0 {
		errs = append(errs, "MERGE_MAX_CONCURRENT must be positive")
	}
	if c.Merge.MaxWaitTime <= 0 {
		errs = append(errs, "MERGE_MAX_WAIT_TIME must be positive")
	}
	if c.Merge.Timeout <= 0 {
		errs = append(errs, "MERGE_TIMEOUT must be positive")
	}
	if c.Merge.MaxUploadSize <= 0 {
		errs = append(errs, "MERGE_MAX_UPLOAD_SIZE must be positive")
	}

	// Rate limiting
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.Burst <= 0 {
		errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	// Security
	for _, p := range c.Security.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is not a CIDR or IP", p))
		}
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a representation safe for logging. S3 credentials and API
// keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Fetch: {Timeout: %s, MaxBytes: %d, RateLimit: %g, AllowFiles: %v}, ",
		c.Fetch.Timeout, c.Fetch.MaxBytes, c.Fetch.RateLimit, c.Fetch.AllowFiles)
	if c.S3.Enabled() {
		fmt.Fprintf(&b, "S3: {Endpoint: %q, Credentials: [MASKED]}, ", c.S3.Endpoint)
	} else {
		b.WriteString("S3: {disabled}, ")
	}
	fmt.Fprintf(&b, "Merge: {MaxTables: %d, MaxConcurrent: %d, Timeout: %s}, ",
		c.Merge.MaxTables, c.Merge.MaxConcurrent, c.Merge.Timeout)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {TrustedProxies: %q, APIKeys: %d configured}, ",
		c.Security.TrustedProxies, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
