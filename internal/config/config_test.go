package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// env returns a getenv func backed by a map.
func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Second},
		Fetch:   FetchConfig{Timeout: time.Second, MaxBytes: 1, RateLimit: 1, RateBurst: 1},
		Merge:   MergeConfig{MaxTables: 1, MaxConcurrent: 1, MaxWaitTime: time.Second, Timeout: time.Second, MaxUploadSize: 1},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Fetch.MaxBytes != 104857600 {
		t.Errorf("Fetch.MaxBytes = %d, want %d", cfg.Fetch.MaxBytes, 104857600)
	}
	if cfg.Fetch.RateLimit != 5 {
		t.Errorf("Fetch.RateLimit = %g, want 5", cfg.Fetch.RateLimit)
	}
	if cfg.Fetch.AllowFiles {
		t.Error("Fetch.AllowFiles = true, want false")
	}
	if cfg.Merge.MaxConcurrent != 4 {
		t.Errorf("Merge.MaxConcurrent = %d, want %d", cfg.Merge.MaxConcurrent, 4)
	}
	if cfg.S3.Enabled() {
		t.Error("S3.Enabled() = true without an endpoint")
	}
	if !cfg.S3.UseSSL {
		t.Error("S3.UseSSL = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_PORT":          "9090",
		"MERGE_MAX_CONCURRENT": "10",
		"FETCH_RATE_LIMIT":     "0.5",
		"FETCH_ALLOW_FILES":    "true",
		"LOG_LEVEL":            "debug",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Merge.MaxConcurrent != 10 {
		t.Errorf("Merge.MaxConcurrent = %d, want %d", cfg.Merge.MaxConcurrent, 10)
	}
	if cfg.Fetch.RateLimit != 0.5 {
		t.Errorf("Fetch.RateLimit = %g, want 0.5", cfg.Fetch.RateLimit)
	}
	if !cfg.Fetch.AllowFiles {
		t.Error("Fetch.AllowFiles = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"PORT":                  "3000",
		"S3_ENDPOINT":           "localhost:9000",
		"AWS_ACCESS_KEY_ID":     "key",
		"AWS_SECRET_ACCESS_KEY": "secret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.S3.AccessKeyID != "key" || cfg.S3.SecretAccessKey != "secret" {
		t.Errorf("S3 credentials not read from AWS_* fallbacks: %+v", cfg.S3)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"bad integer", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"MERGE_TIMEOUT": "soon"}, "MERGE_TIMEOUT"},
		{"bad float", map[string]string{"FETCH_RATE_LIMIT": "fast"}, "FETCH_RATE_LIMIT"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "RATE_LIMIT_ENABLED"},
		{"s3 without credentials", map[string]string{"S3_ENDPOINT": "localhost:9000"}, "S3_ACCESS_KEY_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"TRUSTED_PROXIES": "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16",
		"API_KEYS":        "k1,k2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
	if len(cfg.Security.APIKeys) != 2 {
		t.Errorf("APIKeys length = %d, want 2", len(cfg.Security.APIKeys))
	}
}

func TestLoad_Duration(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"SERVER_READ_TIMEOUT": "45s",
		"MERGE_MAX_WAIT_TIME": "1m30s",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Merge.MaxWaitTime != 90*time.Second {
		t.Errorf("Merge.MaxWaitTime = %v, want %v", cfg.Merge.MaxWaitTime, 90*time.Second)
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("MERGE_MAX_TABLES", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Merge.MaxTables != 7 {
		t.Errorf("Merge.MaxTables = %d, want 7", cfg.Merge.MaxTables)
	}
}

func TestLoadStruct_RequiredAndSlice(t *testing.T) {
	type section struct {
		Token  string   `env:"TOKEN" required:"true"`
		Hosts  []string `env:"HOSTS"`
		Ignore string
	}
	var s struct{ Section section }

	err := loadStruct(reflectValue(&s), env(nil))
	if err == nil || !strings.Contains(err.Error(), "TOKEN") {
		t.Fatalf("loadStruct() error = %v, want missing TOKEN", err)
	}

	err = loadStruct(reflectValue(&s), env(map[string]string{
		"TOKEN": "t",
		"HOSTS": "a.example, b.example , ,c.example",
	}))
	if err != nil {
		t.Fatalf("loadStruct() error = %v", err)
	}
	want := []string{"a.example", "b.example", "c.example"}
	if strings.Join(s.Section.Hosts, "|") != strings.Join(want, "|") {
		t.Errorf("Hosts = %q, want %q", s.Section.Hosts, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 99999 }, "SERVER_PORT"},
		{"zero max tables", func(c *Config) { c.Merge.MaxTables = 0 }, "MERGE_MAX_TABLES"},
		{"negative parallel", func(c *Config) { c.Merge.MaxParallel = -1 }, "MERGE_MAX_PARALLEL"},
		{"zero fetch rate", func(c *Config) { c.Fetch.RateLimit = 0 }, "FETCH_RATE_LIMIT"},
		{"bad trusted proxy", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.0/33"} }, "TRUSTED_PROXIES"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate limit without burst", func(c *Config) { c.Rate.Burst = 0 }, "RATE_LIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %s: %v", tt.want, err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() on valid config = %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.S3 = S3Config{Endpoint: "minio:9000", AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "hunter2"}
	cfg.Security.APIKeys = []string{"sekrit-key"}

	str := cfg.String()
	if strings.Contains(str, "AKIAEXAMPLE") || strings.Contains(str, "hunter2") {
		t.Error("String() should mask S3 credentials")
	}
	if strings.Contains(str, "sekrit-key") {
		t.Error("String() should not print API keys")
	}
	if !strings.Contains(str, "MASKED") {
		t.Error("String() should contain MASKED placeholder")
	}
}

func reflectValue(ptr any) reflect.Value {
	return reflect.ValueOf(ptr).Elem()
}
