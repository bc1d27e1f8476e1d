package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "APP_PORT", "LOG_LEVEL", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_DB", "MYSQL_USER",
		"MYSQL_PASS", "DB_LOG_LEVEL", "AUTO_MIGRATE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"IDEMPOTENCY_TTL_SECONDS", "JWT_SECRET", "JWT_ISSUER", "JWT_TTL_MINUTES", "MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_REGION", "MINIO_USE_SSL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_BATCH_TIMEOUT_MS", "UNDERWRITER_SLA_HOURS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "8080" || c.IdempotencyTTL() != 5*time.Minute || c.UnderwriterSLA() != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.TokenTTL() != time.Hour {
		t.Fatalf("TokenTTL = %v", c.TokenTTL())
	}
	if c.KafkaBatchTimeout() != 10*time.Millisecond {
		t.Fatalf("KafkaBatchTimeout = %v", c.KafkaBatchTimeout())
	}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing JWT_SECRET, got %v", err)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
appPort: "9090"
mysqlDB: uw_prod
jwtSecret: from-file
kafkaBrokers: ["k1:9092", "k2:9092"]
underwriterSLAHours: 48
minioUseSSL: true
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "a:1, b:2 ,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_PASSWORD", "s3cret")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "7070" {
		t.Fatalf("env should beat yaml, AppPort=%q", c.AppPort)
	}
	if c.MySQLDB != "uw_prod" || c.JWTSecret != "from-file" || !c.MinioUseSSL {
		t.Fatalf("yaml values not applied: %+v", c)
	}
	if c.MySQLHost != "mysql" {
		t.Fatalf("yaml should keep unset defaults, MySQLHost=%q", c.MySQLHost)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[0] != "a:1" || c.KafkaBrokers[1] != "b:2" {
		t.Fatalf("KafkaBrokers = %v", c.KafkaBrokers)
	}
	if c.RedisDB != 3 || c.RedisPass != "s3cret" {
		t.Fatalf("redis env not applied: %+v", c)
	}
	if c.UnderwriterSLA() != 48*time.Hour {
		t.Fatalf("UnderwriterSLA = %v", c.UnderwriterSLA())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("appPort: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaults()
		c.JWTSecret = "k"
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL config"},
		{"bad port", func(c *Config) { c.MySQLPort = "not-a-port" }, "invalid MYSQL_PORT"},
		{"bad ttl", func(c *Config) { c.JWTTTLMins = 0 }, "JWT_TTL_MINUTES"},
		{"minio without keys", func(c *Config) { c.MinioEndpoint = "minio:9000" }, "MinIO"},
		{"kafka without topic", func(c *Config) { c.KafkaBrokers = []string{"k:9092"}; c.KafkaTopic = "" }, "KAFKA_TOPIC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := defaults()
	want := "underwriting:underwriting@tcp(mysql:3306)/underwriting?parseTime=true&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
