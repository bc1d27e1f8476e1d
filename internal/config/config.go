package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is resolved as defaults, then the YAML file named by CONFIG_FILE,
// then environment variables.
type Config struct {
	AppPort  string `yaml:"appPort"`
	LogLevel string `yaml:"logLevel"`

	MySQLHost   string `yaml:"mysqlHost"`
	MySQLPort   string `yaml:"mysqlPort"`
	MySQLDB     string `yaml:"mysqlDB"`
	MySQLUser   string `yaml:"mysqlUser"`
	MySQLPass   string `yaml:"mysqlPass"`
	DBLogLevel  string `yaml:"dbLogLevel"`
	AutoMigrate bool   `yaml:"autoMigrate"`

	RedisAddr string `yaml:"redisAddr"`
	RedisPass string `yaml:"redisPass"`
	RedisDB   int    `yaml:"redisDB"`

	IdempTTLSecs int `yaml:"idempotencyTTLSeconds"`

	JWTSecret  string `yaml:"jwtSecret"`
	JWTIssuer  string `yaml:"jwtIssuer"`
	JWTTTLMins int    `yaml:"jwtTTLMinutes"`

	// blob storage is disabled when MinioEndpoint is empty
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioRegion    string `yaml:"minioRegion"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	// audit fan-out is disabled when KafkaBrokers is empty
	KafkaBrokers        []string `yaml:"kafkaBrokers"`
	KafkaTopic          string   `yaml:"kafkaTopic"`
	KafkaBatchTimeoutMs int      `yaml:"kafkaBatchTimeoutMs"`

	UnderwriterSLAHours int `yaml:"underwriterSLAHours"`
}

func defaults() *Config {
	return &Config{
		AppPort:  "8080",
		LogLevel: "info",

		MySQLHost:  "mysql",
		MySQLPort:  "3306",
		MySQLDB:    "underwriting",
		MySQLUser:  "underwriting",
		MySQLPass:  "underwriting",
		DBLogLevel: "warn",

		RedisAddr:    "redis:6379",
		IdempTTLSecs: 300,

		JWTIssuer:  "underwriting-backend",
		JWTTTLMins: 60,

		MinioBucket: "application-documents",
		MinioRegion: "us-east-1",

		KafkaTopic:          "underwriting.audit-events",
		KafkaBatchTimeoutMs: 10,

		UnderwriterSLAHours: 24,
	}
}

// Load builds the configuration. A missing or malformed CONFIG_FILE is an error.
func Load() (*Config, error) {
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	envString(&c.AppPort, "APP_PORT")
	envString(&c.LogLevel, "LOG_LEVEL")

	envString(&c.MySQLHost, "MYSQL_HOST")
	envString(&c.MySQLPort, "MYSQL_PORT")
	envString(&c.MySQLDB, "MYSQL_DB")
	envString(&c.MySQLUser, "MYSQL_USER")
	envString(&c.MySQLPass, "MYSQL_PASS")
	envString(&c.DBLogLevel, "DB_LOG_LEVEL")
	envBool(&c.AutoMigrate, "AUTO_MIGRATE")

	envString(&c.RedisAddr, "REDIS_ADDR")
	envString(&c.RedisPass, "REDIS_PASSWORD")
	envInt(&c.RedisDB, "REDIS_DB")
	envInt(&c.IdempTTLSecs, "IDEMPOTENCY_TTL_SECONDS")

	envString(&c.JWTSecret, "JWT_SECRET")
	envString(&c.JWTIssuer, "JWT_ISSUER")
	envInt(&c.JWTTTLMins, "JWT_TTL_MINUTES")

	envString(&c.MinioEndpoint, "MINIO_ENDPOINT")
	envString(&c.MinioAccessKey, "MINIO_ACCESS_KEY")
	envString(&c.MinioSecretKey, "MINIO_SECRET_KEY")
	envString(&c.MinioBucket, "MINIO_BUCKET")
	envString(&c.MinioRegion, "MINIO_REGION")
	envBool(&c.MinioUseSSL, "MINIO_USE_SSL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitCSV(v)
	}
	envString(&c.KafkaTopic, "KAFKA_TOPIC")
	envInt(&c.KafkaBatchTimeoutMs, "KAFKA_BATCH_TIMEOUT_MS")

	envInt(&c.UnderwriterSLAHours, "UNDERWRITER_SLA_HOURS")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.JWTTTLMins <= 0 {
		return fmt.Errorf("invalid JWT_TTL_MINUTES %d", c.JWTTTLMins)
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "" || c.MinioBucket == "") {
		return errors.New("missing MinIO credentials or bucket (MINIO_ACCESS_KEY/SECRET_KEY/BUCKET)")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("missing KAFKA_TOPIC")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLMins) * time.Minute
}

func (c *Config) KafkaBatchTimeout() time.Duration {
	return time.Duration(c.KafkaBatchTimeoutMs) * time.Millisecond
}

func (c *Config) UnderwriterSLA() time.Duration {
	return time.Duration(c.UnderwriterSLAHours) * time.Hour
}
