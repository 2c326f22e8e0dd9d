// Package config loads service and operator-session settings from
// PHONECHECK_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Database backends selectable through PHONECHECK_DATABASE_URL.
const (
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config is the status service configuration (`phonecheck serve`).
type Config struct {
	DatabaseURL    string        // PHONECHECK_DATABASE_URL (required)
	GRPCAddr       string        // PHONECHECK_GRPC_ADDR (default ":9090")
	HTTPAddr       string        // PHONECHECK_HTTP_ADDR (default ":8080")
	NATSURL        string        // PHONECHECK_NATS_URL (optional, empty = no events)
	AuthToken      string        // PHONECHECK_AUTH_TOKEN (optional, empty = auth disabled)
	HealthInterval time.Duration // PHONECHECK_HEALTH_INTERVAL (default 10s)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL: os.Getenv("PHONECHECK_DATABASE_URL"),
		GRPCAddr:    envOrDefault("PHONECHECK_GRPC_ADDR", ":9090"),
		HTTPAddr:    envOrDefault("PHONECHECK_HTTP_ADDR", ":8080"),
		NATSURL:     os.Getenv("PHONECHECK_NATS_URL"),
		AuthToken:   os.Getenv("PHONECHECK_AUTH_TOKEN"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("PHONECHECK_DATABASE_URL is required")
	}
	if _, err := Backend(c.DatabaseURL); err != nil {
		return nil, fmt.Errorf("PHONECHECK_DATABASE_URL: %w", err)
	}

	d, err := durationEnv("PHONECHECK_HEALTH_INTERVAL", "10s")
	if err != nil {
		return nil, err
	}
	c.HealthInterval = d
	return c, nil
}

// Session is the configuration of an operator session (`phonecheck run`,
// `status`, `watch`).
type Session struct {
	// Either a status service or a directly attached store. DatabaseURL wins
	// when both are set.
	ServerURL   string // PHONECHECK_SERVER (default "http://localhost:8080")
	Token       string // PHONECHECK_TOKEN
	DatabaseURL string // PHONECHECK_DATABASE_URL (optional)

	LookupURL   string // PHONECHECK_LOOKUP_URL (default "http://localhost:3000/api/check-phone")
	LookupToken string // PHONECHECK_LOOKUP_TOKEN
	NATSURL     string // PHONECHECK_NATS_URL (optional, empty = no run log mirroring)

	PauseMin       int           // PHONECHECK_PAUSE_MIN (default 40)
	PauseMax       int           // PHONECHECK_PAUSE_MAX (default 80)
	PauseUnit      time.Duration // PHONECHECK_PAUSE_UNIT (default 1s)
	StatusInterval time.Duration // PHONECHECK_STATUS_INTERVAL (default 10s)

	// Report sinks
	GoogleCredentials string // PHONECHECK_GOOGLE_CREDENTIALS (service account file; empty = default credentials)
	SheetsEndpoint    string // PHONECHECK_SHEETS_ENDPOINT (optional override)
	ArchiveS3Bucket   string // PHONECHECK_ARCHIVE_S3_BUCKET (enables the S3 archive when set)
	ArchiveS3Prefix   string // PHONECHECK_ARCHIVE_S3_PREFIX (default "phonecheck")
	ArchiveS3Region   string // PHONECHECK_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Endpoint string // PHONECHECK_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
}

func LoadSession() (*Session, error) {
	s := &Session{
		ServerURL:         envOrDefault("PHONECHECK_SERVER", "http://localhost:8080"),
		Token:             os.Getenv("PHONECHECK_TOKEN"),
		DatabaseURL:       os.Getenv("PHONECHECK_DATABASE_URL"),
		LookupURL:         envOrDefault("PHONECHECK_LOOKUP_URL", "http://localhost:3000/api/check-phone"),
		LookupToken:       os.Getenv("PHONECHECK_LOOKUP_TOKEN"),
		NATSURL:           os.Getenv("PHONECHECK_NATS_URL"),
		GoogleCredentials: os.Getenv("PHONECHECK_GOOGLE_CREDENTIALS"),
		SheetsEndpoint:    os.Getenv("PHONECHECK_SHEETS_ENDPOINT"),
		ArchiveS3Bucket:   os.Getenv("PHONECHECK_ARCHIVE_S3_BUCKET"),
		ArchiveS3Prefix:   envOrDefault("PHONECHECK_ARCHIVE_S3_PREFIX", "phonecheck"),
		ArchiveS3Region:   envOrDefault("PHONECHECK_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Endpoint: os.Getenv("PHONECHECK_ARCHIVE_S3_ENDPOINT"),
	}
	if s.DatabaseURL != "" {
		if _, err := Backend(s.DatabaseURL); err != nil {
			return nil, fmt.Errorf("PHONECHECK_DATABASE_URL: %w", err)
		}
	}

	var err error
	if s.PauseMin, err = intEnv("PHONECHECK_PAUSE_MIN", 40); err != nil {
		return nil, err
	}
	if s.PauseMax, err = intEnv("PHONECHECK_PAUSE_MAX", 80); err != nil {
		return nil, err
	}
	if s.PauseMin < 0 || s.PauseMax < s.PauseMin {
		return nil, fmt.Errorf("pause range [%d, %d] is invalid", s.PauseMin, s.PauseMax)
	}
	if s.PauseUnit, err = durationEnv("PHONECHECK_PAUSE_UNIT", "1s"); err != nil {
		return nil, err
	}
	if s.StatusInterval, err = durationEnv("PHONECHECK_STATUS_INTERVAL", "10s"); err != nil {
		return nil, err
	}
	return s, nil
}

// Backend returns which store a database URL selects:
// postgres://..., sqlite://<path>, firestore://<project>, memory://.
func Backend(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "sqlite":
		return BackendSQLite, nil
	case "firestore":
		if u.Host == "" {
			return "", fmt.Errorf("firestore url needs a project: firestore://<project>")
		}
		return BackendFirestore, nil
	case "memory":
		return BackendMemory, nil
	}
	return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
