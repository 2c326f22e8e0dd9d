package config

import (
	"testing"
	"time"
)

var allEnvVars = []string{
	"PHONECHECK_DATABASE_URL", "PHONECHECK_GRPC_ADDR", "PHONECHECK_HTTP_ADDR",
	"PHONECHECK_NATS_URL", "PHONECHECK_AUTH_TOKEN", "PHONECHECK_HEALTH_INTERVAL",
	"PHONECHECK_SERVER", "PHONECHECK_TOKEN", "PHONECHECK_LOOKUP_URL", "PHONECHECK_LOOKUP_TOKEN",
	"PHONECHECK_PAUSE_MIN", "PHONECHECK_PAUSE_MAX", "PHONECHECK_PAUSE_UNIT",
	"PHONECHECK_STATUS_INTERVAL", "PHONECHECK_GOOGLE_CREDENTIALS", "PHONECHECK_SHEETS_ENDPOINT",
	"PHONECHECK_ARCHIVE_S3_BUCKET", "PHONECHECK_ARCHIVE_S3_PREFIX",
	"PHONECHECK_ARCHIVE_S3_REGION", "PHONECHECK_ARCHIVE_S3_ENDPOINT",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "UnsupportedScheme",
			env:     map[string]string{"PHONECHECK_DATABASE_URL": "mysql://localhost/x"},
			wantErr: true,
		},
		{
			name:         "DefaultAddresses",
			env:          map[string]string{"PHONECHECK_DATABASE_URL": "postgres://localhost/phonecheck"},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"PHONECHECK_DATABASE_URL": "sqlite:///var/lib/phonecheck.db",
				"PHONECHECK_GRPC_ADDR":    ":5050",
				"PHONECHECK_HTTP_ADDR":    ":3000",
				"PHONECHECK_NATS_URL":     "nats://localhost:4222",
			},
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name: "BadHealthInterval",
			env: map[string]string{
				"PHONECHECK_DATABASE_URL":    "memory://",
				"PHONECHECK_HEALTH_INTERVAL": "often",
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["PHONECHECK_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["PHONECHECK_DATABASE_URL"])
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.HealthInterval != 10*time.Second {
				t.Errorf("HealthInterval = %s, want 10s", cfg.HealthInterval)
			}
		})
	}
}

func TestLoadSession_Defaults(t *testing.T) {
	clearAllEnv(t)

	s, err := LoadSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ServerURL != "http://localhost:8080" {
		t.Errorf("ServerURL = %q", s.ServerURL)
	}
	if s.PauseMin != 40 || s.PauseMax != 80 || s.PauseUnit != time.Second {
		t.Errorf("pause = [%d, %d] x %s, want [40, 80] x 1s", s.PauseMin, s.PauseMax, s.PauseUnit)
	}
	if s.StatusInterval != 10*time.Second {
		t.Errorf("StatusInterval = %s, want 10s", s.StatusInterval)
	}
	if s.ArchiveS3Prefix != "phonecheck" || s.ArchiveS3Region != "us-east-1" {
		t.Errorf("archive defaults = %q %q", s.ArchiveS3Prefix, s.ArchiveS3Region)
	}
}

func TestLoadSession_Overrides(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("PHONECHECK_PAUSE_MIN", "1")
	t.Setenv("PHONECHECK_PAUSE_MAX", "2")
	t.Setenv("PHONECHECK_PAUSE_UNIT", "10ms")
	t.Setenv("PHONECHECK_DATABASE_URL", "firestore://my-project")

	s, err := LoadSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PauseMin != 1 || s.PauseMax != 2 || s.PauseUnit != 10*time.Millisecond {
		t.Errorf("pause = [%d, %d] x %s", s.PauseMin, s.PauseMax, s.PauseUnit)
	}
	if s.DatabaseURL != "firestore://my-project" {
		t.Errorf("DatabaseURL = %q", s.DatabaseURL)
	}
}

func TestLoadSession_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  map[string]string
	}{
		{"NonNumericPause", map[string]string{"PHONECHECK_PAUSE_MIN": "soon"}},
		{"InvertedPause", map[string]string{"PHONECHECK_PAUSE_MIN": "90", "PHONECHECK_PAUSE_MAX": "80"}},
		{"BadInterval", map[string]string{"PHONECHECK_STATUS_INTERVAL": "10"}},
		{"BadDatabaseURL", map[string]string{"PHONECHECK_DATABASE_URL": "firestore://"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadSession(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestBackend(t *testing.T) {
	for _, tc := range []struct {
		url  string
		want string
	}{
		{"postgres://u:p@db:5432/phonecheck?sslmode=disable", BackendPostgres},
		{"postgresql://db/phonecheck", BackendPostgres},
		{"sqlite:///tmp/phonecheck.db", BackendSQLite},
		{"firestore://my-project", BackendFirestore},
		{"memory://", BackendMemory},
	} {
		t.Run(tc.url, func(t *testing.T) {
			got, err := Backend(tc.url)
			if err != nil {
				t.Fatalf("Backend(%q): %v", tc.url, err)
			}
			if got != tc.want {
				t.Errorf("Backend(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}
