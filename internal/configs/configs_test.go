package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.StorageDriver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.StorageDriver, DriverSQLite)
	}
	if cfg.FeedLimit != DefaultFeedLimit {
		t.Errorf("feed limit = %d, want %d", cfg.FeedLimit, DefaultFeedLimit)
	}
	if cfg.JWTSecret == "" {
		t.Error("development config should generate a jwt secret")
	}
	if cfg.AvatarsEnabled() {
		t.Error("avatars should be disabled without s3 settings")
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("TWOOGLE_STORAGE_DRIVER", "postgres")
	t.Setenv("TWOOGLE_DATABASE_URL", "postgres://board@db/board")
	t.Setenv("TWOOGLE_FEED_LIMIT", "9")
	t.Setenv("TWOOGLE_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.StorageDriver != DriverPostgres || cfg.DatabaseDSN != "postgres://board@db/board" {
		t.Errorf("storage = %q %q", cfg.StorageDriver, cfg.DatabaseDSN)
	}
	if cfg.FeedLimit != 9 {
		t.Errorf("feed limit = %d, want 9", cfg.FeedLimit)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("origins = %v, want 2 entries", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	t.Setenv("TWOOGLE_STORAGE_PATH", "/from/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	if err := flags.Parse([]string{"--storage", "/from/flag.db", "-v"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(flags)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoragePath != "/from/flag.db" {
		t.Errorf("storage path = %q, want flag value", cfg.StoragePath)
	}
	if !cfg.Verbose {
		t.Error("verbose flag not applied")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twoogle.yaml")
	content := "feed_limit: 3\nstorage:\n  path: /from/file.db\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	if err := flags.Parse([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(flags)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FeedLimit != 3 || cfg.StoragePath != "/from/file.db" {
		t.Errorf("config file not applied: limit=%d path=%q", cfg.FeedLimit, cfg.StoragePath)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"TWOOGLE_STORAGE_DRIVER": "derby"}},
		{"bad feed limit", map[string]string{"TWOOGLE_FEED_LIMIT": "0"}},
		{"privileged port", map[string]string{"TWOOGLE_PORT": "80"}},
		{"production without secret", map[string]string{"TWOOGLE_ENVIRONMENT": "production"}},
		{"production postgres without dsn", map[string]string{
			"TWOOGLE_ENVIRONMENT":    "production",
			"TWOOGLE_JWT_SECRET":     "s",
			"TWOOGLE_STORAGE_DRIVER": "postgres",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
