package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Preview.Rows != 5 {
		t.Errorf("Preview.Rows = %d, want 5", cfg.Preview.Rows)
	}
	if cfg.Preview.ThumbnailWidth != 100 || cfg.Preview.ThumbnailHeight != 200 {
		t.Errorf("thumbnail = %dx%d, want 100x200", cfg.Preview.ThumbnailWidth, cfg.Preview.ThumbnailHeight)
	}
	if cfg.Image.JPEGQuality != 75 {
		t.Errorf("Image.JPEGQuality = %d, want 75", cfg.Image.JPEGQuality)
	}
	if cfg.Output.Dir != "" {
		t.Errorf("Output.Dir = %q, want empty", cfg.Output.Dir)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestFromEnv_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_FILES", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "2m")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxFiles != 3 {
		t.Errorf("Upload.MaxFiles = %d, want 3", cfg.Upload.MaxFiles)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.RequestTimeout != 2*time.Minute {
		t.Errorf("Server.RequestTimeout = %v, want 2m", cfg.Server.RequestTimeout)
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"Bad integer", "SERVER_PORT", "abc", "invalid integer"},
		{"Bad duration", "SERVER_READ_TIMEOUT", "soon", "invalid duration"},
		{"Port range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"JPEG quality", "IMAGE_JPEG_QUALITY", "0", "IMAGE_JPEG_QUALITY"},
		{"Log level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"Log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			if err == nil {
				t.Fatalf("FromEnv() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("FromEnv() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CHART_MAX_ROWS=12\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("CHART_MAX_ROWS") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chart.MaxRows != 12 {
		t.Errorf("Chart.MaxRows = %d, want 12", cfg.Chart.MaxRows)
	}
}
