package config

import (
	"os"
	"strings"
	"testing"

	"github.com/FocuswithJustin/FieldChart/core/ingl"
	"github.com/FocuswithJustin/FieldChart/internal/archive"
	"github.com/FocuswithJustin/FieldChart/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"FIELDCHART_LOG_LEVEL", "FIELDCHART_LOG_FORMAT", "FIELDCHART_CATALOG",
		"FIELDCHART_SNAPSHOTS", "FIELDCHART_COMPRESSION", "FIELDCHART_MAX_FILE_SIZE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Catalog:     "fieldchart.db",
		Snapshots:   ".fieldchart/snapshots",
		Compression: "xz",
		MaxFileSize: 64 << 20,
	}
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FIELDCHART_LOG_LEVEL", "debug")
	t.Setenv("FIELDCHART_LOG_FORMAT", "json")
	t.Setenv("FIELDCHART_CATALOG", "/tmp/cat.db")
	t.Setenv("FIELDCHART_SNAPSHOTS", "/tmp/snaps")
	t.Setenv("FIELDCHART_COMPRESSION", "gzip")
	t.Setenv("FIELDCHART_MAX_FILE_SIZE", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalog != "/tmp/cat.db" || cfg.Snapshots != "/tmp/snaps" || cfg.MaxSize() != 1024 {
		t.Errorf("Load() = %+v", cfg)
	}
	if level, format := cfg.Logging(); level != logging.LevelDebug || format != logging.FormatJSON {
		t.Errorf("Logging() = %v, %v", level, format)
	}
	if cfg.CompressionFormat() != archive.CompressionGzip {
		t.Errorf("CompressionFormat() = %v", cfg.CompressionFormat())
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"FIELDCHART_LOG_LEVEL", "loud", "FIELDCHART_LOG_LEVEL"},
		{"FIELDCHART_LOG_FORMAT", "xml", "FIELDCHART_LOG_FORMAT"},
		{"FIELDCHART_COMPRESSION", "zip", "FIELDCHART_COMPRESSION"},
		{"FIELDCHART_MAX_FILE_SIZE", "-5", "FIELDCHART_MAX_FILE_SIZE"},
		{"FIELDCHART_MAX_FILE_SIZE", "lots", "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestFallbacks(t *testing.T) {
	var cfg Config
	if cfg.MaxSize() != ingl.DefaultMaxFileSize {
		t.Errorf("MaxSize() = %d", cfg.MaxSize())
	}
	cfg.Compression = "bogus"
	if cfg.CompressionFormat() != archive.CompressionNone {
		t.Errorf("CompressionFormat() = %v", cfg.CompressionFormat())
	}
}
