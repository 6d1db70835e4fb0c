package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupServerDefaults(t *testing.T) {
	// Run from a temp dir so relative paths resolve somewhere harmless
	tempDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	defer os.Chdir(originalDir)

	t.Setenv("LOG_OUTPUT", "stdout")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("SERVER_PORT", "")

	serverConfig, logger := SetupServer()
	if logger == nil {
		t.Fatal("SetupServer returned nil logger")
	}
	if serverConfig.ListenAddrPort != "8000" {
		t.Errorf("default port = %q, want 8000", serverConfig.ListenAddrPort)
	}
	if serverConfig.DatabaseType != "sqlite" {
		t.Errorf("default database type = %q, want sqlite", serverConfig.DatabaseType)
	}
	if serverConfig.Renderer != "pdfium" {
		t.Errorf("default renderer = %q, want pdfium", serverConfig.Renderer)
	}
	if !filepath.IsAbs(serverConfig.OutputPath) {
		t.Errorf("output path %q is not absolute", serverConfig.OutputPath)
	}
	if !filepath.IsAbs(serverConfig.TempPath) {
		t.Errorf("temp path %q is not absolute", serverConfig.TempPath)
	}
}

func TestSetupServerEnvOverrides(t *testing.T) {
	t.Setenv("LOG_OUTPUT", "stdout")
	t.Setenv("SERVER_PORT", "9123")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("OUTPUT_RETENTION_HOURS", "48")
	t.Setenv("MAX_UPLOAD_MB", "bogus")

	serverConfig, _ := SetupServer()
	if serverConfig.ListenAddrPort != "9123" {
		t.Errorf("port = %q, want 9123", serverConfig.ListenAddrPort)
	}
	if serverConfig.DatabaseType != "postgres" {
		t.Errorf("database type = %q, want postgres", serverConfig.DatabaseType)
	}
	if serverConfig.OutputRetention != 48 {
		t.Errorf("retention = %d, want 48", serverConfig.OutputRetention)
	}
	// Unparsable integers fall back to the default
	if serverConfig.MaxUploadMB != 100 {
		t.Errorf("max upload = %d, want default 100", serverConfig.MaxUploadMB)
	}
}
