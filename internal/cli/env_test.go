package cli

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvLoaderLoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("UEBERSETZER_TEST_VALUE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileVar, "")
	t.Setenv("UEBERSETZER_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(dir, "missing.env"), "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := loader.Load()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected loaded path: got %q want %q", got, path)
	}
	if value := os.Getenv("UEBERSETZER_TEST_VALUE"); value != "loaded" {
		t.Fatalf("unexpected env value: %q", value)
	}
}

func TestEnvLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvFileVar, "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(dir, "nope.env"), "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := loader.Load(); !errors.Is(err, ErrNoEnvFile) {
		t.Fatalf("expected ErrNoEnvFile, got %v", err)
	}
	if err := loader.LoadOptional(); err != nil {
		t.Fatalf("expected missing env file to be optional, got %v", err)
	}
}
