package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `
# comment line
LINGO_DOTENV_A=plain
LINGO_DOTENV_B="quoted value"
export LINGO_DOTENV_C=exported
LINGO_DOTENV_D=trimmed # trailing comment
not a valid line
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LINGO_DOTENV_A", "")
	os.Unsetenv("LINGO_DOTENV_A")
	t.Setenv("LINGO_DOTENV_B", "")
	os.Unsetenv("LINGO_DOTENV_B")
	t.Setenv("LINGO_DOTENV_C", "")
	os.Unsetenv("LINGO_DOTENV_C")
	t.Setenv("LINGO_DOTENV_D", "")
	os.Unsetenv("LINGO_DOTENV_D")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}

	if got := os.Getenv("LINGO_DOTENV_A"); got != "plain" {
		t.Fatalf("A = %q", got)
	}
	if got := os.Getenv("LINGO_DOTENV_B"); got != "quoted value" {
		t.Fatalf("B = %q", got)
	}
	if got := os.Getenv("LINGO_DOTENV_C"); got != "exported" {
		t.Fatalf("C = %q", got)
	}
	if got := os.Getenv("LINGO_DOTENV_D"); got != "trimmed" {
		t.Fatalf("D = %q", got)
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LINGO_DOTENV_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LINGO_DOTENV_KEEP", "from-env")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("LINGO_DOTENV_KEEP"); got != "from-env" {
		t.Fatalf("value = %q, want from-env", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}

func TestPathsHonorLingoPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINGO_PATH", dir)

	if got := LingoPath(); got != dir {
		t.Fatalf("LingoPath = %q", got)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "config.yaml") {
		t.Fatalf("ConfigPath = %q", got)
	}
	if got := DotenvPath(); got != filepath.Join(dir, ".env") {
		t.Fatalf("DotenvPath = %q", got)
	}
}
