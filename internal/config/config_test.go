package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CLASH_ROYALE_TOKEN", "ROYALEAPI_TOKEN", "INVIDIOUS_BASE", "OLLAMA_MODEL",
		"OLLAMA_URL", "ANTHROPIC_API_KEY", "CR_PLAYER_TAG", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	// keep godotenv from picking up a stray .env
	t.Chdir(t.TempDir())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Coach.OllamaModel != "qwen:7b" {
		t.Errorf("ollama model: want qwen:7b, got %q", cfg.Coach.OllamaModel)
	}
	if cfg.Analysis.TiltLimit != 3 || cfg.TiltWindow().Minutes() != 15 {
		t.Errorf("tilt defaults: %+v", cfg.Analysis)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[player]
tag = "#ABC"
[player.goals]
"Arena 10" = 5000

[analysis]
tilt_limit = 4

[coach]
provider = "ollama"
ollama_model = "llama3"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("CLASH_ROYALE_TOKEN", "tok")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Player.Tag != "#ABC" || cfg.Player.Goals["Arena 10"] != 5000 {
		t.Errorf("player section: %+v", cfg.Player)
	}
	if cfg.Analysis.TiltLimit != 4 || cfg.Analysis.CycleWindow != 4 {
		t.Errorf("file values should merge over defaults: %+v", cfg.Analysis)
	}
	if cfg.Coach.OllamaModel != "mistral" {
		t.Errorf("env should override file: got %q", cfg.Coach.OllamaModel)
	}
	if tok, err := cfg.RequireClashToken(); err != nil || tok != "tok" {
		t.Errorf("RequireClashToken: %q %v", tok, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[coach]\nprovider = \"oracle\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown provider")
	}
	if err := os.WriteFile(path, []byte("not = [toml"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestRequireTokens_Missing(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.RequireClashToken(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("clash: want ErrMissingToken, got %v", err)
	}
	if _, err := cfg.RequireRoyaleAPIToken(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("royaleapi: want ErrMissingToken, got %v", err)
	}
	if _, err := cfg.RequireAnthropicKey(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("anthropic: want ErrMissingToken, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Player.Tag = "#XYZ"
	cfg.Analysis.EventDays = 14
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Player.Tag != "#XYZ" || got.Analysis.EventDays != 14 {
		t.Errorf("round trip lost values: %+v", got)
	}
}
