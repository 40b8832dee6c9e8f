package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// memBackend is an in-memory ConfigBackend for tests.
type memBackend struct {
	data map[string]any
}

func newMemBackend(kv map[string]any) *memBackend {
	if kv == nil {
		kv = make(map[string]any)
	}
	return &memBackend{data: kv}
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if s, ok := v.(string); ok {
		return s, true, nil
	}
	return "", true, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return 0, false, nil
	}
	i, _ := v.(int)
	return i, true, nil
}

func (m *memBackend) SetString(key, val string) error {
	m.data[key] = val
	return nil
}

func (m *memBackend) SetInt(key string, val int) error {
	m.data[key] = val
	return nil
}

func (m *memBackend) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
	t.Setenv("OPENAI_API_KEY", "")
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_API_KEY", "test-key")

	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.LLM.Provider != ProviderOpenAI {
		t.Errorf("LLM.Provider = %q, want %q", cfg.LLM.Provider, ProviderOpenAI)
	}
	if cfg.LLM.Model != "gpt-4" {
		t.Errorf("LLM.Model = %q, want gpt-4", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM.Temperature = %v, want 0.3", cfg.LLM.Temperature)
	}
	if d, _ := cfg.LLMTimeout(); d != 60*time.Second {
		t.Errorf("LLMTimeout = %v, want 60s", d)
	}
	if cfg.Export.Dir != "." {
		t.Errorf("Export.Dir = %q, want .", cfg.Export.Dir)
	}
	if cfg.Recommend.StrictCatalog {
		t.Error("Recommend.StrictCatalog should default to false")
	}
	if !strings.HasSuffix(cfg.Storage.DataDir, "hireagent") {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)
	b := newMemBackend(map[string]any{
		"server.port":              8080,
		"llm.provider":             "ollama",
		"llm.model":                "llama3.2",
		"llm.temperature":          "0.7",
		"recommend.strict_catalog": "true",
		"log.level":                "debug",
	})

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.LLM.Provider != ProviderOllama || cfg.LLM.Model != "llama3.2" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM.Temperature = %v, want 0.7", cfg.LLM.Temperature)
	}
	if !cfg.Recommend.StrictCatalog {
		t.Error("Recommend.StrictCatalog = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_API_KEY", "env-key")
	t.Setenv("HIREAGENT_LLM_MODEL", "gpt-4o")
	t.Setenv("HIREAGENT_SERVER_PORT", "9090")
	t.Setenv("HIREAGENT_RECOMMEND_STRICT_CATALOG", "1")

	cfg, err := loadWith(newMemBackend(map[string]any{"llm.model": "file-model"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("LLM.APIKey = %q, want env-key", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("LLM.Model = %q, want gpt-4o", cfg.LLM.Model)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Recommend.StrictCatalog {
		t.Error("StrictCatalog env override ignored")
	}
}

func TestInvalidEnvKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_API_KEY", "k")
	t.Setenv("HIREAGENT_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want default 4000", cfg.Server.Port)
	}
}

func TestOpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "sk-fallback" {
		t.Errorf("LLM.APIKey = %q, want sk-fallback", cfg.LLM.APIKey)
	}
}

func TestSecretNotReadFromBackend(t *testing.T) {
	clearEnv(t)
	_, err := loadWith(newMemBackend(map[string]any{"llm.api_key": "from-file"}))
	if err == nil {
		t.Fatal("expected missing API key error")
	}
	if !strings.Contains(err.Error(), "HIREAGENT_LLM_API_KEY") {
		t.Errorf("error should name the env var: %v", err)
	}
}

func TestOllamaNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_PROVIDER", "ollama")
	if _, err := loadWith(newMemBackend(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := defaults()
	base.LLM.APIKey = "k"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }},
		{"bad timeout", func(c *Config) { c.LLM.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.LLM.Timeout = "-1s" }},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 3 }},
		{"empty model", func(c *Config) { c.LLM.Model = "" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Errorf("defaults with key should validate: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hireagent", "config.yaml")

	b := newFileBackend(path)
	if err := setKeyWith(b, "llm.model", "gpt-4o-mini"); err != nil {
		t.Fatalf("set llm.model: %v", err)
	}
	if err := setKeyWith(b, "server.port", "5050"); err != nil {
		t.Fatalf("set server.port: %v", err)
	}
	if err := setKeyWith(b, "recommend.strict_catalog", "true"); err != nil {
		t.Fatalf("set strict_catalog: %v", err)
	}

	reloaded := newFileBackend(path)
	if v, ok, _ := reloaded.GetString("llm.model"); !ok || v != "gpt-4o-mini" {
		t.Errorf("llm.model = %q, %v", v, ok)
	}
	if v, ok, err := reloaded.GetInt("server.port"); !ok || err != nil || v != 5050 {
		t.Errorf("server.port = %d, %v, %v", v, ok, err)
	}

	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_API_KEY", "k")
	cfg, err := loadWith(reloaded)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 5050 || !cfg.Recommend.StrictCatalog {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFileBackendNativeYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server.port: 7000\nllm.temperature: 0.1\nrecommend.strict_catalog: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	clearEnv(t)
	t.Setenv("HIREAGENT_LLM_API_KEY", "k")
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.LLM.Temperature != 0.1 || !cfg.Recommend.StrictCatalog {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSetKeyRejects(t *testing.T) {
	b := newMemBackend(nil)
	if err := setKeyWith(b, "llm.api_key", "x"); err == nil {
		t.Error("setting a secret should fail")
	}
	if err := setKeyWith(b, "nope", "x"); err == nil {
		t.Error("unknown key should fail")
	}
	if err := setKeyWith(b, "server.port", "abc"); err == nil {
		t.Error("non-integer port should fail")
	}
	if err := setKeyWith(b, "recommend.strict_catalog", "maybe"); err == nil {
		t.Error("non-bool should fail")
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.LLM.APIKey = "sk-secret"
	for _, info := range ShowAll(cfg) {
		if info.Key == "llm.api_key" || info.Value == "sk-secret" {
			t.Fatalf("secret leaked: %+v", info)
		}
	}
	if len(ShowAll(cfg)) != len(ValidKeys()) {
		t.Error("ShowAll and ValidKeys disagree")
	}
}

func TestConfigFilePathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := configFilePath(); got != filepath.Join("/tmp/xdg", "hireagent", "config.yaml") {
		t.Errorf("configFilePath() = %q", got)
	}
}

func TestResolveSkipsValidation(t *testing.T) {
	clearEnv(t)
	cfg, err := resolve(newMemBackend(map[string]any{"storage.data_dir": "/srv/hireagent"}))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Storage.DataDir != "/srv/hireagent" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Validate() == nil {
		t.Error("expected Validate to report the missing key")
	}
}
