package config

import (
	"os"
	"strings"
	"testing"
)

const validYAML = `
server:
  listen_addr: ":9090"
  log_level: info
providers:
  llm:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  stt:
    name: whisper
    options:
      model_path: ./models/ggml-base.en.bin
  tts:
    name: elevenlabs
    api_key: el-test
  tts_fallback:
    name: coqui
    base_url: http://localhost:5002
interview:
  preset: demo
  max_questions: 5
  enable_interruptions: true
storage:
  snapshot_dir: ./data/sessions
`

func TestLoadFromReaderValid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Providers.LLM.Name != "openai" {
		t.Errorf("llm.name = %q, want openai", cfg.Providers.LLM.Name)
	}
	if got := cfg.Providers.STT.Options["model_path"]; got != "./models/ggml-base.en.bin" {
		t.Errorf("stt.options.model_path = %v", got)
	}
	if cfg.Providers.TTSFallback.Name != "coqui" {
		t.Errorf("tts_fallback.name = %q, want coqui", cfg.Providers.TTSFallback.Name)
	}
}

func TestLoadFromReaderUnknownField(t *testing.T) {
	yaml := `
providers:
  llm:
    name: openai
  unknown_stage:
    name: bogus
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReaderMissingLLM(t *testing.T) {
	yaml := `
interview:
  preset: demo
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error when providers.llm is absent, got nil")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Interview.Preset != PresetDemo {
		t.Errorf("preset = %q, want demo", cfg.Interview.Preset)
	}
	if cfg.Interview.MaxQuestions != 5 {
		t.Errorf("max_questions = %d, want 5", cfg.Interview.MaxQuestions)
	}
	if cfg.Interview.MaxInterruptions != 2 {
		t.Errorf("max_interruptions = %d, want 2 for demo", cfg.Interview.MaxInterruptions)
	}
	want := []int{0, 1, 2, 3}
	if len(cfg.Interview.SkipClaimExtractionFor) != len(want) {
		t.Fatalf("skip_claim_extraction_for = %v, want %v", cfg.Interview.SkipClaimExtractionFor, want)
	}
	for i, v := range want {
		if cfg.Interview.SkipClaimExtractionFor[i] != v {
			t.Errorf("skip_claim_extraction_for[%d] = %d, want %d", i, cfg.Interview.SkipClaimExtractionFor[i], v)
		}
	}
}

func TestApplyDefaultsProductionInterruptions(t *testing.T) {
	cfg := &Config{}
	cfg.Interview.Preset = PresetProduction
	ApplyDefaults(cfg)
	if cfg.Interview.MaxInterruptions != 5 {
		t.Errorf("max_interruptions = %d, want 5 for production", cfg.Interview.MaxInterruptions)
	}
}

func TestValidateInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }},
		{"bad preset", func(c *Config) { c.Interview.Preset = "marathon" }},
		{"negative skip index", func(c *Config) { c.Interview.SkipClaimExtractionFor = []int{-1} }},
		{"tls without key", func(c *Config) { c.Server.TLS = &TLSConfig{CertFile: "cert.pem"} }},
		{"speak questions without tts", func(c *Config) { c.Interview.SpeakQuestions = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Providers.LLM.Name = "openai"
			ApplyDefaults(cfg)
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-from-env")

	path := t.TempDir() + "/config.yaml"
	yaml := strings.Replace(validYAML, "sk-test", "${TEST_LLM_KEY}", 1)
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.LLM.APIKey != "sk-from-env" {
		t.Errorf("llm.api_key = %q, want sk-from-env", cfg.Providers.LLM.APIKey)
	}
}
