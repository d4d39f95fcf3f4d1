package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func validBase() Config {
	return Config{
		Chat: ChatConfig{
			Token:           "test-token",
			WatchChannelID:  100,
			OutputChannelID: 200,
		},
		Recognizer: RecognizerConfig{
			Model:      "models/test.bin",
			BinaryPath: "./whisper",
		},
		Generator: GeneratorConfig{
			APIKey: "test-key",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Chat.Token = "" },
			wantErr: true,
		},
		{
			name:    "missing watch channel",
			mutate:  func(c *Config) { c.Chat.WatchChannelID = 0 },
			wantErr: true,
		},
		{
			name:    "missing recognizer model",
			mutate:  func(c *Config) { c.Recognizer.Model = "" },
			wantErr: true,
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Generator.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Generator.Temperature = 1.5 },
			wantErr: true,
		},
		{
			name:    "bad generator provider",
			mutate:  func(c *Config) { c.Generator.Provider = "oracle" },
			wantErr: true,
		},
		{
			name: "drive enabled without bucket",
			mutate: func(c *Config) {
				c.Drive.Enabled = true
				c.Drive.Provider = "s3"
				c.Drive.S3Endpoint = "s3.example.com"
				c.Drive.CredentialsFile = "creds.json"
			},
			wantErr: true,
		},
		{
			name: "drive poll interval too small",
			mutate: func(c *Config) {
				c.Drive.Enabled = true
				c.Drive.Provider = "local"
				c.Drive.FolderID = "data/drive"
				c.Drive.PollIntervalSec = 2
			},
			wantErr: true,
		},
		{
			name:    "inbox enabled without dir",
			mutate:  func(c *Config) { c.Inbox.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validBase()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Source.DownloadTimeoutSec != 300 {
		t.Errorf("DownloadTimeoutSec = %d, want 300", cfg.Source.DownloadTimeoutSec)
	}
	if cfg.Merger.GapMergeThresholdSec != 1.0 {
		t.Errorf("GapMergeThresholdSec = %v, want 1.0", cfg.Merger.GapMergeThresholdSec)
	}
	if cfg.Publisher.EmbedColor != 0x5865F2 {
		t.Errorf("EmbedColor = %#x, want 0x5865F2", cfg.Publisher.EmbedColor)
	}
	if cfg.Drive.PollIntervalSec != 30 {
		t.Errorf("PollIntervalSec = %d, want 30", cfg.Drive.PollIntervalSec)
	}
	if cfg.Generator.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.Generator.Model)
	}
}

const testYAML = `
chat:
  watch_channel_id: 111
  output_channel_id: 222

recognizer:
  model: "models/test.bin"
  binary_path: "./whisper"
  language: "en"

generator:
  provider: openai
  model: "gpt-4o-mini"

logging:
  level: "debug"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("LLM_API_KEY", "llm-key")

	path := writeTestConfig(t)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Chat.WatchChannelID != 111 {
		t.Errorf("WatchChannelID = %d, want 111", cfg.Chat.WatchChannelID)
	}
	if cfg.Chat.Token != "bot-token" {
		t.Errorf("Token = %q, want bot-token", cfg.Chat.Token)
	}
	if cfg.Generator.APIKey != "llm-key" {
		t.Errorf("APIKey = %q, want llm-key", cfg.Generator.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("RECOGNIZER_LANGUAGE", "vi")
	t.Setenv("GENERATOR_MAX_TOKENS", "2048")
	t.Setenv("PUBLISHER_EMBED_COLOR", "0xFF00FF")
	t.Setenv("SOURCE_DOMAIN_ALLOWLIST", "craig.chat, craig.horse")
	t.Setenv("PUBLISHER_INCLUDE_TRANSCRIPT", "true")

	cfg, err := Load(writeTestConfig(t), filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Recognizer.Language != "vi" {
		t.Errorf("Language = %q, want vi", cfg.Recognizer.Language)
	}
	if cfg.Generator.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", cfg.Generator.MaxTokens)
	}
	if cfg.Publisher.EmbedColor != 0xFF00FF {
		t.Errorf("EmbedColor = %#x, want 0xFF00FF", cfg.Publisher.EmbedColor)
	}
	want := []string{"craig.chat", "craig.horse"}
	if !reflect.DeepEqual(cfg.Source.DomainAllowlist, want) {
		t.Errorf("DomainAllowlist = %v, want %v", cfg.Source.DomainAllowlist, want)
	}
	if !cfg.Publisher.IncludeTranscript {
		t.Error("IncludeTranscript = false, want true")
	}
}

func TestLoadTwiceEqual(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("LLM_API_KEY", "llm-key")

	path := writeTestConfig(t)
	envPath := filepath.Join(t.TempDir(), "absent.env")

	first, err := Load(path, envPath)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Load(path, envPath)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("loading the same file twice yielded different configs")
	}
}

func TestLoadSecretsFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "DISCORD_BOT_TOKEN=file-token\nLLM_API_KEY=file-key\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(writeTestConfig(t), envPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chat.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Chat.Token)
	}
	if cfg.Generator.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.Generator.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("nonexistent.yaml", "nonexistent.env"); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
