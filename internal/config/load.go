package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads configPath, overlays SECTION_KEY environment variables,
// injects secrets from the environment (optionally loaded from envPath)
// and validates the result.
//
// Precedence (highest wins): environment variables, YAML values, defaults.
func Load(configPath, envPath string) (*Config, error) {
	// .env does not override variables already present in the environment.
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Secrets never come from YAML.
	cfg.Chat.Token = firstEnv("DISCORD_BOT_TOKEN", "DISCORD_TOKEN")
	cfg.Generator.APIKey = firstEnv("LLM_API_KEY", "GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// applyEnvOverrides overlays SECTION_KEY environment variables onto cfg.
// The table is explicit so an override typo surfaces as "unset", never as
// a silently coerced wrong field.
func applyEnvOverrides(cfg *Config) error {
	overrides := []struct {
		key   string
		apply func(string) error
	}{
		{"CHAT_GUILD_ID", setU64(&cfg.Chat.GuildID)},
		{"CHAT_WATCH_CHANNEL_ID", setU64(&cfg.Chat.WatchChannelID)},
		{"CHAT_OUTPUT_CHANNEL_ID", setU64(&cfg.Chat.OutputChannelID)},
		{"CHAT_ERROR_MENTION_ROLE_ID", setU64(&cfg.Chat.ErrorMentionRoleID)},

		{"SOURCE_BOT_ID", setStr(&cfg.Source.BotID)},
		{"SOURCE_DOMAIN_ALLOWLIST", setStrList(&cfg.Source.DomainAllowlist)},
		{"SOURCE_FORMAT", setStr(&cfg.Source.Format)},
		{"SOURCE_CONTAINER", setStr(&cfg.Source.Container)},
		{"SOURCE_DOWNLOAD_TIMEOUT_SEC", setInt(&cfg.Source.DownloadTimeoutSec)},
		{"SOURCE_POLL_TIMEOUT_SEC", setInt(&cfg.Source.PollTimeoutSec)},
		{"SOURCE_MAX_RETRIES", setInt(&cfg.Source.MaxRetries)},

		{"RECOGNIZER_MODEL", setStr(&cfg.Recognizer.Model)},
		{"RECOGNIZER_BINARY_PATH", setStr(&cfg.Recognizer.BinaryPath)},
		{"RECOGNIZER_LANGUAGE", setStr(&cfg.Recognizer.Language)},
		{"RECOGNIZER_DEVICE", setStr(&cfg.Recognizer.Device)},
		{"RECOGNIZER_COMPUTE_TYPE", setStr(&cfg.Recognizer.ComputeType)},
		{"RECOGNIZER_BEAM_SIZE", setInt(&cfg.Recognizer.BeamSize)},
		{"RECOGNIZER_VAD_FILTER", setBool(&cfg.Recognizer.VADFilter)},
		{"RECOGNIZER_THREADS", setInt(&cfg.Recognizer.Threads)},

		{"MERGER_GAP_MERGE_THRESHOLD_SEC", setF64(&cfg.Merger.GapMergeThresholdSec)},
		{"MERGER_MIN_SEGMENT_CHARS", setInt(&cfg.Merger.MinSegmentChars)},
		{"MERGER_TIMESTAMP_FORMAT", setStr(&cfg.Merger.TimestampFormat)},

		{"GENERATOR_PROVIDER", setStr(&cfg.Generator.Provider)},
		{"GENERATOR_BASE_URL", setStr(&cfg.Generator.BaseURL)},
		{"GENERATOR_MODEL", setStr(&cfg.Generator.Model)},
		{"GENERATOR_MAX_TOKENS", setInt(&cfg.Generator.MaxTokens)},
		{"GENERATOR_TEMPERATURE", setF64(&cfg.Generator.Temperature)},
		{"GENERATOR_PROMPT_TEMPLATE_PATH", setStr(&cfg.Generator.PromptTemplatePath)},
		{"GENERATOR_MAX_RETRIES", setInt(&cfg.Generator.MaxRetries)},

		{"PUBLISHER_EMBED_COLOR", setInt(&cfg.Publisher.EmbedColor)},
		{"PUBLISHER_MAX_EMBED_LENGTH", setInt(&cfg.Publisher.MaxEmbedLength)},
		{"PUBLISHER_INCLUDE_TRANSCRIPT", setBool(&cfg.Publisher.IncludeTranscript)},
		{"PUBLISHER_ATTACH_DOCX", setBool(&cfg.Publisher.AttachDocx)},

		{"DRIVE_ENABLED", setBool(&cfg.Drive.Enabled)},
		{"DRIVE_PROVIDER", setStr(&cfg.Drive.Provider)},
		{"DRIVE_FOLDER_ID", setStr(&cfg.Drive.FolderID)},
		{"DRIVE_FILE_PATTERN", setStr(&cfg.Drive.FilePattern)},
		{"DRIVE_POLL_INTERVAL_SEC", setInt(&cfg.Drive.PollIntervalSec)},
		{"DRIVE_CREDENTIALS_FILE", setStr(&cfg.Drive.CredentialsFile)},
		{"DRIVE_STATE_FILE", setStr(&cfg.Drive.StateFile)},
		{"DRIVE_S3_ENDPOINT", setStr(&cfg.Drive.S3Endpoint)},
		{"DRIVE_S3_BUCKET", setStr(&cfg.Drive.S3Bucket)},
		{"DRIVE_S3_USE_SSL", setBool(&cfg.Drive.S3UseSSL)},

		{"INBOX_ENABLED", setBool(&cfg.Inbox.Enabled)},
		{"INBOX_DIR", setStr(&cfg.Inbox.Dir)},

		{"PIPELINE_SHUTDOWN_GRACE_SEC", setInt(&cfg.Pipeline.ShutdownGraceSec)},

		{"LOGGING_LEVEL", setStr(&cfg.Logging.Level)},
		{"LOGGING_FILE", setStr(&cfg.Logging.File)},
		{"LOGGING_MAX_BYTES", setInt(&cfg.Logging.MaxBytes)},
		{"LOGGING_BACKUP_COUNT", setInt(&cfg.Logging.BackupCount)},
	}

	for _, o := range overrides {
		val, ok := os.LookupEnv(o.key)
		if !ok {
			continue
		}
		if err := o.apply(val); err != nil {
			return fmt.Errorf("invalid value for %s: %w", o.key, err)
		}
	}
	return nil
}

func setStr(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setStrList(dst *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		// Base 0 accepts 0x / 0o / 0b prefixes (embed colors in hex).
		n, err := strconv.ParseInt(v, 0, 64)
		if err != nil {
			return err
		}
		*dst = int(n)
		return nil
	}
}

func setU64(dst *uint64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setF64(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			*dst = true
		default:
			*dst = false
		}
		return nil
	}
}
