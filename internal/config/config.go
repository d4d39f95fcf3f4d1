package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Chat       ChatConfig       `yaml:"chat"`
	Source     SourceConfig     `yaml:"source"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Merger     MergerConfig     `yaml:"merger"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	Drive      DriveConfig      `yaml:"drive"`
	Inbox      InboxConfig      `yaml:"inbox"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ChatConfig struct {
	// Token comes exclusively from the environment (.env), never from YAML.
	Token              string `yaml:"-"`
	GuildID            uint64 `yaml:"guild_id"`
	WatchChannelID     uint64 `yaml:"watch_channel_id"`
	OutputChannelID    uint64 `yaml:"output_channel_id"`
	ErrorMentionRoleID uint64 `yaml:"error_mention_role_id"`
}

type SourceConfig struct {
	BotID              string   `yaml:"bot_id"`
	DomainAllowlist    []string `yaml:"domain_allowlist"`
	Format             string   `yaml:"format"`
	Container          string   `yaml:"container"`
	DownloadTimeoutSec int      `yaml:"download_timeout_sec"`
	PollTimeoutSec     int      `yaml:"poll_timeout_sec"`
	MaxRetries         int      `yaml:"max_retries"`
}

type RecognizerConfig struct {
	Model       string `yaml:"model"`
	BinaryPath  string `yaml:"binary_path"`
	Language    string `yaml:"language"`
	Device      string `yaml:"device"`
	ComputeType string `yaml:"compute_type"`
	BeamSize    int    `yaml:"beam_size"`
	VADFilter   bool   `yaml:"vad_filter"`
	Threads     int    `yaml:"threads"`
}

type MergerConfig struct {
	GapMergeThresholdSec float64 `yaml:"gap_merge_threshold_sec"`
	MinSegmentChars      int     `yaml:"min_segment_chars"`
	TimestampFormat      string  `yaml:"timestamp_format"`
}

type GeneratorConfig struct {
	// APIKey comes exclusively from the environment (.env), never from YAML.
	APIKey             string  `yaml:"-"`
	Provider           string  `yaml:"provider"`
	BaseURL            string  `yaml:"base_url"`
	Model              string  `yaml:"model"`
	MaxTokens          int     `yaml:"max_tokens"`
	Temperature        float64 `yaml:"temperature"`
	PromptTemplatePath string  `yaml:"prompt_template_path"`
	MaxRetries         int     `yaml:"max_retries"`
}

type PublisherConfig struct {
	EmbedColor        int  `yaml:"embed_color"`
	MaxEmbedLength    int  `yaml:"max_embed_length"`
	IncludeTranscript bool `yaml:"include_transcript"`
	AttachDocx        bool `yaml:"attach_docx"`
}

type DriveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Provider        string `yaml:"provider"`
	FolderID        string `yaml:"folder_id"`
	FilePattern     string `yaml:"file_pattern"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
	CredentialsFile string `yaml:"credentials_file"`
	StateFile       string `yaml:"state_file"`
	S3Endpoint      string `yaml:"s3_endpoint"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3UseSSL        bool   `yaml:"s3_use_ssl"`
}

type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type PipelineConfig struct {
	ShutdownGraceSec int `yaml:"shutdown_grace_sec"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxBytes    int    `yaml:"max_bytes"`
	BackupCount int    `yaml:"backup_count"`
}

// Validate applies defaults and checks every section, collecting all
// problems into a single error so startup reports the full list at once.
func (c *Config) Validate() error {
	c.applyDefaults()

	var problems []string

	if c.Chat.Token == "" {
		problems = append(problems, "chat token is required (set DISCORD_BOT_TOKEN or DISCORD_TOKEN env var)")
	}
	if c.Chat.WatchChannelID == 0 {
		problems = append(problems, "chat.watch_channel_id must be a positive integer")
	}
	if c.Chat.OutputChannelID == 0 {
		problems = append(problems, "chat.output_channel_id must be a positive integer")
	}

	if len(c.Source.DomainAllowlist) == 0 {
		problems = append(problems, "source.domain_allowlist must list at least one host")
	}
	if c.Source.DownloadTimeoutSec < 1 {
		problems = append(problems, "source.download_timeout_sec must be >= 1")
	}
	if c.Source.PollTimeoutSec < 1 {
		problems = append(problems, "source.poll_timeout_sec must be >= 1")
	}
	if c.Source.MaxRetries < 0 {
		problems = append(problems, "source.max_retries must be >= 0")
	}

	if c.Recognizer.Model == "" {
		problems = append(problems, "recognizer.model is required")
	}
	if c.Recognizer.BinaryPath == "" {
		problems = append(problems, "recognizer.binary_path is required")
	}
	if c.Recognizer.BeamSize < 1 {
		problems = append(problems, "recognizer.beam_size must be >= 1")
	}

	if c.Merger.GapMergeThresholdSec < 0 {
		problems = append(problems, "merger.gap_merge_threshold_sec must be >= 0")
	}
	if c.Merger.MinSegmentChars < 0 {
		problems = append(problems, "merger.min_segment_chars must be >= 0")
	}

	switch c.Generator.Provider {
	case "openai", "gemini":
	default:
		problems = append(problems, fmt.Sprintf("generator.provider %q is not valid (choose openai or gemini)", c.Generator.Provider))
	}
	if c.Generator.APIKey == "" {
		problems = append(problems, "generator API key is required (set LLM_API_KEY or GEMINI_API_KEY env var)")
	}
	if c.Generator.Temperature < 0.0 || c.Generator.Temperature > 1.0 {
		problems = append(problems, "generator.temperature must be between 0.0 and 1.0")
	}
	if c.Generator.MaxTokens < 1 {
		problems = append(problems, "generator.max_tokens must be >= 1")
	}
	if c.Generator.MaxRetries < 0 {
		problems = append(problems, "generator.max_retries must be >= 0")
	}

	if c.Publisher.MaxEmbedLength < 1 {
		problems = append(problems, "publisher.max_embed_length must be >= 1")
	}

	if c.Drive.Enabled {
		switch c.Drive.Provider {
		case "s3":
			if c.Drive.S3Endpoint == "" {
				problems = append(problems, "drive.s3_endpoint is required when drive.provider is s3")
			}
			if c.Drive.S3Bucket == "" {
				problems = append(problems, "drive.s3_bucket is required when drive.provider is s3")
			}
			if c.Drive.CredentialsFile == "" {
				problems = append(problems, "drive.credentials_file is required when drive.provider is s3")
			}
		case "local":
			if c.Drive.FolderID == "" {
				problems = append(problems, "drive.folder_id is required when drive.provider is local")
			}
		default:
			problems = append(problems, fmt.Sprintf("drive.provider %q is not valid (choose s3 or local)", c.Drive.Provider))
		}
		if c.Drive.PollIntervalSec < 5 {
			problems = append(problems, "drive.poll_interval_sec must be >= 5")
		}
	}

	if c.Inbox.Enabled && c.Inbox.Dir == "" {
		problems = append(problems, "inbox.dir is required when inbox.enabled is true")
	}

	if c.Pipeline.ShutdownGraceSec < 1 {
		problems = append(problems, "pipeline.shutdown_grace_sec must be >= 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Source.BotID == "" {
		c.Source.BotID = "272937604339466240"
	}
	if len(c.Source.DomainAllowlist) == 0 {
		c.Source.DomainAllowlist = []string{"craig.chat"}
	}
	if c.Source.Format == "" {
		c.Source.Format = "aac"
	}
	if c.Source.Container == "" {
		c.Source.Container = "zip"
	}
	if c.Source.DownloadTimeoutSec == 0 {
		c.Source.DownloadTimeoutSec = 300
	}
	if c.Source.PollTimeoutSec == 0 {
		c.Source.PollTimeoutSec = 600
	}

	if c.Recognizer.Language == "" {
		c.Recognizer.Language = "ja"
	}
	if c.Recognizer.Device == "" {
		c.Recognizer.Device = "cuda"
	}
	if c.Recognizer.ComputeType == "" {
		c.Recognizer.ComputeType = "float16"
	}
	if c.Recognizer.BeamSize == 0 {
		c.Recognizer.BeamSize = 5
	}
	if c.Recognizer.Threads == 0 {
		c.Recognizer.Threads = 8
	}

	if c.Merger.GapMergeThresholdSec == 0 {
		c.Merger.GapMergeThresholdSec = 1.0
	}
	if c.Merger.MinSegmentChars == 0 {
		c.Merger.MinSegmentChars = 1
	}
	if c.Merger.TimestampFormat == "" {
		c.Merger.TimestampFormat = "[{mm}:{ss}]"
	}

	if c.Generator.Provider == "" {
		c.Generator.Provider = "openai"
	}
	if c.Generator.BaseURL == "" {
		c.Generator.BaseURL = "https://api.openai.com/v1"
	}
	if c.Generator.Model == "" {
		if c.Generator.Provider == "gemini" {
			c.Generator.Model = "gemini-2.5-flash"
		} else {
			c.Generator.Model = "gpt-4o-mini"
		}
	}
	if c.Generator.MaxTokens == 0 {
		c.Generator.MaxTokens = 4096
	}
	if c.Generator.Temperature == 0 {
		c.Generator.Temperature = 0.3
	}
	if c.Generator.PromptTemplatePath == "" {
		c.Generator.PromptTemplatePath = "prompts/minutes.txt"
	}
	if c.Generator.MaxRetries == 0 {
		c.Generator.MaxRetries = 2
	}

	if c.Publisher.EmbedColor == 0 {
		c.Publisher.EmbedColor = 0x5865F2
	}
	if c.Publisher.MaxEmbedLength == 0 {
		c.Publisher.MaxEmbedLength = 4000
	}

	if c.Drive.Provider == "" {
		c.Drive.Provider = "s3"
	}
	if c.Drive.FilePattern == "" {
		c.Drive.FilePattern = "craig_*.zip"
	}
	if c.Drive.PollIntervalSec == 0 {
		c.Drive.PollIntervalSec = 30
	}
	if c.Drive.StateFile == "" {
		c.Drive.StateFile = "processed_files.json"
	}

	if c.Pipeline.ShutdownGraceSec == 0 {
		c.Pipeline.ShutdownGraceSec = 30
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		c.Logging.File = "logs/bot.log"
	}
	if c.Logging.MaxBytes == 0 {
		c.Logging.MaxBytes = 10 * 1024 * 1024
	}
	if c.Logging.BackupCount == 0 {
		c.Logging.BackupCount = 5
	}
}
