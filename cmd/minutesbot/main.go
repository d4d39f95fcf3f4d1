package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/detect"
	"github.com/nguyentantai21042004/minutes-flow/internal/discord"
	"github.com/nguyentantai21042004/minutes-flow/internal/drive"
	"github.com/nguyentantai21042004/minutes-flow/internal/inbox"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/pipeline"
	"github.com/nguyentantai21042004/minutes-flow/internal/publish"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
	"github.com/nguyentantai21042004/minutes-flow/internal/source/cook"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcribe"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// Exit codes: 0 graceful shutdown, 1 configuration or startup failure,
// 2 unexpected termination.
const (
	exitOK      = 0
	exitStartup = 1
	exitRuntime = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "./config.yaml", "path to the YAML configuration file")
	logLevel := flag.String("log-level", "", "override logging.level from the config")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath, ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitStartup
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	log, err := logger.New(logger.Options{
		Level:       level,
		File:        cfg.Logging.File,
		MaxBytes:    cfg.Logging.MaxBytes,
		BackupCount: cfg.Logging.BackupCount,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return exitStartup
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Minutes Pipeline")
	log.Info(ctx, "========================================")

	// Recognition engine loads once at startup and stays resident.
	exec := executor.New()
	engine := transcribe.NewWhisperEngine(cfg.Recognizer, exec, log)
	transcriber := transcribe.New(engine, log)
	if err := transcriber.Load(ctx); err != nil {
		log.Error(ctx, "Recognizer startup failed: %v", err)
		return exitStartup
	}

	generator := minutes.New(cfg.Generator, newLLMClient(cfg.Generator), log)
	if err := generator.Load(); err != nil {
		log.Error(ctx, "Generator startup failed: %v", err)
		return exitStartup
	}

	session, err := discord.New(cfg.Chat.Token, log)
	if err != nil {
		log.Error(ctx, "Discord session setup failed: %v", err)
		return exitStartup
	}

	publisher := publish.New(session, cfg.Chat, cfg.Publisher, log)

	var driveFolder drive.Folder
	if cfg.Drive.Enabled {
		driveFolder, err = newDriveFolder(cfg.Drive)
		if err != nil {
			log.Error(ctx, "Drive folder setup failed: %v", err)
			return exitStartup
		}
	}

	httpClient := &http.Client{}
	orch := pipeline.New(
		func(rec source.Recording) (source.Source, error) {
			switch rec.Trigger {
			case source.TriggerPanelEdit:
				return cook.New(httpClient, rec, cfg.Source, log), nil
			case source.TriggerDriveFile:
				return drive.NewArchiveSource(driveFolder, rec.DriveFileID), nil
			case source.TriggerInboxFile:
				return source.NewArchiveFile(rec.LocalArchive), nil
			default:
				return nil, fmt.Errorf("unknown trigger kind %q", rec.Trigger)
			}
		},
		transcriber,
		generator,
		publisher,
		cfg.Merger,
		log,
	)

	// The cancellable context stops the watchers; pipelines already in
	// flight run on the base context so they can finish during shutdown.
	pipeCtx := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Panel-edit trigger: detection runs on the gateway goroutine, the
	// pipeline is fired as a detached task.
	detector := detect.New(cfg.Source.BotID, cfg.Chat.WatchChannelID, cfg.Source.DomainAllowlist, log)
	session.OnMessageEdit(func(payload []byte) {
		rec, ok := detector.Parse(payload)
		if !ok {
			return
		}
		log.Info(ctx, "Recording ended detected: %s", rec.ID)
		go orch.Run(pipeCtx, *rec)
	})

	if err := session.Open(); err != nil {
		log.Error(ctx, "Discord gateway connect failed: %v", err)
		return exitStartup
	}
	defer session.Close()
	log.Info(ctx, "Gateway connected; watching channel %d", cfg.Chat.WatchChannelID)

	errChan := make(chan error, 2)

	if cfg.Drive.Enabled {
		processed, err := drive.LoadProcessedSet(cfg.Drive.StateFile)
		if err != nil {
			log.Error(ctx, "Processed-set load failed: %v", err)
			return exitStartup
		}
		log.Info(ctx, "Processed set loaded: %d entries", processed.Len())

		watcher := drive.New(driveFolder, cfg.Drive, processed,
			func(_ context.Context, rec source.Recording) error {
				_, err := orch.Run(pipeCtx, rec)
				return err
			}, log)
		go func() {
			if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	}

	if cfg.Inbox.Enabled {
		inboxWatcher, err := inbox.New(cfg.Inbox.Dir, cfg.Drive.FilePattern,
			func(_ context.Context, rec source.Recording, archivePath string) {
				orch.Run(pipeCtx, rec)
			}, log)
		if err != nil {
			log.Error(ctx, "Inbox watcher setup failed: %v", err)
			return exitStartup
		}
		defer inboxWatcher.Stop()
		go func() {
			if err := inboxWatcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- err
			}
		}()
	}

	log.Info(ctx, "Minutes pipeline is ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	exitCode := exitOK
	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Watcher terminated unexpectedly: %v", err)
		exitCode = exitRuntime
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()
	orch.Shutdown(time.Duration(cfg.Pipeline.ShutdownGraceSec) * time.Second)

	log.Info(ctx, "Minutes pipeline stopped")
	return exitCode
}

func newLLMClient(cfg config.GeneratorConfig) llm.Client {
	if cfg.Provider == "gemini" {
		return llm.NewGemini(cfg.APIKey)
	}
	return llm.NewOpenAI(nil, cfg.BaseURL, cfg.APIKey)
}

func newDriveFolder(cfg config.DriveConfig) (drive.Folder, error) {
	if cfg.Provider == "local" {
		return drive.NewLocalFolder(cfg.FolderID), nil
	}
	return drive.NewS3Folder(cfg)
}
