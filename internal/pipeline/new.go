package pipeline

import (
	"sync"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
	"github.com/nguyentantai21042004/minutes-flow/internal/publish"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcribe"
)

type implOrchestrator struct {
	sources     SourceFactory
	transcriber transcribe.Transcriber
	generator   minutes.Generator
	publisher   publish.Publisher
	mergerCfg   config.MergerConfig
	logger      logger.Logger

	mu      sync.Mutex
	active  map[string]struct{}
	stopped bool
	wg      sync.WaitGroup
}

// New wires the pipeline orchestrator. All collaborators are explicit
// dependencies; nothing is reached through package globals.
func New(
	sources SourceFactory,
	transcriber transcribe.Transcriber,
	generator minutes.Generator,
	publisher publish.Publisher,
	mergerCfg config.MergerConfig,
	log logger.Logger,
) Orchestrator {
	return &implOrchestrator{
		sources:     sources,
		transcriber: transcriber,
		generator:   generator,
		publisher:   publisher,
		mergerCfg:   mergerCfg,
		logger:      log,
		active:      make(map[string]struct{}),
	}
}
