package transcribe

import (
	"sync"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implTranscriber struct {
	engine Engine
	logger logger.Logger

	// accel serializes every recognition call in the process. Concurrent
	// pipelines all funnel through the one Transcriber built in main, so
	// this mutex is the process-wide accelerator guard.
	accel sync.Mutex
}

// New creates a Transcriber over the given recognition engine.
func New(engine Engine, log logger.Logger) Transcriber {
	return &implTranscriber{
		engine: engine,
		logger: log,
	}
}
