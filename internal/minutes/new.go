package minutes

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implGenerator struct {
	cfg      config.GeneratorConfig
	client   llm.Client
	logger   logger.Logger
	template string
}

// New creates a Generator over the given LLM client.
func New(cfg config.GeneratorConfig, client llm.Client, log logger.Logger) Generator {
	return &implGenerator{
		cfg:    cfg,
		client: client,
		logger: log,
	}
}
