package publish

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implPublisher struct {
	messenger       Messenger
	outputChannelID uint64
	mentionRoleID   uint64
	cfg             config.PublisherConfig
	logger          logger.Logger
}

// New creates a Publisher writing to the configured output channel.
func New(m Messenger, chat config.ChatConfig, cfg config.PublisherConfig, log logger.Logger) Publisher {
	return &implPublisher{
		messenger:       m,
		outputChannelID: chat.OutputChannelID,
		mentionRoleID:   chat.ErrorMentionRoleID,
		cfg:             cfg,
		logger:          log,
	}
}
