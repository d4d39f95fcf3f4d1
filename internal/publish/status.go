package publish

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

// Status line texts, one per pipeline stage.
const (
	StatusDownloading = "Downloading audio files..."
	StatusGenerating  = "Generating minutes..."
	StatusPosting     = "Posting minutes..."
)

// StatusTranscribing renders the per-speaker transcription progress text.
func StatusTranscribing(current, total int, name string) string {
	return fmt.Sprintf("Transcribing %d/%d (%s)...", current, total, name)
}

// StatusComplete renders the terminal success text.
func StatusComplete(elapsedMS int64) string {
	return fmt.Sprintf("Complete (%dms)", elapsedMS)
}

// StatusFailed renders the terminal failure text for a stage.
func StatusFailed(stage string) string {
	return fmt.Sprintf("Failed: %s", stage)
}

// Status is a single evolving message in the output channel. All writes
// are non-raising: a failed send or edit is logged and swallowed so the
// pipeline never aborts over a progress update.
type Status struct {
	messenger Messenger
	channelID uint64
	logger    logger.Logger
	messageID uint64
}

func (p *implPublisher) NewStatus() *Status {
	return &Status{
		messenger: p.messenger,
		channelID: p.outputChannelID,
		logger:    p.logger,
	}
}

// Update creates the status message on first call and edits it afterwards.
func (s *Status) Update(ctx context.Context, text string) {
	if s.messageID == 0 {
		id, err := s.messenger.Send(ctx, s.channelID, text)
		if err != nil {
			s.logger.Warn(ctx, "Status send failed (non-critical): %v", err)
			return
		}
		s.messageID = id
		return
	}
	if err := s.messenger.Edit(ctx, s.channelID, s.messageID, text); err != nil {
		s.logger.Warn(ctx, "Status edit failed (non-critical): %v", err)
	}
}

// MessageID returns the id of the status message, or 0 before the first
// successful send.
func (s *Status) MessageID() uint64 {
	return s.messageID
}
