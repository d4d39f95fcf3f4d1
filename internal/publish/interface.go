package publish

import "context"

// File is an attachment on an outgoing message.
type File struct {
	Name string
	Data []byte
}

// EmbedField is one name/value pair on an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is the chat-platform-neutral rich message body.
type Embed struct {
	Title       string
	Description string
	Color       int
	Footer      string
	Fields      []EmbedField
}

// Messenger is the chat surface the publisher writes to. The concrete
// gateway binding lives outside this package.
type Messenger interface {
	Send(ctx context.Context, channelID uint64, content string) (uint64, error)
	Edit(ctx context.Context, channelID, messageID uint64, content string) error
	SendEmbed(ctx context.Context, channelID uint64, content string, embed Embed, files []File) (uint64, error)
}

// RetryableError marks messenger failures worth one more attempt
// (server-side errors, transport failures).
type RetryableError interface {
	error
	Retryable() bool
}

// Post carries everything the final minutes message needs.
type Post struct {
	RecordingID string
	Date        string
	Speakers    []string
	DurationSec float64
	Minutes     string
	Transcript  string
	// WorkDir is the pipeline temp root, used for transient render output.
	WorkDir string
}

// Publisher owns all writes to the output channel: the evolving status
// line, the final minutes post and error embeds.
type Publisher interface {
	// NewStatus returns a status line bound to the output channel. Its
	// updates never fail the caller.
	NewStatus() *Status
	// PostMinutes sends the summary embed plus attachments and returns the
	// sent message ids.
	PostMinutes(ctx context.Context, post Post) ([]uint64, error)
	// PostError reports a failed pipeline run. Best-effort.
	PostError(ctx context.Context, stage, message, recordingID string)
}
