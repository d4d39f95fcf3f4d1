// Package discord binds the gateway and REST surface the rest of the
// service only knows through interfaces.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/publish"
)

// EditHandler receives the raw JSON of every message-edit event.
type EditHandler func(payload []byte)

// Session wraps a discordgo session. It implements publish.Messenger.
type Session struct {
	s      *discordgo.Session
	logger logger.Logger
}

// New creates a gateway session for the given bot token.
func New(token string, log logger.Logger) (*Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return &Session{s: s, logger: log}, nil
}

// Open connects to the gateway.
func (s *Session) Open() error {
	return s.s.Open()
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	return s.s.Close()
}

// OnMessageEdit registers fn for message-edit events. The event is
// re-serialized so detection can run over raw JSON text rather than the
// library's typed component tree.
func (s *Session) OnMessageEdit(fn EditHandler) {
	s.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) {
		if m.Message == nil {
			return
		}
		data, err := json.Marshal(m.Message)
		if err != nil {
			s.logger.Warn(context.Background(), "Message-edit payload marshal failed: %v", err)
			return
		}
		fn(data)
	})
}

// ---------------------------------------------------------------------
// publish.Messenger
// ---------------------------------------------------------------------

func (s *Session) Send(ctx context.Context, channelID uint64, content string) (uint64, error) {
	msg, err := s.s.ChannelMessageSend(formatID(channelID), content, discordgo.WithContext(ctx))
	if err != nil {
		return 0, wrapSendError(err)
	}
	return parseID(msg.ID), nil
}

func (s *Session) Edit(ctx context.Context, channelID, messageID uint64, content string) error {
	_, err := s.s.ChannelMessageEdit(formatID(channelID), formatID(messageID), content, discordgo.WithContext(ctx))
	if err != nil {
		return wrapSendError(err)
	}
	return nil
}

func (s *Session) SendEmbed(ctx context.Context, channelID uint64, content string, embed publish.Embed, files []publish.File) (uint64, error) {
	send := &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{toMessageEmbed(embed)},
	}
	for _, f := range files {
		send.Files = append(send.Files, &discordgo.File{
			Name:   f.Name,
			Reader: bytes.NewReader(f.Data),
		})
	}

	msg, err := s.s.ChannelMessageSendComplex(formatID(channelID), send, discordgo.WithContext(ctx))
	if err != nil {
		return 0, wrapSendError(err)
	}
	return parseID(msg.ID), nil
}

func toMessageEmbed(e publish.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return out
}

// sendError satisfies publish.RetryableError so the publisher retries
// server-side and transport failures exactly once.
type sendError struct {
	err       error
	retryable bool
}

func (e *sendError) Error() string   { return e.err.Error() }
func (e *sendError) Unwrap() error   { return e.err }
func (e *sendError) Retryable() bool { return e.retryable }

func wrapSendError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return &sendError{err: err, retryable: rest.Response.StatusCode >= 500}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &sendError{err: err, retryable: true}
	}
	return &sendError{err: err, retryable: false}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func parseID(id string) uint64 {
	n, _ := strconv.ParseUint(id, 10, 64)
	return n
}
