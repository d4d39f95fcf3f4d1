package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/minutes"
)

const truncationNote = "\n\n*(truncated — see attached file for the full minutes)*"

var summaryPattern = regexp.MustCompile(`(?s)## Summary\s*\n(.*?)(?:\n## |\z)`)

func (p *implPublisher) PostMinutes(ctx context.Context, post Post) ([]uint64, error) {
	embed := p.buildMinutesEmbed(post)

	files := []File{{
		Name: fmt.Sprintf("minutes_%s.md", safeDate(post.Date)),
		Data: []byte(post.Minutes),
	}}

	if p.cfg.IncludeTranscript && post.Transcript != "" {
		files = append(files, File{
			Name: fmt.Sprintf("transcript_%s.md", safeDate(post.Date)),
			Data: []byte(post.Transcript),
		})
	}

	if p.cfg.AttachDocx {
		if data, err := p.renderDocx(post); err != nil {
			p.logger.Warn(ctx, "DOCX render failed, posting without it: %v", err)
		} else {
			files = append(files, File{
				Name: fmt.Sprintf("minutes_%s.docx", safeDate(post.Date)),
				Data: data,
			})
		}
	}

	id, err := p.messenger.SendEmbed(ctx, p.outputChannelID, "", embed, files)
	if err != nil && isRetryable(err) {
		p.logger.Warn(ctx, "Minutes post failed, retrying once: %v", err)
		id, err = p.messenger.SendEmbed(ctx, p.outputChannelID, "", embed, files)
	}
	if err != nil {
		return nil, errs.Publish("minutes post failed", err)
	}

	p.logger.Info(ctx, "Minutes posted (message_id=%d)", id)
	return []uint64{id}, nil
}

func (p *implPublisher) PostError(ctx context.Context, stage, message, recordingID string) {
	embed := Embed{
		Title:       "Minutes generation failed",
		Description: truncate(message, 2000),
		Color:       0xFF0000,
		Fields: []EmbedField{
			{Name: "Stage", Value: stage, Inline: true},
			{Name: "Recording", Value: recordingID, Inline: true},
		},
	}

	var mention string
	if p.mentionRoleID != 0 {
		mention = fmt.Sprintf("<@&%d>", p.mentionRoleID)
	}

	if _, err := p.messenger.SendEmbed(ctx, p.outputChannelID, mention, embed, nil); err != nil {
		p.logger.Error(ctx, "Error embed post failed (stage=%s): %v", stage, err)
	}
}

func (p *implPublisher) buildMinutesEmbed(post Post) Embed {
	summary := extractSummary(post.Minutes)
	if summary == "" {
		summary = post.Minutes
	}

	embed := Embed{
		Title:       "Meeting Minutes — " + post.Date,
		Description: truncateAtLine(summary, p.cfg.MaxEmbedLength),
		Color:       p.cfg.EmbedColor,
		Footer:      "Full minutes attached",
	}

	if len(post.Speakers) > 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "Participants",
			Value: truncate(strings.Join(post.Speakers, ", "), 1024),
		})
	}
	if post.DurationSec > 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:   "Duration",
			Value:  formatDuration(post.DurationSec),
			Inline: true,
		})
	}
	return embed
}

func (p *implPublisher) renderDocx(post Post) ([]byte, error) {
	path := filepath.Join(post.WorkDir, "minutes.docx")
	if err := minutes.WriteDocx("Meeting Minutes — "+post.Date, post.Minutes, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func extractSummary(minutesMD string) string {
	if m := summaryPattern.FindStringSubmatch(minutesMD); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// truncateAtLine cuts text at a line boundary so the embed never ends
// mid-sentence, and appends a note pointing at the attachment.
func truncateAtLine(text string, max int) string {
	if len(text) <= max {
		return text
	}
	budget := max - len(truncationNote)
	if budget < 1 {
		budget = 1
	}
	cut := text[:budget]
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, "\n") + truncationNote
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}

func safeDate(date string) string {
	out := strings.ReplaceAll(date, "/", "-")
	return strings.ReplaceAll(out, " ", "_")
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%dh%02dm", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

func isRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}
