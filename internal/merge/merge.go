// Package merge interleaves per-speaker transcripts into one chronological
// meeting transcript.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcribe"
)

type line struct {
	speaker source.SpeakerInfo
	start   float64
	end     float64
	text    string
}

// Merge flattens the per-speaker segment lists, orders them by
// (start time, track index), coalesces consecutive same-speaker segments
// whose gap is below the configured threshold, and renders one line per
// surviving segment. Fails only on empty input.
func Merge(transcripts []transcribe.SpeakerTranscript, cfg config.MergerConfig) (string, error) {
	var lines []line
	for _, st := range transcripts {
		for _, seg := range st.Segments {
			text := strings.TrimSpace(seg.Text)
			if len(text) < cfg.MinSegmentChars || text == "" {
				continue
			}
			lines = append(lines, line{
				speaker: st.Speaker,
				start:   seg.Start,
				end:     seg.End,
				text:    text,
			})
		}
	}

	if len(transcripts) == 0 {
		return "", errs.Transcription("no transcripts to merge", nil)
	}
	if len(lines) == 0 {
		return "", nil
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].start != lines[j].start {
			return lines[i].start < lines[j].start
		}
		return lines[i].speaker.Track < lines[j].speaker.Track
	})

	merged := []line{lines[0]}
	for _, cur := range lines[1:] {
		prev := &merged[len(merged)-1]
		gap := cur.start - prev.end
		if gap < 0 {
			gap = 0
		}
		if cur.speaker.Track == prev.speaker.Track && gap < cfg.GapMergeThresholdSec {
			prev.text = prev.text + " " + cur.text
			if cur.end > prev.end {
				prev.end = cur.end
			}
			continue
		}
		merged = append(merged, cur)
	}

	out := make([]string, 0, len(merged))
	for _, l := range merged {
		out = append(out, fmt.Sprintf("%s %s: %s",
			formatTimestamp(l.start, cfg.TimestampFormat), l.speaker.DisplayName, l.text))
	}
	return strings.Join(out, "\n"), nil
}

// formatTimestamp renders seconds using the configured format string.
// Supported placeholders: {hh}, {mm}, {ss}.
func formatTimestamp(seconds float64, format string) string {
	total := int(seconds)
	hh := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60

	out := strings.ReplaceAll(format, "{hh}", fmt.Sprintf("%02d", hh))
	out = strings.ReplaceAll(out, "{mm}", fmt.Sprintf("%02d", mm))
	out = strings.ReplaceAll(out, "{ss}", fmt.Sprintf("%02d", ss))
	return out
}

// Speakers returns the distinct display names in first-track order.
func Speakers(transcripts []transcribe.SpeakerTranscript) []string {
	ordered := make([]transcribe.SpeakerTranscript, len(transcripts))
	copy(ordered, transcripts)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Speaker.Track < ordered[j].Speaker.Track
	})
	names := make([]string, 0, len(ordered))
	for _, st := range ordered {
		names = append(names, st.Speaker.DisplayName)
	}
	return names
}
