package detect

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// RecordingEndedMarker is the substring the recording bot writes into its
// panel components when a recording stops. The upstream UI owns this text;
// if a revision changes it, update this one constant.
const RecordingEndedMarker = "Recording ended"

// envelope is the minimal structure we parse out of a raw message-edit
// payload. Everything else is matched as serialized text so the detector
// stays decoupled from the evolving component schema.
type envelope struct {
	ChannelID string `json:"channel_id"`
	Author    struct {
		ID string `json:"id"`
	} `json:"author"`
	Components json.RawMessage `json:"components"`
}

// Parse applies the detection filters in order; the first miss yields
// (nil, false):
//  1. author is the recording bot
//  2. channel is the watched channel
//  3. components contain the recording-ended marker
//  4. a recording URL with an allowlisted host appears in the payload
func (d *implDetector) Parse(payload []byte) (*source.Recording, bool) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}

	if env.Author.ID != d.botID {
		return nil, false
	}

	channelID, err := strconv.ParseUint(env.ChannelID, 10, 64)
	if err != nil || channelID != d.watchChannelID {
		return nil, false
	}

	if !strings.Contains(string(env.Components), RecordingEndedMarker) {
		return nil, false
	}

	m := d.urlPattern.FindStringSubmatch(string(payload))
	if m == nil {
		d.logger.Warn(context.Background(),
			"Recording-ended panel detected but no recording URL found (channel=%d)", channelID)
		return nil, false
	}

	return &source.Recording{
		ID:              m[2],
		AccessKey:       m[3],
		Domain:          m[1],
		OriginChannelID: channelID,
		Trigger:         source.TriggerPanelEdit,
	}, true
}
