package detect

import "github.com/nguyentantai21042004/minutes-flow/internal/source"

// Detector classifies raw chat-edit payloads and extracts recording
// coordinates from the ones that announce a finished recording.
type Detector interface {
	// Parse returns the detected recording and true, or nil and false for
	// payloads that are not a recording-ended panel edit.
	Parse(payload []byte) (*source.Recording, bool)
}
