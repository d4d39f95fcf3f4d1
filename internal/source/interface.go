package source

import "context"

// Source produces speaker-tagged audio files for one recording.
type Source interface {
	// Speakers returns the authoritative speaker list for the recording.
	Speakers(ctx context.Context) ([]SpeakerInfo, error)
	// Fetch downloads and extracts the speaker-track archive into dir.
	// Every returned file path exists, is readable and lies under dir.
	Fetch(ctx context.Context, dir string) ([]AudioTrack, error)
}
