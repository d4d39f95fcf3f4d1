package source

import (
	"context"
	"os"
	"sync"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
)

// fileSource adapts an archive already on local disk (inbox drops) into
// the audio-source contract.
type fileSource struct {
	path string

	mu       sync.Mutex
	speakers []SpeakerInfo
	fetched  bool
}

// NewArchiveFile creates a Source over a local archive file.
func NewArchiveFile(path string) Source {
	return &fileSource{path: path}
}

func (f *fileSource) Speakers(ctx context.Context) ([]SpeakerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.fetched {
		return nil, errs.Acquisition("speaker metadata unavailable before fetch for archive "+f.path, nil)
	}
	out := make([]SpeakerInfo, len(f.speakers))
	copy(out, f.speakers)
	return out, nil
}

func (f *fileSource) Fetch(ctx context.Context, dir string) ([]AudioTrack, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errs.Acquisition("read archive "+f.path, err)
	}

	tracks, err := ExtractArchive(data, dir)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.speakers = f.speakers[:0]
	for _, t := range tracks {
		f.speakers = append(f.speakers, t.Speaker)
	}
	f.fetched = true
	f.mu.Unlock()
	return tracks, nil
}
