package drive

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// archiveSource adapts a drive file into the pipeline's audio-source
// contract: Fetch downloads the archive through the Folder and extracts
// per-speaker tracks into the pipeline temp root.
type archiveSource struct {
	folder Folder
	fileID string

	mu       sync.Mutex
	speakers []source.SpeakerInfo
	fetched  bool
}

// NewArchiveSource creates a Source over one drive file.
func NewArchiveSource(folder Folder, fileID string) source.Source {
	return &archiveSource{folder: folder, fileID: fileID}
}

func (a *archiveSource) Speakers(ctx context.Context) ([]source.SpeakerInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.fetched {
		return nil, errs.Acquisition("speaker metadata unavailable before fetch for drive file "+a.fileID, nil)
	}
	out := make([]source.SpeakerInfo, len(a.speakers))
	copy(out, a.speakers)
	return out, nil
}

func (a *archiveSource) Fetch(ctx context.Context, dir string) ([]source.AudioTrack, error) {
	data, err := a.folder.Download(ctx, a.fileID)
	if err != nil {
		return nil, errs.Acquisition("download drive file "+a.fileID, err)
	}

	tracks, err := source.ExtractArchive(data, dir)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.speakers = a.speakers[:0]
	for _, t := range tracks {
		a.speakers = append(a.speakers, t.Speaker)
	}
	a.fetched = true
	a.mu.Unlock()
	return tracks, nil
}
