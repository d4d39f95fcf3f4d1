package drive

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// FileInfo describes one file in the watched folder.
type FileInfo struct {
	ID   string
	Name string
	Size int64
}

// Folder is the cloud-folder surface the watcher polls. Concrete
// implementations exist for S3-compatible buckets and local directories;
// vendor drive SDKs plug in behind this interface.
type Folder interface {
	List(ctx context.Context) ([]FileInfo, error)
	Download(ctx context.Context, id string) ([]byte, error)
}

// Handler processes one newly discovered recording synchronously. The
// returned error is the terminal outcome recorded in the processed set.
type Handler func(ctx context.Context, rec source.Recording) error

// Watcher polls the folder for new recording archives.
type Watcher interface {
	// Start runs the poll loop until ctx is cancelled.
	Start(ctx context.Context) error
}
