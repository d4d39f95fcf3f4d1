package inbox

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/source"
)

// Handler processes one archive dropped into the inbox directory.
type Handler func(ctx context.Context, rec source.Recording, archivePath string)

// Watcher reacts to archive files appearing in a local inbox directory.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}
