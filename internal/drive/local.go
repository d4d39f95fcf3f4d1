package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type localFolder struct {
	dir string
}

// NewLocalFolder creates a Folder over a local directory, typically a
// synced mirror of the cloud folder. File ids are the file names.
func NewLocalFolder(dir string) Folder {
	return &localFolder{dir: dir}
}

func (f *localFolder) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", f.dir, err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			ID:   e.Name(),
			Name: e.Name(),
			Size: info.Size(),
		})
	}
	return files, nil
}

func (f *localFolder) Download(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, filepath.Base(id)))
	if err != nil {
		return nil, fmt.Errorf("read folder file %s: %w", id, err)
	}
	return data, nil
}
