package source

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/errs"
)

// Archive entries are named {track}-{display_name}.{ext}.
var entryPattern = regexp.MustCompile(`^(\d+)-(.+)\.(aac|flac|ogg|mp3|wav|m4a)$`)

// ExtractArchive unpacks per-speaker audio files from a zip archive into
// destDir. Entries not matching the naming convention are skipped. Any
// entry whose resolved destination escapes destDir rejects the whole
// archive before a single file is written. An archive with zero valid
// entries is rejected.
func ExtractArchive(data []byte, destDir string) ([]AudioTrack, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errs.Acquisition("invalid archive data", err)
	}

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, errs.Acquisition("resolve destination directory", err)
	}

	// Validate every entry name first so a traversal attempt rejects the
	// archive with nothing written.
	type pending struct {
		file    *zip.File
		speaker SpeakerInfo
		dest    string
	}
	var valid []pending
	for _, f := range zr.File {
		if !withinDir(absDest, f.Name) {
			return nil, errs.Acquisition("archive entry escapes destination: "+f.Name, nil)
		}
		m := entryPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		track, err := strconv.Atoi(m[1])
		if err != nil || track < 1 {
			continue
		}
		valid = append(valid, pending{
			file: f,
			speaker: SpeakerInfo{
				Track:       track,
				DisplayName: m[2],
			},
			dest: filepath.Join(absDest, f.Name),
		})
	}

	if len(valid) == 0 {
		return nil, errs.Acquisition("no speaker audio entries in archive", nil)
	}

	var tracks []AudioTrack
	for _, p := range valid {
		if err := writeEntry(p.file, p.dest); err != nil {
			return nil, errs.Acquisition("extract "+p.file.Name, err)
		}
		tracks = append(tracks, AudioTrack{Speaker: p.speaker, FilePath: p.dest})
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Speaker.Track < tracks[j].Speaker.Track
	})
	return tracks, nil
}

// withinDir reports whether name, joined to dir, stays inside dir.
func withinDir(dir, name string) bool {
	if filepath.IsAbs(name) {
		return false
	}
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
