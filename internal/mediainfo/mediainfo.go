// Package mediainfo reads file details shown by the info command.
package mediainfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"
)

// Info describes one media file.
type Info struct {
	Name     string
	Path     string
	Size     int64
	ModTime  time.Time
	Title    string
	FileType string
}

// Probe stats path and reads its embedded title when the container carries
// tags. Files without tags are not an error.
func Probe(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if fi.IsDir() {
		return Info{}, fmt.Errorf("probe %s: is a directory", path)
	}
	info := Info{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}

	f, err := os.Open(path)
	if err != nil {
		return info, nil
	}
	defer f.Close()
	if meta, err := tag.ReadFrom(f); err == nil {
		info.Title = strings.TrimSpace(meta.Title())
		info.FileType = string(meta.FileType())
	}
	return info, nil
}

// Summary renders info on one line, with the age relative to now.
func (i Info) Summary(now time.Time) string {
	parts := []string{i.Name, humanize.Bytes(uint64(max(i.Size, 0)))}
	if !i.ModTime.IsZero() {
		parts = append(parts, "added "+humanize.RelTime(i.ModTime, now, "ago", "from now"))
	}
	if i.FileType != "" && i.FileType != string(tag.UnknownFileType) {
		parts = append(parts, i.FileType)
	}
	if i.Title != "" {
		parts = append(parts, fmt.Sprintf("%q", i.Title))
	}
	return strings.Join(parts, " | ")
}
