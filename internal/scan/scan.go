// Package scan walks a library root and collects video files.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// DefaultExtensions is the built-in allow-list of video extensions.
var DefaultExtensions = []string{"avi", "mpg", "mp4", "mkv"}

// ErrNotFound is returned when the root is missing or not a directory.
var ErrNotFound = errors.New("scan: root not found")

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// walk is a test seam. Symlinked directories are followed; fastwalk skips
// links that lead back into a directory already visited.
var walk = func(root string, fn fs.WalkDirFunc) error {
	return fastwalk.Walk(&fastwalk.Config{Follow: true}, root, fn)
}

// Scan returns the absolute paths of every file under root whose extension
// is in exts. Entries whose name starts with "." are skipped, directories
// included. Matching is case-sensitive and the result is sorted, so a later
// path with the same basename wins consistently in the catalog.
func Scan(root string, exts []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, fmt.Errorf("stat root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, abs)
	}

	allowed := extensionSet(exts)
	var (
		mu    sync.Mutex
		paths []string
	)
	err = walk(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are left out of the catalog
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == abs {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !allowed[extension(d.Name())] {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", abs, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			set[e] = true
		}
	}
	return set
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
