// Package catalog keeps the name-to-path index of the video library and
// decides whether it comes from the cache file or a fresh scan.
package catalog

import (
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/reel/reel/internal/scan"
)

// MediaEntry is one playable file.
type MediaEntry struct {
	DisplayName string
	FullPath    string
}

// Catalog maps display names to full paths. Names are unique; when two paths
// share a basename the later one wins.
type Catalog struct {
	paths map[string]string
	names []string
}

// FromPaths builds a catalog keyed by basename, in iteration order.
func FromPaths(paths []string) *Catalog {
	c := &Catalog{paths: make(map[string]string, len(paths))}
	for _, p := range paths {
		c.paths[filepath.Base(p)] = p
	}
	c.names = make([]string, 0, len(c.paths))
	for name := range c.paths {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// Names returns the sorted display names.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Path resolves a display name.
func (c *Catalog) Path(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.paths[name]
	return p, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Paths returns the full paths in display order.
func (c *Catalog) Paths() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.paths[n])
	}
	return out
}

// Entries returns the catalog in display order.
func (c *Catalog) Entries() []MediaEntry {
	if c == nil {
		return nil
	}
	out := make([]MediaEntry, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, MediaEntry{DisplayName: n, FullPath: c.paths[n]})
	}
	return out
}

// Source tells where a built catalog came from. The zero value means no
// build has happened.
type Source int

const (
	SourceCache Source = iota + 1
	SourceScan
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceScan:
		return "scan"
	default:
		return "none"
	}
}

// Options configures Build.
type Options struct {
	Root        string
	CachePath   string
	Extensions  []string
	ForceRescan bool
	Logger      *slog.Logger
}

// Report describes how Build went. The errors are recoverable: the catalog
// returned alongside is always usable.
type Report struct {
	Source  Source
	LoadErr error
	ScanErr error
	SaveErr error
}

// Build returns the catalog from the cache file unless it is missing, empty
// or ForceRescan is set, in which case the root is scanned and the cache
// rewritten. An empty scan is never written to the cache.
func Build(opts Options) (*Catalog, Report) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = scan.DefaultExtensions
	}
	var rep Report

	if !opts.ForceRescan {
		paths, ok, err := Load(opts.CachePath)
		switch {
		case err != nil:
			log.Warn("load catalog cache", slog.String("path", opts.CachePath), slog.Any("err", err))
			rep.LoadErr = err
		case ok && len(paths) > 0:
			c := FromPaths(paths)
			log.Debug("catalog loaded from cache", slog.String("path", opts.CachePath), slog.Int("entries", c.Len()))
			rep.Source = SourceCache
			return c, rep
		}
	}

	rep.Source = SourceScan
	paths, err := scan.Scan(opts.Root, exts)
	if err != nil {
		log.Warn("scan library", slog.String("root", opts.Root), slog.Any("err", err))
		rep.ScanErr = err
		return FromPaths(nil), rep
	}
	c := FromPaths(paths)
	log.Debug("catalog scanned", slog.String("root", opts.Root), slog.Int("files", len(paths)), slog.Int("entries", c.Len()))
	if c.Len() == 0 {
		return c, rep
	}
	if err := Save(opts.CachePath, c.Paths()); err != nil {
		log.Warn("save catalog cache", slog.String("path", opts.CachePath), slog.Any("err", err))
		rep.SaveErr = err
	}
	return c, rep
}
