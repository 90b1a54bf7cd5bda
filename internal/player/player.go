package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Defaults for an omxplayer setup.
const (
	DefaultPath        = "omxplayer"
	DefaultOutput      = "hdmi"
	DefaultSubtitles   = "on"
	DefaultAlign       = "center"
	DefaultSubtitleExt = "srt"
)

// Options configures the Player. Zero values fall back to the omxplayer
// defaults.
type Options struct {
	Path        string
	Output      string
	Subtitles   string
	Align       string
	SubtitleExt string
	ExtraArgs   []string
	Logger      *slog.Logger
}

// Player builds external player commands for media files.
type Player struct {
	opts Options
}

// PlaybackError reports a media file that could not be played.
type PlaybackError struct {
	Path string
	Err  error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("play %s: %v", e.Path, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// IsPlaybackError reports whether err wraps a *PlaybackError.
func IsPlaybackError(err error) bool {
	var pe *PlaybackError
	return errors.As(err, &pe)
}

// Failed wraps the exit error of a finished playback; nil stays nil.
func Failed(path string, err error) error {
	if err == nil {
		return nil
	}
	return &PlaybackError{Path: path, Err: err}
}

func New(opts Options) *Player {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.Subtitles == "" {
		opts.Subtitles = DefaultSubtitles
	}
	if opts.Align == "" {
		opts.Align = DefaultAlign
	}
	if opts.SubtitleExt == "" {
		opts.SubtitleExt = DefaultSubtitleExt
	}
	return &Player{opts: opts}
}

// Path returns the player executable.
func (p *Player) Path() string { return p.opts.Path }

// Args returns the player arguments for media. The subtitle flag is only
// added when the sibling subtitle file exists.
func (p *Player) Args(media string) []string {
	args := []string{
		"-o", p.opts.Output,
		"-t", p.opts.Subtitles,
		"--align", p.opts.Align,
	}
	if sub := SubtitlePath(media, p.opts.SubtitleExt); sub != "" {
		if fi, err := statFunc(sub); err == nil && !fi.IsDir() {
			args = append(args, "--subtitles", sub)
		}
	}
	args = append(args, p.opts.ExtraArgs...)
	return append(args, media)
}

// Command builds the process for media without starting it. A media file
// that does not exist yields a *PlaybackError.
func (p *Player) Command(media string) (*exec.Cmd, error) {
	fi, err := statFunc(media)
	if err != nil {
		p.opts.Logger.Warn("media not playable", slog.String("path", media), slog.Any("err", err))
		return nil, &PlaybackError{Path: media, Err: err}
	}
	if fi.IsDir() {
		return nil, &PlaybackError{Path: media, Err: errors.New("is a directory")}
	}
	args := p.Args(media)
	p.opts.Logger.Debug("building player command", slog.String("player", p.opts.Path), slog.Any("args", args))
	return exec.Command(p.opts.Path, args...), nil
}

// SubtitlePath returns media with its extension replaced by ext.
func SubtitlePath(media, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if media == "" || ext == "" {
		return ""
	}
	return strings.TrimSuffix(media, filepath.Ext(media)) + "." + ext
}

// statFunc is a test seam.
var statFunc = os.Stat
