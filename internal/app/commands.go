package app

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reel/reel/internal/catalog"
	"github.com/reel/reel/internal/history"
	"github.com/reel/reel/internal/mediainfo"
	"github.com/reel/reel/internal/player"
)

const historyTimeout = 5 * time.Second

type catalogMsg struct {
	cat     *catalog.Catalog
	report  catalog.Report
	watched map[string]time.Time
	forced  bool
	gen     int
}

type playbackMsg struct {
	path string
	err  error
}

type watchedMsg struct {
	watched map[string]time.Time
}

type infoMsg struct {
	info mediainfo.Info
	err  error
}

func (m Model) catalogOptions(force bool) catalog.Options {
	return catalog.Options{
		Root:        m.cfg.Library.Root,
		CachePath:   m.cfg.Library.Cache,
		Extensions:  m.cfg.Library.Extensions,
		ForceRescan: force,
		Logger:      m.logger,
	}
}

func (m Model) loadCatalogCmd(force bool) tea.Cmd {
	opts := m.catalogOptions(force)
	gen := m.gen
	hist := m.history
	logger := m.logger
	return func() tea.Msg {
		cat, rep := catalog.Build(opts)
		msg := catalogMsg{cat: cat, report: rep, forced: force, gen: gen}
		if hist != nil {
			ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
			defer cancel()
			watched, err := hist.Watched(ctx)
			if err != nil {
				logger.Warn("load watched", slog.Any("err", err))
			}
			msg.watched = watched
		}
		return msg
	}
}

// execCmd suspends the program while the player runs.
func (m Model) execCmd(cmd *exec.Cmd, path string) tea.Cmd {
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return playbackMsg{path: path, err: player.Failed(path, err)}
	})
}

func (m Model) recordCmd(path string, failed bool) tea.Cmd {
	hist := m.history
	if hist == nil {
		return nil
	}
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		rec := history.PlayRecord{Path: path, PlayedAt: time.Now(), Failed: failed}
		if err := hist.Record(ctx, rec); err != nil {
			logger.Warn("record play", slog.String("path", path), slog.Any("err", err))
			return nil
		}
		watched, err := hist.Watched(ctx)
		if err != nil {
			logger.Warn("load watched", slog.Any("err", err))
			return nil
		}
		return watchedMsg{watched: watched}
	}
}

func probeCmd(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := mediainfo.Probe(path)
		return infoMsg{info: info, err: err}
	}
}
