package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reel/reel/internal/catalog"
	"github.com/reel/reel/internal/config"
	"github.com/reel/reel/internal/history"
	"github.com/reel/reel/internal/navigator"
	"github.com/reel/reel/internal/player"
	"github.com/reel/reel/internal/scan"
	"github.com/reel/reel/internal/ui"
)

const (
	statusLoading   = "Loading library... Please wait!"
	statusReloaded  = "Library reloaded."
	statusCannotRun = "Oops! Cannot play selected movie."
	statusFindAsk   = "Please enter the first letter of the movie."

	// title and status rows
	chromeRows = 2

	defaultHeight = 24
)

// Launcher builds the external player process for a media file.
type Launcher interface {
	Command(media string) (*exec.Cmd, error)
}

// History records playbacks and reports which files were watched.
type History interface {
	Record(ctx context.Context, rec history.PlayRecord) error
	Watched(ctx context.Context) (map[string]time.Time, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeFind
	modeSearch
)

// Options wires a Model to its collaborators. History may be nil.
type Options struct {
	Config  *config.Config
	Player  Launcher
	History History
	Theme   ui.Theme
	Logger  *slog.Logger
	Version string
}

type Model struct {
	cfg     *config.Config
	player  Launcher
	history History
	theme   ui.Theme
	logger  *slog.Logger
	version string

	keys   keyMap
	help   help.Model
	search textinput.Model

	cat     *catalog.Catalog
	nav     navigator.Navigator
	watched map[string]time.Time

	mode   mode
	status string
	// loading is set while a catalog build runs; gen stamps that build.
	loading  bool
	gen      int
	showHelp bool
	width    int
	height   int
}

func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme.Name == "" {
		theme = ui.GetTheme(cfg.UI.Theme, false)
	}
	h := help.New()
	h.ShowAll = true
	return Model{
		cfg:     cfg,
		player:  opts.Player,
		history: opts.History,
		theme:   theme,
		logger:  logger,
		version: opts.Version,
		keys:    newKeyMap(cfg.Keybindings),
		help:    h,
		search:  newSearchInput(theme),
		cat:     catalog.FromPaths(nil),
		nav:     navigator.New(defaultHeight - chromeRows),
		status:  statusLoading,
		loading: true,
		height:  defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCatalogCmd(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-len(m.search.Prompt)-4, 1)
		m.nav.Resize(pageSize(msg.Height))
		return m, nil
	case catalogMsg:
		return m.handleCatalog(msg)
	case playbackMsg:
		return m.handlePlayback(msg)
	case watchedMsg:
		m.watched = msg.watched
		return m, nil
	case infoMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Oops! Cannot read details: %v", msg.err)
		} else {
			m.status = msg.info.Summary(time.Now())
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeFind:
			return m.handleFindKey(msg)
		case modeSearch:
			return m.handleSearchKey(msg)
		}
		return m.dispatch(m.keys.resolve(msg))
	}
	return m, nil
}

// dispatch runs the handler of a browse-mode command.
func (m Model) dispatch(cmd Command) (Model, tea.Cmd) {
	switch cmd {
	case CmdUp:
		m.nav.ScrollUp(1)
	case CmdDown:
		m.nav.ScrollDown(1)
	case CmdPageUp:
		m.nav.ScrollUp(m.nav.PageSize())
	case CmdPageDown:
		m.nav.ScrollDown(m.nav.PageSize())
	case CmdPlay:
		return m.play()
	case CmdRescan:
		return m.rescan()
	case CmdFind:
		m.mode = modeFind
		m.status = statusFindAsk
	case CmdSearch:
		m.mode = modeSearch
		m.search.Reset()
		return m, m.search.Focus()
	case CmdInfo:
		return m.info()
	case CmdHelp:
		m.showHelp = !m.showHelp
	case CmdQuit:
		return m, tea.Quit
	}
	return m, nil
}

// rescan starts a forced build unless one is already running.
func (m Model) rescan() (Model, tea.Cmd) {
	if m.loading {
		m.logger.Debug("rescan ignored, build in progress", slog.Int("gen", m.gen))
		return m, nil
	}
	m.gen++
	m.status = statusLoading
	m.loading = true
	return m, m.loadCatalogCmd(true)
}

func (m Model) handleCatalog(msg catalogMsg) (Model, tea.Cmd) {
	if msg.gen != m.gen || !m.loading {
		m.logger.Debug("stale catalog dropped", slog.Int("gen", msg.gen), slog.Int("want", m.gen))
		return m, nil
	}
	m.loading = false
	m.cat = msg.cat
	m.nav.Reset(m.cat.Names())
	if msg.watched != nil {
		m.watched = msg.watched
	}
	rep := msg.report
	switch {
	case rep.ScanErr != nil && scan.IsNotFound(rep.ScanErr):
		m.status = "Oops! Library directory not found: " + m.cfg.Library.Root
	case rep.ScanErr != nil:
		m.status = fmt.Sprintf("Oops! Cannot scan library: %v", rep.ScanErr)
	case rep.SaveErr != nil:
		m.status = fmt.Sprintf("Oops! Cannot save library cache: %v", rep.SaveErr)
	default:
		m.status = statusReloaded
	}
	m.logger.Info("catalog ready",
		slog.String("source", rep.Source.String()),
		slog.Int("entries", m.cat.Len()),
		slog.Bool("forced", msg.forced))
	return m, nil
}

func (m Model) selectedPath() (string, bool) {
	name, ok := m.nav.CurrentSelection()
	if !ok {
		return "", false
	}
	return m.cat.Path(name)
}

func (m Model) play() (Model, tea.Cmd) {
	path, ok := m.selectedPath()
	if !ok || m.player == nil {
		m.status = statusCannotRun
		return m, nil
	}
	cmd, err := m.player.Command(path)
	if err != nil {
		m.logger.Warn("playback not started", slog.String("path", path), slog.Any("err", err))
		m.status = fmt.Sprintf("Oops! Playback failed: %v", err)
		return m, m.recordCmd(path, true)
	}
	m.status = "Playing " + filepath.Base(path) + "..."
	m.logger.Info("playback starting", slog.String("path", path))
	return m, m.execCmd(cmd, path)
}

func (m Model) handlePlayback(msg playbackMsg) (Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		m.logger.Info("playback finished", slog.String("path", msg.path))
		m.status = fmt.Sprintf("End of movie (%s).", msg.path)
	case player.IsPlaybackError(msg.err):
		// the player ran and exited abnormally
		m.logger.Warn("playback failed", slog.String("path", msg.path), slog.Any("err", msg.err))
		m.status = fmt.Sprintf("Oops! Playback failed: %v", errors.Unwrap(msg.err))
	default:
		m.logger.Error("run player", slog.String("path", msg.path), slog.Any("err", msg.err))
		m.status = fmt.Sprintf("Oops! Cannot run player: %v", msg.err)
	}
	if m.history == nil && msg.err == nil {
		watched := make(map[string]time.Time, len(m.watched)+1)
		for k, v := range m.watched {
			watched[k] = v
		}
		watched[msg.path] = time.Now()
		m.watched = watched
		return m, nil
	}
	return m, m.recordCmd(msg.path, msg.err != nil)
}

func (m Model) handleFindKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.mode = modeBrowse
	ch := msg.String()
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		ch = string(msg.Runes[0])
		if offset := navigator.IndexOfInitial(m.nav.Items(), msg.Runes[0]); offset >= 0 && m.nav.SelectAt(offset) {
			m.status = fmt.Sprintf("Scrolled to movies starting with '%s'.", ch)
			return m, nil
		}
	}
	m.status = fmt.Sprintf("Oops! No movies starts with '%s'.", ch)
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = modeBrowse
		m.search.Blur()
		m.status = "Search cancelled."
		return m, nil
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.search.Blur()
		q := strings.TrimSpace(m.search.Value())
		if idx, ok := bestMatch(q, m.nav.Items()); ok && m.nav.SelectAt(idx) {
			name, _ := m.nav.CurrentSelection()
			m.status = fmt.Sprintf("Scrolled to '%s'.", name)
		} else {
			m.status = fmt.Sprintf("Oops! No movies match '%s'.", q)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) info() (Model, tea.Cmd) {
	path, ok := m.selectedPath()
	if !ok {
		m.status = "Oops! No movie selected."
		return m, nil
	}
	return m, probeCmd(path)
}

func pageSize(height int) int {
	return max(height-chromeRows, 1)
}
