package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reel/reel/internal/catalog"
	"github.com/reel/reel/internal/config"
	"github.com/reel/reel/internal/history"
	"github.com/reel/reel/internal/logging"
	"github.com/reel/reel/internal/navigator"
	"github.com/reel/reel/internal/player"
	"github.com/reel/reel/internal/ui"
)

type fakeLauncher struct {
	calls []string
	err   error
}

func (f *fakeLauncher) Command(media string) (*exec.Cmd, error) {
	f.calls = append(f.calls, media)
	if f.err != nil {
		return nil, f.err
	}
	return exec.Command("true"), nil
}

type fakeHistory struct {
	records []history.PlayRecord
}

func (f *fakeHistory) Record(_ context.Context, rec history.PlayRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) Watched(context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for _, r := range f.records {
		if !r.Failed {
			out[r.Path] = r.PlayedAt
		}
	}
	return out, nil
}

type fixture struct {
	root     string
	cache    string
	launcher *fakeLauncher
	history  *fakeHistory
}

func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()
	f := &fixture{
		root:     filepath.Join(t.TempDir(), "movies"),
		cache:    filepath.Join(t.TempDir(), "movies.db"),
		launcher: &fakeLauncher{},
		history:  &fakeHistory{},
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range files {
		f.touch(t, name)
	}
	return f
}

func (f *fixture) touch(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(f.root, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("movie"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func (f *fixture) model() Model {
	cfg := config.Default()
	cfg.Library.Root = f.root
	cfg.Library.Cache = f.cache
	return New(Options{
		Config:  cfg,
		Player:  f.launcher,
		History: f.history,
		Theme:   ui.NoColor(true),
		Logger:  logging.Discard(),
		Version: "1.0",
	})
}

func updateModel(m Model, msg tea.Msg) (Model, tea.Cmd) {
	nm, cmd := m.Update(msg)
	return nm.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded returns a model with its initial catalog applied and a terminal of
// the given height.
func loaded(t *testing.T, m Model, height int) Model {
	t.Helper()
	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 80, Height: height})
	msg := m.Init()()
	if _, ok := msg.(catalogMsg); !ok {
		t.Fatalf("Init produced %T, want catalogMsg", msg)
	}
	m, _ = updateModel(m, msg)
	return m
}

func TestInitialLoad(t *testing.T) {
	f := newFixture(t, "Charlie.mp4", "Alpha.mp4", "sub/Bravo.mp4", ".hidden/Delta.mp4", "notes.txt")
	m := f.model()
	if m.status != statusLoading {
		t.Errorf("status before load = %q", m.status)
	}

	m = loaded(t, m, 10)
	if got := m.cat.Names(); !reflect.DeepEqual(got, []string{"Alpha.mp4", "Bravo.mp4", "Charlie.mp4"}) {
		t.Errorf("names = %v", got)
	}
	if m.status != statusReloaded {
		t.Errorf("status = %q", m.status)
	}
	if m.loading {
		t.Error("loading flag still set")
	}
	if _, err := os.Stat(f.cache); err != nil {
		t.Errorf("cache not written: %v", err)
	}
}

func TestFindJumpsToInitial(t *testing.T) {
	f := newFixture(t, "Alpha.mp4", "Bravo.mp4", "Charlie.mp4")

	for _, key := range []string{"b", "B"} {
		t.Run(key, func(t *testing.T) {
			m := loaded(t, f.model(), 10)
			m, _ = updateModel(m, runes("f"))
			if m.status != statusFindAsk || m.mode != modeFind {
				t.Fatalf("after f: status %q mode %d", m.status, m.mode)
			}
			m, _ = updateModel(m, runes(key))
			if m.nav.State().Selected != 1 || m.nav.State().FirstVisible != 1 {
				t.Errorf("state = %+v", m.nav.State())
			}
			want := fmt.Sprintf("Scrolled to movies starting with '%s'.", key)
			if m.status != want {
				t.Errorf("status = %q, want %q", m.status, want)
			}
			if m.mode != modeBrowse {
				t.Error("find mode not left")
			}
		})
	}
}

func TestFindNoMatch(t *testing.T) {
	f := newFixture(t, "Alpha.mp4", "Bravo.mp4", "Charlie.mp4")
	m := loaded(t, f.model(), 10)
	m, _ = updateModel(m, runes("k"))
	before := m.nav.State()

	m, _ = updateModel(m, runes("f"))
	m, _ = updateModel(m, runes("z"))
	if m.nav.State() != before {
		t.Errorf("state changed: %+v -> %+v", before, m.nav.State())
	}
	if m.status != "Oops! No movies starts with 'z'." {
		t.Errorf("status = %q", m.status)
	}

	// a non-character key is consumed by find and does not navigate
	m, _ = updateModel(m, runes("f"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.nav.State() != before {
		t.Errorf("state changed on special key: %+v", m.nav.State())
	}
	if m.status != "Oops! No movies starts with 'down'." {
		t.Errorf("status = %q", m.status)
	}
}

func TestEmptyLibrary(t *testing.T) {
	f := newFixture(t)
	m := loaded(t, f.model(), 10)

	if m.cat.Len() != 0 {
		t.Fatalf("expected empty catalog, got %v", m.cat.Names())
	}
	for _, k := range []tea.KeyMsg{runes("i"), runes("k"), runes("y"), runes("h"), {Type: tea.KeyPgDown}} {
		m, _ = updateModel(m, k)
	}
	if m.nav.State() != (navigator.ViewportState{PageSize: 8}) {
		t.Errorf("state = %+v", m.nav.State())
	}

	m, cmd := updateModel(m, runes("p"))
	if cmd != nil {
		t.Error("play on empty library returned a command")
	}
	if len(f.launcher.calls) != 0 {
		t.Errorf("player invoked: %v", f.launcher.calls)
	}
	if m.status != statusCannotRun {
		t.Errorf("status = %q", m.status)
	}
	if _, err := os.Stat(f.cache); !os.IsNotExist(err) {
		t.Errorf("empty scan must not write the cache, stat err = %v", err)
	}
}

func TestMissingRoot(t *testing.T) {
	f := newFixture(t)
	f.root = filepath.Join(f.root, "gone")
	m := loaded(t, f.model(), 10)

	want := "Oops! Library directory not found: " + f.root
	if m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
	if !strings.Contains(m.View(), want) {
		t.Error("view does not show the error")
	}
}

func TestRescanPicksUpNewFiles(t *testing.T) {
	f := newFixture(t)
	alpha := f.touch(t, "Alpha.mkv")
	bravo := f.touch(t, "Bravo.mp4")
	if err := catalog.Save(f.cache, []string{alpha}); err != nil {
		t.Fatal(err)
	}

	m := loaded(t, f.model(), 10)
	if got := m.cat.Names(); !reflect.DeepEqual(got, []string{"Alpha.mkv"}) {
		t.Fatalf("cached names = %v", got)
	}
	m, _ = updateModel(m, runes("k"))

	m, cmd := updateModel(m, runes("R"))
	if m.status != statusLoading || !m.loading {
		t.Errorf("status = %q loading = %v", m.status, m.loading)
	}
	if cmd == nil {
		t.Fatal("rescan returned no command")
	}
	m, _ = updateModel(m, cmd())

	if got := m.cat.Names(); !reflect.DeepEqual(got, []string{"Alpha.mkv", "Bravo.mp4"}) {
		t.Errorf("names after rescan = %v", got)
	}
	if m.nav.State().Selected != 0 || m.nav.State().FirstVisible != 0 {
		t.Errorf("navigator not reset: %+v", m.nav.State())
	}
	if m.status != statusReloaded {
		t.Errorf("status = %q", m.status)
	}
	saved, _, err := catalog.Load(f.cache)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(saved, []string{alpha, bravo}) {
		t.Errorf("cache = %v", saved)
	}
}

func TestRescanIgnoredWhileLoading(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	m := f.model()
	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 80, Height: 10})

	m, cmd := updateModel(m, runes("R"))
	if cmd != nil {
		t.Error("rescan started while the initial load is running")
	}
	if !m.loading || m.gen != 0 {
		t.Errorf("loading = %v gen = %d", m.loading, m.gen)
	}
}

func TestStaleCatalogIsDropped(t *testing.T) {
	f := newFixture(t)
	alpha := f.touch(t, "Alpha.mkv")
	f.touch(t, "Bravo.mp4")
	if err := catalog.Save(f.cache, []string{alpha}); err != nil {
		t.Fatal(err)
	}

	m := f.model()
	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	initial := m.Init()()
	m, _ = updateModel(m, initial)

	m, cmd := updateModel(m, runes("R"))
	if cmd == nil {
		t.Fatal("rescan returned no command")
	}

	// the earlier build's result arrives again while the rescan runs
	m, _ = updateModel(m, initial)
	if !m.loading || m.status != statusLoading {
		t.Errorf("stale result ended the rescan: loading = %v status = %q", m.loading, m.status)
	}

	m, _ = updateModel(m, cmd())
	want := []string{"Alpha.mkv", "Bravo.mp4"}
	if got := m.cat.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after rescan = %v", got)
	}
	m, _ = updateModel(m, runes("k"))

	m, _ = updateModel(m, initial)
	if got := m.cat.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("late initial load replaced the rescan: %v", got)
	}
	if m.nav.State().Selected != 1 {
		t.Errorf("cursor reset by a stale result: %+v", m.nav.State())
	}
	if m.loading {
		t.Error("loading still set")
	}
}

func TestNavigationKeys(t *testing.T) {
	var files []string
	for i := 0; i < 30; i++ {
		files = append(files, fmt.Sprintf("m%02d.mkv", i))
	}
	f := newFixture(t, files...)
	m := loaded(t, f.model(), 10) // page size 8

	steps := []struct {
		key  tea.KeyMsg
		want navigator.ViewportState
	}{
		{runes("k"), navigator.ViewportState{Selected: 1, FirstVisible: 0, PageSize: 8}},
		{tea.KeyMsg{Type: tea.KeyDown}, navigator.ViewportState{Selected: 2, FirstVisible: 0, PageSize: 8}},
		{runes("h"), navigator.ViewportState{Selected: 10, FirstVisible: 8, PageSize: 8}},
		{tea.KeyMsg{Type: tea.KeyPgDown}, navigator.ViewportState{Selected: 18, FirstVisible: 16, PageSize: 8}},
		{runes("i"), navigator.ViewportState{Selected: 17, FirstVisible: 16, PageSize: 8}},
		{runes("y"), navigator.ViewportState{Selected: 9, FirstVisible: 8, PageSize: 8}},
		{tea.KeyMsg{Type: tea.KeyPgUp}, navigator.ViewportState{Selected: 1, FirstVisible: 0, PageSize: 8}},
		{tea.KeyMsg{Type: tea.KeyUp}, navigator.ViewportState{Selected: 0, FirstVisible: 0, PageSize: 8}},
		{runes("x"), navigator.ViewportState{Selected: 0, FirstVisible: 0, PageSize: 8}},
	}
	for i, s := range steps {
		m, _ = updateModel(m, s.key)
		if got := m.nav.State(); got != s.want {
			t.Fatalf("step %d (%s): state = %+v, want %+v", i, s.key, got, s.want)
		}
	}
}

func TestResize(t *testing.T) {
	var files []string
	for i := 0; i < 30; i++ {
		files = append(files, fmt.Sprintf("m%02d.mkv", i))
	}
	f := newFixture(t, files...)
	m := loaded(t, f.model(), 20)
	m, _ = updateModel(m, runes("h"))
	m, _ = updateModel(m, runes("h"))

	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 40, Height: 6})
	st := m.nav.State()
	if st.PageSize != 4 {
		t.Errorf("page size = %d", st.PageSize)
	}
	if st.Selected < st.FirstVisible || st.Selected >= st.FirstVisible+st.PageSize {
		t.Errorf("selection off screen: %+v", st)
	}
	if rows := strings.Split(m.View(), "\n"); len(rows) != 6 {
		t.Errorf("view has %d rows, want 6", len(rows))
	}

	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 40, Height: 1})
	if m.nav.PageSize() != 1 {
		t.Errorf("page size = %d, want 1", m.nav.PageSize())
	}
}

func TestPlayRecordsHistory(t *testing.T) {
	f := newFixture(t, "Alpha.mkv", "Bravo.mp4")
	m := loaded(t, f.model(), 10)

	m, cmd := updateModel(m, runes("p"))
	alpha := filepath.Join(f.root, "Alpha.mkv")
	if !reflect.DeepEqual(f.launcher.calls, []string{alpha}) {
		t.Fatalf("launcher calls = %v", f.launcher.calls)
	}
	if cmd == nil {
		t.Fatal("play returned no command")
	}
	if m.status != "Playing Alpha.mkv..." {
		t.Errorf("status = %q", m.status)
	}

	m, cmd = updateModel(m, playbackMsg{path: alpha})
	if want := fmt.Sprintf("End of movie (%s).", alpha); m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
	if cmd == nil {
		t.Fatal("no history command after playback")
	}
	m, _ = updateModel(m, cmd())

	if len(f.history.records) != 1 || f.history.records[0].Path != alpha || f.history.records[0].Failed {
		t.Errorf("records = %+v", f.history.records)
	}
	if !strings.Contains(m.View(), "> Alpha.mkv"+watchedMark) {
		t.Errorf("watched mark missing:\n%s", m.View())
	}
}

func TestPlayStartFailure(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	f.launcher.err = errors.New("media gone")
	m := loaded(t, f.model(), 10)

	m, cmd := updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Oops! Playback failed: media gone" {
		t.Errorf("status = %q", m.status)
	}
	if cmd == nil {
		t.Fatal("failed play should still be recorded")
	}
	cmd()
	if len(f.history.records) != 1 || !f.history.records[0].Failed {
		t.Errorf("records = %+v", f.history.records)
	}
}

func TestPlaybackExitError(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	m := loaded(t, f.model(), 10)
	alpha := filepath.Join(f.root, "Alpha.mkv")

	m, _ = updateModel(m, playbackMsg{path: alpha, err: player.Failed(alpha, errors.New("exit status 1"))})
	if m.status != "Oops! Playback failed: exit status 1" {
		t.Errorf("status = %q", m.status)
	}

	// the terminal could not be handed to the player at all
	m, _ = updateModel(m, playbackMsg{path: alpha, err: errors.New("open /dev/tty: no such device")})
	if m.status != "Oops! Cannot run player: open /dev/tty: no such device" {
		t.Errorf("status = %q", m.status)
	}
}

func TestPlaybackWithoutHistory(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	m := f.model()
	m.history = nil
	m = loaded(t, m, 10)
	alpha := filepath.Join(f.root, "Alpha.mkv")

	m, cmd := updateModel(m, playbackMsg{path: alpha})
	if cmd != nil {
		t.Error("expected no command without history")
	}
	if _, ok := m.watched[alpha]; !ok {
		t.Error("session should still mark the movie watched")
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, "Alpha.mp4", "Bravo.mp4", "Charlie.mp4")
	m := loaded(t, f.model(), 10)

	m, _ = updateModel(m, runes("/"))
	if m.mode != modeSearch {
		t.Fatal("search mode not entered")
	}
	for _, r := range "chr" {
		m, _ = updateModel(m, runes(string(r)))
	}
	if !strings.Contains(m.View(), "chr") {
		t.Errorf("prompt does not echo the query:\n%s", m.View())
	}
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})
	if sel, _ := m.nav.CurrentSelection(); sel != "Charlie.mp4" {
		t.Errorf("selection = %q", sel)
	}
	if m.status != "Scrolled to 'Charlie.mp4'." {
		t.Errorf("status = %q", m.status)
	}

	m, _ = updateModel(m, runes("/"))
	m, _ = updateModel(m, runes("q"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "Oops! No movies match 'q'." {
		t.Errorf("status = %q", m.status)
	}
	if sel, _ := m.nav.CurrentSelection(); sel != "Charlie.mp4" {
		t.Errorf("selection moved to %q", sel)
	}

	m, _ = updateModel(m, runes("/"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeBrowse || m.status != "Search cancelled." {
		t.Errorf("mode %d status %q", m.mode, m.status)
	}
}

func TestInfo(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	m := loaded(t, f.model(), 10)

	m, cmd := updateModel(m, runes("d"))
	if cmd == nil {
		t.Fatal("info returned no command")
	}
	m, _ = updateModel(m, cmd())
	if !strings.HasPrefix(m.status, "Alpha.mkv | 5 B") {
		t.Errorf("status = %q", m.status)
	}

	empty := loaded(t, newFixture(t).model(), 10)
	empty, cmd = updateModel(empty, runes("d"))
	if cmd != nil || empty.status != "Oops! No movie selected." {
		t.Errorf("status = %q", empty.status)
	}
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t, "Alpha.mkv")
	m := loaded(t, f.model(), 12)

	m, _ = updateModel(m, runes("?"))
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if v := m.View(); !strings.Contains(v, "page down") || strings.Contains(v, "> Alpha.mkv") {
		t.Errorf("help view:\n%s", v)
	}
	m, _ = updateModel(m, runes("?"))
	if m.showHelp {
		t.Error("help not hidden")
	}
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("Q"), {Type: tea.KeyCtrlC}} {
		m := newFixture(t).model()
		_, cmd := updateModel(m, k)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected quit", k)
		}
	}
	// lower-case q is not bound by default
	_, cmd := updateModel(newFixture(t).model(), runes("q"))
	if cmd != nil {
		t.Error("q should not quit")
	}
}

func TestView(t *testing.T) {
	f := newFixture(t, "Alpha.mkv", "Bravo.mp4", "A very long movie name that will not fit on a narrow terminal.mkv")
	m := loaded(t, f.model(), 6)
	m, _ = updateModel(m, tea.WindowSizeMsg{Width: 40, Height: 6})

	rows := strings.Split(m.View(), "\n")
	if len(rows) != 6 {
		t.Fatalf("rows = %d\n%s", len(rows), m.View())
	}
	if !strings.HasPrefix(rows[0], "reel v1.0 - p:Play R:Rescan f:Find") {
		t.Errorf("title = %q", rows[0])
	}
	if !strings.HasPrefix(rows[1], "> A very long movie") {
		t.Errorf("selected row = %q", rows[1])
	}
	if rows[2] != "  Alpha.mkv" {
		t.Errorf("row 2 = %q", rows[2])
	}
	if !strings.HasPrefix(rows[5], "> "+statusReloaded) {
		t.Errorf("status = %q", rows[5])
	}
	for i, r := range rows {
		if w := len([]rune(r)); w > 39 {
			t.Errorf("row %d is %d columns wide", i, w)
		}
	}
}
