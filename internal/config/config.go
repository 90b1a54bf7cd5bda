package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/reel/reel/internal/player"
	"github.com/reel/reel/internal/scan"
)

// Config holds reel runtime configuration loaded from TOML.
type Config struct {
	Library     LibraryConfig `toml:"library"`
	Player      PlayerConfig  `toml:"player"`
	UI          UIConfig      `toml:"ui"`
	History     HistoryConfig `toml:"history"`
	Keybindings KeybindConfig `toml:"keybindings"`
}

// LibraryConfig points at the video tree and its cache file.
type LibraryConfig struct {
	Root       string   `toml:"root"`
	Cache      string   `toml:"cache"`
	Extensions []string `toml:"extensions"`
}

type PlayerConfig struct {
	Path        string   `toml:"path"`
	Output      string   `toml:"output"`    // hdmi, local, both
	Subtitles   string   `toml:"subtitles"` // on, off
	Align       string   `toml:"align"`     // left, center
	SubtitleExt string   `toml:"subtitle_ext"`
	ExtraArgs   []string `toml:"extra_args"`
}

type UIConfig struct {
	Theme string `toml:"theme"`
}

// HistoryConfig controls the play history database.
type HistoryConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// KeybindConfig allows customizing keybindings. Each value is a comma
// separated list of keys.
type KeybindConfig struct {
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	PageUp   string `toml:"page_up"`
	PageDown string `toml:"page_down"`
	Play     string `toml:"play"`
	Rescan   string `toml:"rescan"`
	Find     string `toml:"find"`
	Search   string `toml:"search"`
	Info     string `toml:"info"`
	Help     string `toml:"help"`
	Quit     string `toml:"quit"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	if err := applyDefaults(&cfg); err != nil {
		// only home directory expansion can fail; leave the paths unexpanded
		cfg.Library.Root = "~/movies"
		cfg.Library.Cache = "~/.movies.db"
	}
	return &cfg
}

// Load reads configuration from disk. If path is empty, a default OS-specific
// location is used. A missing file is not an error: defaults are returned.
func Load(path string) (*Config, string, error) {
	cfgPath := path
	if cfgPath == "" {
		var err error
		cfgPath, err = defaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
	}

	var cfg Config
	data, err := os.ReadFile(cfgPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, cfgPath, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, cfgPath, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, cfgPath, err
	}

	if err := Validate(cfg); err != nil {
		return nil, cfgPath, err
	}

	return &cfg, cfgPath, nil
}

// Dir returns the reel configuration directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "Reel"), nil
	}
	return filepath.Join(dir, "reel"), nil
}

func defaultPath() (string, error) {
	base, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.toml"), nil
}

func applyDefaults(cfg *Config) error {
	if cfg.Library.Root == "" {
		cfg.Library.Root = "~/movies"
	}
	if cfg.Library.Cache == "" {
		cfg.Library.Cache = "~/.movies.db"
	}
	if len(cfg.Library.Extensions) == 0 {
		cfg.Library.Extensions = append([]string(nil), scan.DefaultExtensions...)
	}
	if cfg.Player.Path == "" {
		cfg.Player.Path = player.DefaultPath
	}
	if cfg.Player.Output == "" {
		cfg.Player.Output = player.DefaultOutput
	}
	if cfg.Player.Subtitles == "" {
		cfg.Player.Subtitles = player.DefaultSubtitles
	}
	if cfg.Player.Align == "" {
		cfg.Player.Align = player.DefaultAlign
	}
	if cfg.Player.SubtitleExt == "" {
		cfg.Player.SubtitleExt = player.DefaultSubtitleExt
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "classic"
	}
	// Keybinding defaults
	if cfg.Keybindings.Up == "" {
		cfg.Keybindings.Up = "i,up"
	}
	if cfg.Keybindings.Down == "" {
		cfg.Keybindings.Down = "k,down"
	}
	if cfg.Keybindings.PageUp == "" {
		cfg.Keybindings.PageUp = "y,pgup"
	}
	if cfg.Keybindings.PageDown == "" {
		cfg.Keybindings.PageDown = "h,pgdown"
	}
	if cfg.Keybindings.Play == "" {
		cfg.Keybindings.Play = "p,enter"
	}
	if cfg.Keybindings.Rescan == "" {
		cfg.Keybindings.Rescan = "R"
	}
	if cfg.Keybindings.Find == "" {
		cfg.Keybindings.Find = "f"
	}
	if cfg.Keybindings.Search == "" {
		cfg.Keybindings.Search = "/"
	}
	if cfg.Keybindings.Info == "" {
		cfg.Keybindings.Info = "d"
	}
	if cfg.Keybindings.Help == "" {
		cfg.Keybindings.Help = "?"
	}
	if cfg.Keybindings.Quit == "" {
		cfg.Keybindings.Quit = "Q,ctrl+c"
	}

	var err error
	if cfg.Library.Root, err = ExpandHome(cfg.Library.Root); err != nil {
		return fmt.Errorf("library.root: %w", err)
	}
	if cfg.Library.Cache, err = ExpandHome(cfg.Library.Cache); err != nil {
		return fmt.Errorf("library.cache: %w", err)
	}
	if cfg.History.Path, err = ExpandHome(cfg.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

// Validate performs semantic validation of config. The player binary is not
// looked up here; see CheckPlayer.
func Validate(cfg Config) error {
	if cfg.Library.Root == "" {
		return errors.New("library.root is required")
	}
	if cfg.Library.Cache == "" {
		return errors.New("library.cache is required")
	}
	for _, ext := range cfg.Library.Extensions {
		e := strings.TrimSpace(ext)
		if e == "" || strings.ContainsAny(e, `/\`) {
			return fmt.Errorf("library.extensions contains invalid entry %q", ext)
		}
	}
	if cfg.Player.Path == "" {
		return errors.New("player.path is required")
	}
	switch cfg.Player.Subtitles {
	case "on", "off":
	default:
		return fmt.Errorf("player.subtitles must be \"on\" or \"off\", got %q", cfg.Player.Subtitles)
	}
	if strings.ContainsAny(cfg.Player.SubtitleExt, `/\`) {
		return fmt.Errorf("player.subtitle_ext %q must not contain a path separator", cfg.Player.SubtitleExt)
	}

	binds := map[string]string{
		"up":        cfg.Keybindings.Up,
		"down":      cfg.Keybindings.Down,
		"page_up":   cfg.Keybindings.PageUp,
		"page_down": cfg.Keybindings.PageDown,
		"play":      cfg.Keybindings.Play,
		"rescan":    cfg.Keybindings.Rescan,
		"find":      cfg.Keybindings.Find,
		"search":    cfg.Keybindings.Search,
		"info":      cfg.Keybindings.Info,
		"help":      cfg.Keybindings.Help,
		"quit":      cfg.Keybindings.Quit,
	}
	owner := make(map[string]string)
	for _, action := range sortedKeys(binds) {
		keys := SplitKeys(binds[action])
		if len(keys) == 0 {
			return fmt.Errorf("keybindings.%s is empty", action)
		}
		for _, k := range keys {
			if prev, dup := owner[k]; dup {
				return fmt.Errorf("key %q is bound to both %s and %s", k, prev, action)
			}
			owner[k] = action
		}
	}
	return nil
}

// CheckPlayer reports whether the configured player can be executed.
func (c Config) CheckPlayer() (string, error) {
	if _, err := os.Stat(c.Player.Path); err == nil {
		return c.Player.Path, nil
	}
	p, err := execLookPath(c.Player.Path)
	if err != nil {
		return "", fmt.Errorf("player not found (%s): %w", c.Player.Path, err)
	}
	return p, nil
}

// SplitKeys splits a comma separated key list, dropping blanks. A lone ","
// names the comma key itself.
func SplitKeys(s string) []string {
	if strings.TrimSpace(s) == "," {
		return []string{","}
	}
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// test seams
var (
	execLookPath = exec.LookPath
	userHomeDir  = os.UserHomeDir
)
