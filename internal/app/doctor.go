package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/reel/reel/internal/catalog"
	"github.com/reel/reel/internal/config"
	"github.com/reel/reel/internal/ui"
)

// Check is one line of the doctor report.
type Check struct {
	Name     string
	Detail   string
	OK       bool
	Optional bool
}

// Diagnose checks the setup without scanning the library.
func Diagnose(cfg *config.Config, cfgPath, historyPath string, now time.Time) []Check {
	var checks []Check

	cfgDetail := cfgPath
	if _, err := os.Stat(cfgPath); err != nil {
		cfgDetail = cfgPath + " (not found, using defaults)"
	}
	checks = append(checks, Check{Name: "Config file", Detail: cfgDetail, OK: true})

	if p, err := cfg.CheckPlayer(); err != nil {
		checks = append(checks, Check{Name: "Player", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "Player", Detail: p, OK: true})
	}

	root := Check{Name: "Library", Detail: cfg.Library.Root}
	if fi, err := os.Stat(cfg.Library.Root); err != nil {
		root.Detail += " (not found)"
	} else if !fi.IsDir() {
		root.Detail += " (not a directory)"
	} else {
		root.OK = true
	}
	checks = append(checks, root)

	checks = append(checks, cacheCheck(cfg.Library.Cache, now))

	theme := Check{Name: "Theme", Detail: cfg.UI.Theme, OK: ui.ValidTheme(cfg.UI.Theme), Optional: true}
	if !theme.OK {
		theme.Detail += " (unknown, classic is used; valid: " + strings.Join(ui.ThemeNames(), ", ") + ")"
	}
	checks = append(checks, theme)

	hist := Check{Name: "History", Detail: historyPath, OK: true, Optional: true}
	if cfg.History.Disabled {
		hist.Detail = "disabled"
	}
	checks = append(checks, hist)

	return checks
}

func cacheCheck(path string, now time.Time) Check {
	c := Check{Name: "Cache", Detail: path, Optional: true}
	fi, err := os.Stat(path)
	if err != nil {
		c.Detail += " (not created yet)"
		return c
	}
	paths, _, err := catalog.Load(path)
	if err != nil {
		c.Detail += fmt.Sprintf(" (unreadable: %v)", err)
		return c
	}
	c.OK = true
	c.Detail += fmt.Sprintf(" (%d entries, %s, updated %s)",
		len(paths), humanize.Bytes(uint64(fi.Size())), humanize.RelTime(fi.ModTime(), now, "ago", "from now"))
	return c
}

// WriteChecks prints checks and reports whether every required one passed.
func WriteChecks(w io.Writer, checks []Check, theme ui.Theme) bool {
	healthy := true
	fmt.Fprintln(w, theme.TitleBar.Render("reel doctor"))
	for _, c := range checks {
		state := "OK"
		style := theme.Item
		switch {
		case !c.OK && c.Optional:
			state = "WARN"
			style = theme.Dim
		case !c.OK:
			state = "NOT FOUND"
			style = theme.Error
			healthy = false
		}
		fmt.Fprintf(w, "%s: %s %s\n", c.Name, style.Render(state), c.Detail)
	}
	return healthy
}
