package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/reel/reel/internal/app"
	"github.com/reel/reel/internal/catalog"
	"github.com/reel/reel/internal/config"
	"github.com/reel/reel/internal/history"
	"github.com/reel/reel/internal/logging"
	"github.com/reel/reel/internal/player"
	"github.com/reel/reel/internal/ui"
)

var version = "0.1.0"

const historyLimit = 20

var (
	flagConfig       string
	flagScan         bool
	flagList         bool
	flagDoctor       bool
	flagHistory      bool
	flagClearHistory bool
	flagVersion      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reel [DIR]",
		Short: "A terminal video browser",
		Long: `Browse the video files under a directory and play them with an external player.

Examples:
  reel                  # browse the configured library
  reel ~/Videos         # browse another directory
  reel --doctor         # check setup
  reel --scan           # rescan the library and rewrite the cache
  reel --history        # show recent plays
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Config file (default: ~/.config/reel/config.toml)")
	rootCmd.Flags().BoolVar(&flagScan, "scan", false, "Rescan the library and exit")
	rootCmd.Flags().BoolVar(&flagList, "list", false, "Print the library (name and path) and exit")
	rootCmd.Flags().BoolVar(&flagDoctor, "doctor", false, "Check configuration and player (no library scan)")
	rootCmd.Flags().BoolVar(&flagHistory, "history", false, "Show recent plays and exit")
	rootCmd.Flags().BoolVar(&flagClearHistory, "clear-history", false, "Forget all recorded plays and exit")
	rootCmd.Flags().BoolVar(&flagVersion, "version", false, "Print version and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reel:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if flagVersion {
		fmt.Fprintln(out, "reel", version)
		return nil
	}

	cfg, cfgPath, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Library.Root = resolveRoot(cfg.Library.Root, args)

	stateDir, err := logging.StateDir()
	if err != nil {
		return fmt.Errorf("state dir: %w", err)
	}
	logger, logFile, err := logging.Setup(stateDir)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()
	logger.Info("starting reel",
		slog.String("version", version),
		slog.String("config", cfgPath),
		slog.String("root", cfg.Library.Root))

	historyPath := cfg.History.Path
	if historyPath == "" {
		historyPath = history.DefaultPath(stateDir)
	}

	noColor := os.Getenv("NO_COLOR") != ""
	theme := ui.GetTheme(cfg.UI.Theme, noColor)

	switch {
	case flagDoctor:
		checks := app.Diagnose(cfg, cfgPath, historyPath, time.Now())
		if !app.WriteChecks(out, checks, theme) {
			return fmt.Errorf("setup is incomplete")
		}
		logger.Info("doctor complete")
		return nil
	case flagScan:
		return runScan(out, cfg, logger)
	case flagList:
		cat, rep := catalog.Build(catalogOptions(cfg, false, logger))
		if rep.ScanErr != nil {
			return fmt.Errorf("scan: %w", rep.ScanErr)
		}
		writeCatalog(out, cat)
		return nil
	case flagHistory, flagClearHistory:
		store, err := history.Open(historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		if flagClearHistory {
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(out, "Play history cleared.")
			return nil
		}
		return writeHistory(cmd.Context(), out, store, historyLimit, time.Now())
	}

	var hist app.History
	if !cfg.History.Disabled {
		store, err := history.Open(historyPath)
		if err != nil {
			logger.Warn("play history unavailable", slog.String("path", historyPath), slog.Any("err", err))
		} else {
			defer store.Close()
			hist = store
		}
	}

	ply := player.New(player.Options{
		Path:        cfg.Player.Path,
		Output:      cfg.Player.Output,
		Subtitles:   cfg.Player.Subtitles,
		Align:       cfg.Player.Align,
		SubtitleExt: cfg.Player.SubtitleExt,
		ExtraArgs:   cfg.Player.ExtraArgs,
		Logger:      logger,
	})
	logger.Info("player configured", slog.String("path", ply.Path()))

	model := app.New(app.Options{
		Config:  cfg,
		Player:  ply,
		History: hist,
		Theme:   theme,
		Logger:  logger,
		Version: version,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("run tui", slog.Any("err", err))
		return fmt.Errorf("tui: %w", err)
	}
	logger.Info("bye")
	return nil
}

// resolveRoot returns the directory named on the command line when it exists,
// otherwise the configured root.
func resolveRoot(configured string, args []string) string {
	if len(args) == 0 {
		return configured
	}
	fi, err := os.Stat(args[0])
	if err != nil || !fi.IsDir() {
		return configured
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return configured
	}
	return abs
}

func catalogOptions(cfg *config.Config, force bool, logger *slog.Logger) catalog.Options {
	return catalog.Options{
		Root:        cfg.Library.Root,
		CachePath:   cfg.Library.Cache,
		Extensions:  cfg.Library.Extensions,
		ForceRescan: force,
		Logger:      logger,
	}
}

func runScan(out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	fmt.Fprintf(out, "Scanning %s...\n", cfg.Library.Root)
	start := time.Now()
	cat, rep := catalog.Build(catalogOptions(cfg, true, logger))
	if rep.ScanErr != nil {
		return fmt.Errorf("scan: %w", rep.ScanErr)
	}
	if rep.SaveErr != nil {
		return fmt.Errorf("save cache: %w", rep.SaveErr)
	}
	elapsed := time.Since(start)
	fmt.Fprintf(out, "Scan complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  %s movies\n", humanize.Comma(int64(cat.Len())))
	if cat.Len() > 0 {
		if fi, err := os.Stat(cfg.Library.Cache); err == nil {
			fmt.Fprintf(out, "  cache %s (%s)\n", cfg.Library.Cache, humanize.Bytes(uint64(fi.Size())))
		}
	} else {
		fmt.Fprintln(out, "  nothing found, cache left unchanged")
	}
	logger.Info("scan complete", slog.Int("entries", cat.Len()), slog.Duration("duration", elapsed))
	return nil
}

func writeCatalog(w io.Writer, cat *catalog.Catalog) {
	for _, e := range cat.Entries() {
		fmt.Fprintf(w, "%s\t%s\n", e.DisplayName, e.FullPath)
	}
}

type recentPlays interface {
	Recent(ctx context.Context, limit int) ([]history.PlayRecord, error)
}

func writeHistory(ctx context.Context, w io.Writer, store recentPlays, limit int, now time.Time) error {
	recs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No plays recorded yet.")
		return nil
	}
	for _, r := range recs {
		state := "watched"
		if r.Failed {
			state = "failed"
		}
		fmt.Fprintf(w, "%-16s %-8s %s\n", humanize.RelTime(r.PlayedAt, now, "ago", "from now"), state, r.Path)
	}
	return nil
}
