package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lvrach/chatmark/internal/render"
)

const watchDebounce = 100 * time.Millisecond

// WatchCmd recompiles a file whenever it is saved.
type WatchCmd struct {
	File   string `arg:"" help:"File to watch." type:"existingfile"`
	Render bool   `help:"Print the terminal rendering instead of the annotation table."`
}

func (cmd *WatchCmd) Run(globals *Globals) error {
	cfg, f, err := setup(globals)
	if err != nil {
		return err
	}
	dir, err := newDirectory(cfg)
	if err != nil {
		return err
	}
	term := render.NewTerminal(nil, render.WithDirectory(dir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watchFile(ctx, cmd.File, slog.Default(), func(text string) {
		res := f.Format(text)
		switch {
		case globals.JSON:
			_ = printJSON(res)
		case cmd.Render:
			fmt.Fprintln(os.Stdout, term.Render(res))
			fmt.Fprintln(os.Stdout, strings.Repeat("─", 40))
		default:
			printResultHuman(os.Stdout, res)
			fmt.Fprintln(os.Stdout, strings.Repeat("─", 40))
		}
	})
}

// watchFile calls onChange with the file's contents once at start and then
// after every burst of writes, until ctx is cancelled. The parent directory
// is watched so editors that save by renaming over the file are seen.
func watchFile(ctx context.Context, path string, logger *slog.Logger, onChange func(string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watcher: started", slog.String("path", abs))

	emit := func() {
		data, err := os.ReadFile(abs) //nolint:gosec // user-provided path via CLI arg
		if err != nil {
			logger.Warn("watcher: read failed", slog.String("path", abs), slog.String("error", err.Error()))
			return
		}
		onChange(strings.TrimRight(string(data), "\n"))
	}
	emit()

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watcher: stopped")
			return nil

		case <-debounceCh:
			emit()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceCh = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
