package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
)

// Globals holds flags shared across all commands.
type Globals struct {
	JSON    bool   `help:"Output JSON for LLM/script consumption." short:"j"`
	Verbose bool   `help:"Log debug output to stderr." short:"v"`
	Config  string `help:"Path to config file (default: ~/.config/chatmark/config.json)." type:"path"`
}

// CLI is the root command structure for chatmark.
type CLI struct {
	Globals

	Compile CompileCmd `cmd:"" help:"Compile a chat message into display text and annotations."`
	Preview PreviewCmd `cmd:"" help:"Render a chat message in the terminal."`
	Batch   BatchCmd   `cmd:"" help:"Compile several files, one JSON line per file."`
	Watch   WatchCmd   `cmd:"" help:"Recompile a file every time it changes."`
	Inspect InspectCmd `cmd:"" help:"Edit a message with a live preview (interactive)."`
	Serve   ServeCmd   `cmd:"" help:"Run the compile HTTP service."`
	Init    InitCmd    `cmd:"" help:"Configure chatmark (interactive setup)."`
	Auth    AuthCmd    `cmd:"" help:"Manage the service bearer token."`
	Service ServiceCmd `cmd:"" help:"Run the service at login (macOS launchd)."`
	History HistoryCmd `cmd:"" help:"Show or manage saved compile results."`
	Guide   GuideCmd   `cmd:"" help:"Print the supported message syntax."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("chatmark"),
		kong.Description("Compile chat markdown into plain text plus styled ranges."),
		kong.UsageOnError(),
	)
	slog.SetDefault(newLogger(cli.Verbose))

	err := ctx.Run(&cli.Globals)
	if err != nil {
		// Ctrl+C / Ctrl+D: exit silently.
		if isUserAbort(err) {
			os.Exit(0)
		}

		os.Exit(newPrinter(&cli.Globals).fail(err))
	}
}

// newLogger returns the CLI's stderr logger. Commands stay quiet unless
// something goes wrong or --verbose is set.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// isUserAbort returns true for errors caused by the user
// quitting an interactive prompt (Ctrl+C, Ctrl+D).
// It intentionally does NOT match io.EOF via errors.Is because
// EOF can originate from network failures (e.g. "call /v1/compile: EOF"),
// which must surface as errors rather than silent exit 0.
func isUserAbort(err error) bool {
	if errors.Is(err, huh.ErrUserAborted) {
		return true
	}
	// huh wraps bubbletea errors as "huh: <err>"
	if strings.Contains(err.Error(), "user aborted") {
		return true
	}
	return false
}
