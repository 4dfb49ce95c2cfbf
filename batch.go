package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lvrach/chatmark/internal/annotate"
)

// BatchCmd compiles many files concurrently.
type BatchCmd struct {
	Files       []string `arg:"" help:"Files to compile." type:"existingfile"`
	Concurrency int      `help:"Number of files compiled at once (default: number of CPUs)." short:"c"`
}

type batchLine struct {
	File   string           `json:"file"`
	Result *annotate.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (cmd *BatchCmd) Run(globals *Globals) error {
	_, f, err := setup(globals)
	if err != nil {
		return err
	}

	limit := cmd.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	lines := make([]batchLine, len(cmd.Files))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range cmd.Files {
		g.Go(func() error {
			line := batchLine{File: path}
			data, err := os.ReadFile(path) //nolint:gosec // user-provided path via CLI arg
			if err != nil {
				line.Error = err.Error()
			} else {
				res := f.Format(strings.TrimRight(string(data), "\n"))
				line.Result = &res
			}
			lines[i] = line
			return nil
		})
	}
	_ = g.Wait()

	// One JSON object per line, in argument order, regardless of --json.
	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, line := range lines {
		if line.Error != "" {
			failed++
			slog.Warn("compile failed", slog.String("file", line.File), slog.String("error", line.Error))
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	if failed > 0 {
		return newCLIError(ExitRuntimeError, "batch_failed",
			fmt.Sprintf("%d of %d file(s) could not be read.", failed, len(lines)))
	}
	return nil
}
