package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lvrach/chatmark/internal/annotate"
)

// Process exit codes. Scripts driving chatmark can tell a bad message
// apart from a missing config without parsing stderr.
const (
	ExitOK            = 0
	ExitRuntimeError  = 1
	ExitNotConfigured = 2
	ExitInvalidInput  = 3
)

// CLIError is a command failure with its exit code and a stable
// snake_case code for JSON consumers.
type CLIError struct {
	ExitCode int
	Code     string
	Message  string
}

func (e *CLIError) Error() string { return e.Message }

func asCLIError(err error, target **CLIError) bool {
	return errors.As(err, target)
}

func newCLIError(exitCode int, code, message string) *CLIError {
	return &CLIError{ExitCode: exitCode, Code: code, Message: message}
}

// status is the JSON envelope for commands that report a message rather
// than a compile result.
type status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// printer writes command outcomes in the format chosen by --json.
type printer struct {
	json   bool
	out    io.Writer
	errOut io.Writer
}

func newPrinter(g *Globals) printer {
	return printer{json: g.JSON, out: os.Stdout, errOut: os.Stderr}
}

// done reports a successful command.
func (p printer) done(message string) {
	if p.json {
		writeLine(p.out, status{Status: "ok", Message: message})
		return
	}
	fmt.Fprintln(p.out, message)
}

// fail reports err and returns the exit code the process should use.
// Errors that are not a *CLIError are runtime errors.
func (p printer) fail(err error) int {
	cliErr := &CLIError{ExitCode: ExitRuntimeError, Code: "runtime_error", Message: err.Error()}
	var target *CLIError
	if asCLIError(err, &target) {
		cliErr = target
	}
	if p.json {
		writeLine(p.errOut, status{Status: "error", Error: cliErr.Code, Message: cliErr.Message})
	} else {
		fmt.Fprintln(p.errOut, "Error: "+cliErr.Message)
	}
	return cliErr.ExitCode
}

func writeLine(w io.Writer, v any) {
	b, _ := json.Marshal(v)
	fmt.Fprintln(w, string(b))
}

func printJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

// printResultHuman writes the display text followed by a table with one
// row per annotation and the text it covers.
func printResultHuman(w io.Writer, res annotate.Result) {
	fmt.Fprintln(w, res.FinalText)
	if len(res.Annotations) == 0 {
		return
	}

	rows := make([][]string, 0, len(res.Annotations))
	for _, a := range res.Annotations {
		detail := a.Content
		if a.MemberID != "" {
			detail = a.MemberID
		}
		rows = append(rows, []string{
			a.Kind.String(),
			strconv.FormatUint(uint64(a.Start), 10),
			strconv.FormatUint(uint64(a.Length), 10),
			strconv.Quote(annotate.Slice(res.FinalText, a)),
			detail,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("TYPE", "START", "LENGTH", "TEXT", "DETAIL").
		Rows(rows...)
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Render())
}
