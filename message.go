package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lvrach/chatmark/internal/config"
)

// MessageInput provides shared message resolution (arg, file, stdin, pipe).
// Embedded in CompileCmd and PreviewCmd.
type MessageInput struct {
	Message string `arg:"" optional:"" help:"Message text."`
	File    string `help:"Read message from a file." short:"F" type:"existingfile"`
	Stdin   bool   `help:"Force reading message from stdin."`
	Raw     bool   `help:"Compile the input as typed, skipping input cleanup."`
}

// Resolve returns the message source, checking arg -> file -> stdin flag ->
// piped stdin. Trailing newlines are dropped; everything else is kept as
// typed, since leading blank lines and spaces are compiler input.
func (m *MessageInput) Resolve() (string, error) {
	switch {
	case m.Message != "":
		return m.Message, nil
	case m.File != "":
		f, err := os.Open(m.File) //nolint:gosec // user-provided path via CLI flag
		if err != nil {
			return "", newCLIError(ExitRuntimeError, "read_file_failed",
				fmt.Sprintf("Failed to read file %q: %s", m.File, err))
		}
		defer f.Close() //nolint:errcheck
		return readMessage(f, fmt.Sprintf("File %q is empty.", m.File))
	case m.Stdin || stdinPiped():
		return readMessage(os.Stdin, "No message provided (stdin was empty).")
	}
	return "", newCLIError(ExitInvalidInput, "empty_message",
		"No message provided. Pass a message as an argument, --file, or pipe via stdin.")
}

// override applies the input flags to the loaded config.
func (m *MessageInput) override(cfg *config.Config) {
	if m.Raw {
		cfg.RawInput = true
	}
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal.
func stdinPiped() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}

func readMessage(r io.Reader, emptyMsg string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	msg := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(msg) == "" {
		return "", newCLIError(ExitInvalidInput, "empty_message", emptyMsg)
	}
	return msg, nil
}
