package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lvrach/chatmark/internal/history"
)

// HistoryCmd shows or manages saved compile results.
type HistoryCmd struct {
	Clear  bool   `help:"Clear all history."`
	Show   string `help:"Show one entry in full (ID or ID prefix)." placeholder:"ID"`
	Remove string `help:"Remove one entry." placeholder:"ID"`
}

func (cmd *HistoryCmd) Run(globals *Globals) error {
	switch {
	case cmd.Clear:
		return cmd.clear(globals)
	case cmd.Show != "":
		return cmd.show(globals)
	case cmd.Remove != "":
		return cmd.remove(globals)
	}
	return cmd.list(globals)
}

func (cmd *HistoryCmd) clear(globals *Globals) error {
	if err := history.Clear(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	newPrinter(globals).done("History cleared.")
	return nil
}

func (cmd *HistoryCmd) show(globals *Globals) error {
	e, err := lookupEntry(cmd.Show)
	if err != nil {
		return err
	}
	if globals.JSON {
		return printJSON(e)
	}
	fmt.Fprintf(os.Stdout, "ID: %s\nCreated: %s\n\n%s\n\n", e.ID, formatCreatedAt(e.CreatedAt), e.Source)
	printResultHuman(os.Stdout, e.Result)
	return nil
}

func (cmd *HistoryCmd) remove(globals *Globals) error {
	e, err := lookupEntry(cmd.Remove)
	if err != nil {
		return err
	}
	if _, err := history.Remove(e.ID); err != nil {
		return fmt.Errorf("remove history entry: %w", err)
	}
	newPrinter(globals).done(fmt.Sprintf("Removed %s.", e.ID))
	return nil
}

func (cmd *HistoryCmd) list(globals *Globals) error {
	entries, err := history.Load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	// Reverse so most recent entries appear first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if globals.JSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s]  %s\n", e.ID, formatCreatedAt(e.CreatedAt), truncate(firstLine(e.Source), 60))
	}
	return nil
}

// lookupEntry resolves an ID prefix to a single entry.
func lookupEntry(prefix string) (*history.Entry, error) {
	e, err := history.Get(prefix)
	if err != nil {
		return nil, newCLIError(ExitInvalidInput, "bad_entry", err.Error())
	}
	if e == nil {
		return nil, newCLIError(ExitInvalidInput, "not_found",
			fmt.Sprintf("No history entry with ID %q.", prefix))
	}
	return e, nil
}

// formatCreatedAt renders an RFC 3339 timestamp in local time, or returns
// it unchanged if it doesn't parse.
func formatCreatedAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
