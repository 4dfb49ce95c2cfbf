package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/history"
	"github.com/lvrach/chatmark/internal/remote"
)

// CompileCmd compiles a message and prints the result.
type CompileCmd struct {
	MessageInput

	Save   bool   `help:"Save the result to history."`
	Remote string `help:"Compile on a running chatmark service at this URL instead of locally." placeholder:"URL"`
	Token  string `help:"Bearer token for --remote (default: CHATMARK_TOKEN, then the keychain)."`
}

func (cmd *CompileCmd) Run(globals *Globals) error {
	text, err := cmd.Resolve()
	if err != nil {
		return err
	}

	res, err := cmd.compile(globals, text)
	if err != nil {
		return err
	}

	if cmd.Save {
		entry, err := history.Append(text, res)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		slog.Debug("saved to history", slog.String("id", entry.ID))
	}

	if globals.JSON {
		return printJSON(res)
	}
	printResultHuman(os.Stdout, res)
	return nil
}

func (cmd *CompileCmd) compile(globals *Globals, text string) (annotate.Result, error) {
	if cmd.Remote == "" {
		_, f, err := setup(globals, cmd.override)
		if err != nil {
			return annotate.Result{}, err
		}
		return f.Format(text), nil
	}

	token, err := resolveToken(cmd.Token)
	if err != nil {
		return annotate.Result{}, err
	}

	client := remote.Client{BaseURL: cmd.Remote, Token: token}
	res, err := client.Compile(context.Background(), text)
	if err != nil {
		return annotate.Result{}, newCLIError(ExitRuntimeError, "remote_failed",
			fmt.Sprintf("Remote compile failed: %s", err))
	}
	return res, nil
}
