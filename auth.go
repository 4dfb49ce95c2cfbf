package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/lvrach/chatmark/internal/keyring"
	"github.com/lvrach/chatmark/internal/launchd"
	"github.com/lvrach/chatmark/internal/remote"
)

const minTokenLen = 16

// AuthCmd manages the service bearer token.
type AuthCmd struct {
	Set    AuthSetCmd    `cmd:"" help:"Store a service token in the keychain (interactive, argument, or --generate)."`
	Clear  AuthClearCmd  `cmd:"" help:"Remove the service token from the keychain."`
	Status AuthStatusCmd `cmd:"" default:"withargs" help:"Check service token status."`
}

// AuthSetCmd stores the service token.
type AuthSetCmd struct {
	Token    string `arg:"" optional:"" help:"Token to store (skips interactive prompt)."`
	Generate bool   `help:"Generate a random token and print it once." short:"g"`
}

func (cmd *AuthSetCmd) Run(globals *Globals) error {
	if cmd.Token != "" && cmd.Generate {
		return newCLIError(ExitInvalidInput, "invalid_input", "Pass a token or --generate, not both.")
	}
	if cmd.Token != "" || cmd.Generate {
		return storeToken(globals, cmd.Token, cmd.Generate)
	}

	var token string
	err := runField(
		huh.NewInput().
			Title("Service token:").
			Description("Callers send it as `Authorization: Bearer <token>`.").
			EchoMode(huh.EchoModePassword).
			Validate(validateToken).
			Value(&token),
	)
	if err != nil {
		return err
	}
	return storeToken(globals, token, false)
}

// storeToken saves token, or a freshly generated one, to the keychain.
func storeToken(globals *Globals, token string, generate bool) error {
	if generate {
		var err error
		token, err = generateToken()
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
	}
	token = strings.TrimSpace(token)
	if err := validateToken(token); err != nil {
		return newCLIError(ExitInvalidInput, "invalid_token", err.Error())
	}

	if err := keyring.Set(token); err != nil {
		return fmt.Errorf("store token in keychain: %w", err)
	}

	if globals.JSON {
		resp := map[string]any{"status": "ok", "token_prefix": maskToken(token)}
		if generate {
			resp["token"] = token
		}
		b, _ := json.Marshal(resp)
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}

	fmt.Fprintln(os.Stdout, "Service token stored in keychain.")
	if generate {
		fmt.Fprintf(os.Stdout, "\nToken (shown once): %s\n", token)
	}
	return nil
}

// AuthClearCmd removes the service token from the keychain.
type AuthClearCmd struct{}

func (cmd *AuthClearCmd) Run(globals *Globals) error {
	// Check if credentials exist first.
	_, err := keyring.Get()
	if err != nil {
		if keyring.IsNotFound(err) {
			newPrinter(globals).done("No service token found.")
			return nil
		}
		return newCLIError(ExitRuntimeError, "keyring_error",
			fmt.Sprintf("Failed to read keychain: %s", err))
	}

	// Warn if the login service is installed.
	if launchd.IsInstalled() && !globals.JSON {
		fmt.Fprintln(os.Stderr, "Warning: the login service is installed. With token auth it will refuse to start.")
		fmt.Fprintln(os.Stderr, "Run `chatmark service uninstall` to remove it.")
	}

	if err := keyring.Delete(); err != nil {
		return newCLIError(ExitRuntimeError, "keyring_error",
			fmt.Sprintf("Failed to remove token: %s", err))
	}

	newPrinter(globals).done("Service token removed from keychain.")
	return nil
}

// AuthStatusCmd reports whether a token is available.
type AuthStatusCmd struct {
	Verify bool   `help:"Call the running service with the token." short:"V"`
	URL    string `help:"Service URL for --verify (default: the configured listen address)." placeholder:"URL"`
}

func (cmd *AuthStatusCmd) Run(globals *Globals) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}

	token, err := resolveToken(cfg.Server.Auth.Token)
	if err != nil {
		return err
	}
	if token == "" {
		return cmd.printNotConfigured(globals, cfg.Server.Auth.Mode)
	}

	// Optional: call the service.
	var verified *bool
	if cmd.Verify {
		url := cmd.URL
		if url == "" {
			url = "http://" + cfg.Server.Addr
		}
		ok := verifyToken(url, token) == nil
		verified = &ok
	}

	if globals.JSON {
		resp := map[string]any{
			"configured":   true,
			"auth_mode":    cfg.Server.Auth.Mode,
			"token_prefix": maskToken(token),
		}
		if verified != nil {
			resp["verified"] = *verified
		}
		b, _ := json.Marshal(resp)
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}

	fmt.Fprintf(os.Stdout, "Token: configured (%s)\n", maskToken(token))
	fmt.Fprintf(os.Stdout, "Auth mode: %s\n", cfg.Server.Auth.Mode)
	if verified != nil {
		if *verified {
			fmt.Fprintln(os.Stdout, "Verification: ok")
		} else {
			fmt.Fprintln(os.Stdout, "Verification: failed. Is `chatmark serve` running with this token?")
		}
	}
	return nil
}

func (cmd *AuthStatusCmd) printNotConfigured(globals *Globals, mode string) error {
	if globals.JSON {
		resp := map[string]any{"configured": false, "auth_mode": mode}
		b, _ := json.Marshal(resp)
		fmt.Fprintln(os.Stdout, string(b))
	} else {
		fmt.Fprintln(os.Stdout, "Token: not configured")
		fmt.Fprintln(os.Stdout, "Run `chatmark auth set --generate` to create one.")
	}
	return nil
}

// verifyToken compiles a short test message against the service at url.
func verifyToken(url, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := remote.Client{BaseURL: url, Token: token}
	if err := client.Ping(ctx); err != nil {
		return err
	}
	_, err := client.Compile(ctx, "ping")
	return err
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validateToken(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if len(s) < minTokenLen {
		return fmt.Errorf("token must be at least %d characters", minTokenLen)
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return fmt.Errorf("token cannot contain whitespace")
	}
	return nil
}

// maskToken returns the first four characters followed by an ellipsis.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:4] + "..."
}
