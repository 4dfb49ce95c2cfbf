package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/keyring"
	"github.com/lvrach/chatmark/internal/server"
)

// ServeCmd runs the compile HTTP service in the foreground.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config and CHATMARK_ADDR)." placeholder:"HOST:PORT"`
}

func (cmd *ServeCmd) Run(globals *Globals) error {
	// A .env next to the working directory is optional.
	_ = godotenv.Load()

	cfg, f, err := setup(globals)
	if err != nil {
		return err
	}

	if addr := os.Getenv("CHATMARK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}

	token := ""
	if cfg.Server.Auth.Enabled() {
		token, err = resolveToken(cfg.Server.Auth.Token)
		if err != nil {
			return err
		}
		if token == "" {
			return newCLIError(ExitNotConfigured, "no_token",
				"Auth mode is token but no token is set. Run `chatmark auth set --generate`.")
		}
	}

	level := slog.LevelInfo
	if globals.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := make(chan string, 1)
	go func() {
		if addr, ok := <-ready; ok {
			logger.Info("listening",
				slog.String("addr", addr),
				slog.String("auth", cfg.Server.Auth.Mode),
				slog.String("pear_scheme", cfg.PearScheme))
		}
	}()

	if err := server.Run(ctx, cfg.Server, token, f, logger, ready); err != nil {
		return newCLIError(ExitRuntimeError, "serve_failed", fmt.Sprintf("Service stopped: %s", err))
	}
	logger.Info("stopped")
	return nil
}

// resolveToken picks the service token: the configured one, then
// CHATMARK_TOKEN, then the keychain. A missing keychain entry is not an
// error.
func resolveToken(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if env := os.Getenv("CHATMARK_TOKEN"); env != "" {
		return env, nil
	}
	stored, err := keyring.Get()
	if err != nil {
		if keyring.IsNotFound(err) {
			return "", nil
		}
		return "", newCLIError(ExitRuntimeError, "keyring_error",
			fmt.Sprintf("Failed to read keychain: %s", err))
	}
	return stored, nil
}

// serverConfigPath returns the config path the service should be started
// with, if one was given explicitly.
func serverConfigPath(globals *Globals) string {
	if globals.Config != "" {
		return globals.Config
	}
	if config.Exists() {
		return config.Path()
	}
	return ""
}
