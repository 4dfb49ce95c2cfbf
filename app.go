package main

import (
	"fmt"
	"log/slog"

	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/render"
	"github.com/lvrach/chatmark/internal/richtext"
)

// loadConfig reads the config file named by --config, or the default one.
func loadConfig(globals *Globals) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if globals.Config != "" {
		cfg, err = config.LoadFile(globals.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, newCLIError(ExitNotConfigured, "invalid_config",
			fmt.Sprintf("Failed to load config: %s", err))
	}
	slog.Debug("config loaded",
		slog.String("pear_scheme", cfg.PearScheme),
		slog.Bool("linkify", !cfg.DisableLinkify),
		slog.Bool("sanitize", !cfg.RawInput))
	return cfg, nil
}

// newFormatter builds the formatter described by cfg, including its
// custom emoji pack.
func newFormatter(cfg config.Config) (*richtext.Formatter, error) {
	pack, err := config.LoadEmojiPack(cfg.EmojiFile)
	if err != nil {
		return nil, newCLIError(ExitNotConfigured, "invalid_emoji_pack", err.Error())
	}
	slog.Debug("emoji pack loaded", slog.Int("custom", len(pack.Custom)))
	return richtext.FromConfig(cfg, pack), nil
}

// newDirectory loads the member directory used to resolve mentions.
func newDirectory(cfg config.Config) (render.Directory, error) {
	members, err := config.LoadMembers(cfg.MembersFile)
	if err != nil {
		return nil, newCLIError(ExitNotConfigured, "invalid_members", err.Error())
	}
	return render.MapDirectory(members.Members), nil
}

// setup loads the config, applies per-command overrides, and builds the
// formatter from the result.
func setup(globals *Globals, overrides ...func(*config.Config)) (config.Config, *richtext.Formatter, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return config.Config{}, nil, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	f, err := newFormatter(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, f, nil
}
