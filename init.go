package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"

	"github.com/lvrach/chatmark/internal/config"
	"github.com/lvrach/chatmark/internal/keyring"
)

// InitCmd writes the config file interactively or with defaults.
type InitCmd struct {
	Defaults bool `help:"Write the default config without prompting."`
	Force    bool `help:"Overwrite an existing config without asking."`
}

func (cmd *InitCmd) Run(globals *Globals) error {
	path := globals.Config
	if path == "" {
		path = config.Path()
	}

	if cmd.Defaults {
		return cmd.save(globals, path, config.NewDefault())
	}

	cfg, err := loadConfig(globals)
	if err != nil {
		cfg = config.NewDefault()
	}

	// Check if already configured.
	if _, statErr := os.Stat(path); statErr == nil && !cmd.Force {
		var overwrite bool
		err := runField(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Reconfigure?", path)).
				Affirmative("Yes").
				Negative("No").
				Value(&overwrite),
		)
		if err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	fmt.Println()
	fmt.Println("  Welcome to chatmark!")
	fmt.Println("  Let's set up how messages are compiled.")
	fmt.Println()

	if err := cmd.promptCompiler(&cfg); err != nil {
		return err
	}
	if err := cmd.promptServer(&cfg); err != nil {
		return err
	}
	if err := cmd.save(globals, path, cfg); err != nil {
		return err
	}

	if cfg.Server.Auth.Enabled() && cfg.Server.Auth.Token == "" {
		return cmd.offerToken(globals)
	}
	return nil
}

func (cmd *InitCmd) promptCompiler(cfg *config.Config) error {
	err := runField(
		huh.NewInput().
			Title("Pear link scheme:").
			Description("Bare links with this scheme become pear links, e.g. pear://room.").
			Placeholder(config.DefaultPearScheme).
			Validate(config.ValidatePearScheme).
			Value(&cfg.PearScheme),
	)
	if err != nil {
		return err
	}

	linkify := !cfg.DisableLinkify
	err = runField(
		huh.NewConfirm().
			Title("Turn bare URLs like www.example.com into links?").
			Value(&linkify),
	)
	if err != nil {
		return err
	}
	cfg.DisableLinkify = !linkify

	sanitize := !cfg.RawInput
	err = runField(
		huh.NewConfirm().
			Title("Clean pasted input before compiling?").
			Description("Strips control characters and normalizes line endings.").
			Value(&sanitize),
	)
	if err != nil {
		return err
	}
	cfg.RawInput = !sanitize

	err = runField(
		huh.NewInput().
			Title("Custom emoji file (YAML, optional):").
			Placeholder("~/.config/chatmark/emoji.yaml").
			Validate(validatePackFile(func(p string) error {
				_, err := config.LoadEmojiPack(p)
				return err
			})).
			Value(&cfg.EmojiFile),
	)
	if err != nil {
		return err
	}

	return runField(
		huh.NewInput().
			Title("Member directory file (YAML, optional):").
			Placeholder("~/.config/chatmark/members.yaml").
			Validate(validatePackFile(func(p string) error {
				_, err := config.LoadMembers(p)
				return err
			})).
			Value(&cfg.MembersFile),
	)
}

func (cmd *InitCmd) promptServer(cfg *config.Config) error {
	err := runField(
		huh.NewInput().
			Title("Service listen address:").
			Placeholder(config.DefaultAddr).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("address cannot be empty")
				}
				return nil
			}).
			Value(&cfg.Server.Addr),
	)
	if err != nil {
		return err
	}

	return runField(
		huh.NewSelect[string]().
			Title("Service authentication:").
			Options(
				huh.NewOption("None (local use only)", config.AuthModeDisabled),
				huh.NewOption("Bearer token", config.AuthModeToken),
			).
			Value(&cfg.Server.Auth.Mode),
	)
}

// offerToken asks whether to generate and store a token right away.
func (cmd *InitCmd) offerToken(globals *Globals) error {
	if _, err := keyring.Get(); err == nil {
		return nil
	}

	var generate bool
	err := runField(
		huh.NewConfirm().
			Title("No service token is stored yet. Generate one now?").
			Affirmative("Yes").
			Negative("Later").
			Value(&generate),
	)
	if err != nil || !generate {
		return err
	}
	return storeToken(globals, "", true)
}

func (cmd *InitCmd) save(globals *Globals, path string, cfg config.Config) error {
	if err := config.SaveFile(path, cfg); err != nil {
		return newCLIError(ExitInvalidInput, "invalid_config", err.Error())
	}

	msg := fmt.Sprintf("Config written to %s.", path)
	if globals.JSON {
		newPrinter(globals).done(msg)
	} else {
		fmt.Println("\n" + msg)
		fmt.Println("\nTry it: chatmark preview \"**Hello** from the terminal :wave:\"")
	}
	return nil
}

// validatePackFile accepts an empty path or one that load can read.
func validatePackFile(load func(string) error) func(string) error {
	return func(p string) error {
		if strings.TrimSpace(p) == "" {
			return nil
		}
		return load(p)
	}
}

// runField wraps a single huh field in a form that supports
// Ctrl+C and Ctrl+D for quitting, with bottom margin styling.
func runField(field huh.Field) error {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"))

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.MarginBottom(1)
	t.Blurred.Base = t.Blurred.Base.MarginBottom(1)

	return huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithKeyMap(km).
		WithTheme(t).
		Run()
}
