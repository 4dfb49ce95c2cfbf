package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lvrach/chatmark/internal/launchd"
)

// ServiceCmd manages running `chatmark serve` at login (macOS launchd).
type ServiceCmd struct {
	Install   ServiceInstallCmd   `cmd:"" help:"Install the macOS launchd agent for the compile service."`
	Uninstall ServiceUninstallCmd `cmd:"" help:"Remove the launchd agent."`
	Status    ServiceStatusCmd    `cmd:"" help:"Show whether the agent is installed and loaded."`
}

// ServiceInstallCmd installs the launchd agent.
type ServiceInstallCmd struct{}

func (cmd *ServiceInstallCmd) Run(globals *Globals) error {
	// Refuse to install an agent that would fail on start.
	if _, err := loadConfig(globals); err != nil {
		return err
	}

	// Resolve binary path.
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolve symlinks: %w", err)
	}

	configPath := serverConfigPath(globals)
	if err := launchd.Install(execPath, configPath); err != nil {
		return newCLIError(ExitRuntimeError, "install_failed",
			fmt.Sprintf("Failed to install service: %s", err))
	}

	if globals.JSON {
		newPrinter(globals).done(fmt.Sprintf("Service installed. Logs: %s", launchd.LogPath()))
	} else {
		fmt.Fprintln(os.Stdout, "Service installed. chatmark serve now starts at login.")
		fmt.Fprintf(os.Stdout, "Logs: %s\n", launchd.LogPath())
		fmt.Fprintln(os.Stdout, "Note: If macOS asks for Keychain access, click 'Always Allow'.")
	}
	return nil
}

// ServiceUninstallCmd removes the launchd agent.
type ServiceUninstallCmd struct{}

func (cmd *ServiceUninstallCmd) Run(globals *Globals) error {
	if err := launchd.Uninstall(); err != nil {
		return fmt.Errorf("uninstall service: %w", err)
	}
	newPrinter(globals).done("Service removed.")
	return nil
}

// ServiceStatusCmd shows the current agent status.
type ServiceStatusCmd struct{}

func (cmd *ServiceStatusCmd) Run(globals *Globals) error { //nolint:unparam // error required by Kong cmd interface
	if !launchd.IsInstalled() {
		if globals.JSON {
			resp := map[string]string{"status": "not_configured"}
			b, _ := json.Marshal(resp)
			fmt.Fprintln(os.Stdout, string(b))
		} else {
			fmt.Fprintln(os.Stdout, "Not configured. Run `chatmark service install` to set up.")
		}
		return nil
	}

	agent, err := launchd.ReadInstalled()
	if err != nil {
		return newCLIError(ExitRuntimeError, "invalid_agent",
			fmt.Sprintf("Failed to read %s: %s", launchd.PlistPath(), err))
	}
	loaded := launchd.IsLoaded()

	status := "installed"
	if loaded {
		status = "active"
	}

	if globals.JSON {
		resp := map[string]any{
			"status":    status,
			"label":     agent.Label,
			"program":   agent.ProgramArguments,
			"log":       agent.StandardOutPath,
			"plist":     launchd.PlistPath(),
			"keepalive": agent.KeepAlive,
		}
		b, _ := json.Marshal(resp)
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}

	if loaded {
		fmt.Fprintln(os.Stdout, "Status: Active")
	} else {
		fmt.Fprintln(os.Stdout, "Status: Installed (not loaded)")
	}
	if len(agent.ProgramArguments) > 0 {
		fmt.Fprintf(os.Stdout, "Command: %s\n", formatArgs(agent.ProgramArguments))
	}
	fmt.Fprintf(os.Stdout, "Logs: %s\n", agent.StandardOutPath)
	return nil
}

// formatArgs joins program arguments, quoting ones that contain spaces.
func formatArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t") {
			a = strconv.Quote(a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
