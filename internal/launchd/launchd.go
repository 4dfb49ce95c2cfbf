package launchd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"howett.net/plist"
)

const Label = "com.chatmark.serve"

// Agent is the launchd job description for the compile service.
type Agent struct {
	Label                string            `plist:"Label"`
	ProgramArguments     []string          `plist:"ProgramArguments"`
	StandardOutPath      string            `plist:"StandardOutPath"`
	StandardErrorPath    string            `plist:"StandardErrorPath"`
	RunAtLoad            bool              `plist:"RunAtLoad"`
	KeepAlive            bool              `plist:"KeepAlive"`
	EnvironmentVariables map[string]string `plist:"EnvironmentVariables"`
}

// plistDir is overridable for testing.
var plistDir = defaultPlistDir

func defaultPlistDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents")
}

// PlistPath returns the path to the launchd plist file.
func PlistPath() string {
	return filepath.Join(plistDir(), Label+".plist")
}

// LogPath returns the path the service logs to.
func LogPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "chatmark", "serve.log")
}

// NewAgent describes a job that keeps "chatmark serve" running. An empty
// configPath uses the default config file.
func NewAgent(binaryPath, configPath string) Agent {
	home, _ := os.UserHomeDir()

	args := []string{binaryPath}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	args = append(args, "serve")

	return Agent{
		Label:             Label,
		ProgramArguments:  args,
		StandardOutPath:   LogPath(),
		StandardErrorPath: LogPath(),
		RunAtLoad:         true,
		KeepAlive:         true,
		EnvironmentVariables: map[string]string{
			"HOME": home,
		},
	}
}

// GeneratePlist creates the plist XML for the service job.
func GeneratePlist(binaryPath, configPath string) ([]byte, error) {
	data := NewAgent(binaryPath, configPath)

	var buf bytes.Buffer
	encoder := plist.NewEncoder(&buf)
	encoder.Indent("\t")
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("encode plist: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadInstalled decodes the installed plist.
func ReadInstalled() (Agent, error) {
	data, err := os.ReadFile(PlistPath())
	if err != nil {
		return Agent{}, err
	}
	var a Agent
	if _, err := plist.Unmarshal(data, &a); err != nil {
		return Agent{}, fmt.Errorf("decode plist: %w", err)
	}
	return a, nil
}

// IsInstalled checks if the plist file exists.
func IsInstalled() bool {
	_, err := os.Stat(PlistPath())
	return err == nil
}

// Install writes the plist and bootstraps it with launchctl.
func Install(binaryPath, configPath string) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf(
			"running at login requires macOS (launchd). For Linux/other, run it from your init system, e.g. a systemd user unit with:\n  ExecStart=%s serve",
			binaryPath,
		)
	}

	plistBytes, err := GeneratePlist(binaryPath, configPath)
	if err != nil {
		return err
	}

	dir := plistDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(LogPath()), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	// Replace a running agent; bootout fails harmlessly if it isn't loaded.
	if IsInstalled() {
		_, _ = launchctl("bootout", serviceTarget())
	}

	if err := os.WriteFile(PlistPath(), plistBytes, 0o600); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}

	if output, err := launchctl("bootstrap", "gui/"+currentUID(), PlistPath()); err != nil {
		return fmt.Errorf("launchctl bootstrap: %s (%w)", output, err)
	}
	return nil
}

// Uninstall unloads the agent and removes its plist.
func Uninstall() error {
	_, _ = launchctl("bootout", serviceTarget())

	if err := os.Remove(PlistPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove plist: %w", err)
	}
	return nil
}

// IsLoaded checks if the agent is currently loaded in launchctl.
func IsLoaded() bool {
	_, err := launchctl("print", serviceTarget())
	return err == nil
}

// serviceTarget is the agent's launchctl domain target, gui/<uid>/<label>.
func serviceTarget() string {
	return "gui/" + currentUID() + "/" + Label
}

func launchctl(args ...string) (string, error) {
	out, err := exec.Command("launchctl", args...).CombinedOutput() //nolint:gosec // arguments built from constants and the user's plist path
	return strings.TrimSpace(string(out)), err
}

func currentUID() string {
	u, err := user.Current()
	if err != nil {
		return "501" // common default macOS UID
	}
	return u.Uid
}
