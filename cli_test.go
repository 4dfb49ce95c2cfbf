package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBinary string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "chatmark-test")
	if err != nil {
		panic(err)
	}
	testBinary = filepath.Join(dir, "chatmark")
	cmd := exec.Command("go", "build", "-o", testBinary, ".") //nolint:gosec // test binary path is controlled by TestMain
	cmd.Dir = "."
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("build failed: " + err.Error())
	}
	code := m.Run()
	_ = os.RemoveAll(dir) //nolint:gosec // best-effort cleanup
	os.Exit(code)
}

// runCLI executes the built binary with args in an isolated temp HOME directory.
// It returns stdout, stderr, and the process exit code.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	return runCLIIn(t, t.TempDir(), nil, args...)
}

// runCLIIn is runCLI with a caller-provided HOME and optional stdin, so
// several invocations can share state.
func runCLIIn(t *testing.T, home string, stdin io.Reader, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := exec.Command(testBinary, args...) //nolint:gosec // test binary path controlled by test setup
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_DATA_HOME="+filepath.Join(home, ".local", "share"),
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"CHATMARK_TOKEN=",
	)
	cmd.Stdin = stdin

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run CLI: %v", err)
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode
}

type cliResult struct {
	FinalText   string `json:"finalText"`
	Annotations []struct {
		Type    int    `json:"type"`
		Start   int    `json:"start"`
		Length  int    `json:"length"`
		Content string `json:"content"`
	} `json:"annotations"`
}

// --- guide command ---

func TestCLI_Guide(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "guide")

	assert.Equal(t, 0, exitCode, "guide should exit 0")
	assert.NotEmpty(t, stdout, "guide output should not be empty")
	assert.Contains(t, stdout, "chatmark", "guide should mention the tool name")
	assert.Contains(t, stdout, "PEAR_LINK", "guide should list annotation types")
}

// --- compile command ---

func TestCLI_CompileJSON(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "--json", "compile", "text **bold space**")
	require.Equal(t, 0, exitCode)

	var res cliResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "text bold space", res.FinalText)
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, 4, res.Annotations[0].Type)
	assert.Equal(t, 5, res.Annotations[0].Start)
	assert.Equal(t, 10, res.Annotations[0].Length)
}

func TestCLI_CompileStdin(t *testing.T) {
	stdout, _, exitCode := runCLIIn(t, t.TempDir(), strings.NewReader("~~old~~ new\n"), "--json", "compile")
	require.Equal(t, 0, exitCode)

	var res cliResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "old new", res.FinalText)
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, 9, res.Annotations[0].Type)
}

func TestCLI_CompileHuman(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "compile", "[bbc](https://www.bbc.co.uk)")

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "bbc")
	assert.Contains(t, stdout, "HTTP_LINK")
	assert.Contains(t, stdout, "https://www.bbc.co.uk")
}

func TestCLI_CompileNoMessage(t *testing.T) {
	_, stderr, exitCode := runCLI(t, "compile")

	assert.Equal(t, ExitInvalidInput, exitCode)
	assert.Contains(t, stderr, "No message provided")
}

func TestCLI_CompileNoMessageJSON(t *testing.T) {
	_, stderr, exitCode := runCLI(t, "compile", "--json")

	assert.Equal(t, ExitInvalidInput, exitCode)

	var resp map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(stderr)), &resp)
	require.NoError(t, err, "stderr should be valid JSON error")
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "empty_message", resp["error"])
}

func TestCLI_CompileInvalidConfig(t *testing.T) {
	home := t.TempDir()
	cfgDir := filepath.Join(home, ".config", "chatmark")
	require.NoError(t, os.MkdirAll(cfgDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(`{"pear_scheme":"Not A Scheme"}`), 0o600))

	_, stderr, exitCode := runCLIIn(t, home, nil, "compile", "hi")

	assert.Equal(t, ExitNotConfigured, exitCode)
	assert.Contains(t, stderr, "config")
}

func TestCLI_CompileCustomScheme(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "chatmark.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"pear_scheme":"keet"}`), 0o600))

	stdout, _, exitCode := runCLIIn(t, home, nil, "--json", "--config", cfgPath, "compile", "join keet://room")
	require.Equal(t, 0, exitCode)

	var res cliResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, 3, res.Annotations[0].Type)
	assert.Equal(t, "keet://room", res.Annotations[0].Content)
}

// --- history command ---

func TestCLI_HistoryEmpty(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "history")

	assert.Equal(t, 0, exitCode, "history should exit 0 with no entries")
	assert.Contains(t, stdout, "No history", "empty history should say 'No history'")
}

func TestCLI_HistoryEmptyJSON(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "history", "--json")

	assert.Equal(t, 0, exitCode, "history --json should exit 0")

	var entries []json.RawMessage
	err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &entries)
	require.NoError(t, err, "stdout should be valid JSON array")
	assert.Empty(t, entries, "empty history should return empty JSON array")
}

func TestCLI_HistoryClearEmptyJSON(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "history", "--clear", "--json")

	assert.Equal(t, 0, exitCode, "history --clear --json should exit 0")

	var resp map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &resp)
	require.NoError(t, err, "stdout should be valid JSON")
	assert.Equal(t, "ok", resp["status"], "clear JSON should have status 'ok'")
}

func TestCLI_CompileSaveThenHistory(t *testing.T) {
	home := t.TempDir()

	_, _, exitCode := runCLIIn(t, home, nil, "compile", "--save", "*saved*")
	require.Equal(t, 0, exitCode)

	stdout, _, exitCode := runCLIIn(t, home, nil, "history", "--json")
	require.Equal(t, 0, exitCode)

	var entries []struct {
		ID     string    `json:"id"`
		Source string    `json:"source"`
		Result cliResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "*saved*", entries[0].Source)
	assert.Equal(t, "saved", entries[0].Result.FinalText)

	stdout, _, exitCode = runCLIIn(t, home, nil, "history", "--show", entries[0].ID)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "ITALIC")

	_, _, exitCode = runCLIIn(t, home, nil, "history", "--remove", entries[0].ID)
	assert.Equal(t, 0, exitCode)

	stdout, _, _ = runCLIIn(t, home, nil, "history")
	assert.Contains(t, stdout, "No history")
}

func TestCLI_HistoryShowUnknown(t *testing.T) {
	_, _, exitCode := runCLI(t, "history", "--show", "deadbeef")

	assert.Equal(t, ExitInvalidInput, exitCode)
}

// --- batch command ---

func TestCLI_Batch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("**a**"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("`b`"), 0o600))

	stdout, _, exitCode := runCLI(t, "batch", a, b)
	require.Equal(t, 0, exitCode)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var first struct {
		File   string    `json:"file"`
		Result cliResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, a, first.File)
	assert.Equal(t, "a", first.Result.FinalText)
}

// --- preview command ---

func TestCLI_PreviewJSON(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "--json", "preview", "a **b**")
	require.Equal(t, 0, exitCode)

	var frags []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &frags))
	assert.Len(t, frags, 2)
}

// --- service status command ---

func TestCLI_ServiceStatusNotConfigured(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "service", "status")

	assert.Equal(t, 0, exitCode, "service status should exit 0")
	assert.Contains(t, stdout, "Not configured", "should indicate the service is not installed")
}

func TestCLI_ServiceStatusNotConfiguredJSON(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "service", "status", "--json")

	assert.Equal(t, 0, exitCode, "service status --json should exit 0")

	var resp map[string]any
	err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &resp)
	require.NoError(t, err, "stdout should be valid JSON")
	assert.Equal(t, "not_configured", resp["status"], "JSON status should be 'not_configured'")
}

// --- init command ---

func TestCLI_InitDefaults(t *testing.T) {
	home := t.TempDir()

	stdout, _, exitCode := runCLIIn(t, home, nil, "init", "--defaults", "--json")
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "config.json")

	data, err := os.ReadFile(filepath.Join(home, ".config", "chatmark", "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pear_scheme": "pear"`)
}

// --- no arguments (should show help) ---

func TestCLI_NoArgs(t *testing.T) {
	_, stderr, exitCode := runCLI(t)

	assert.NotEqual(t, 0, exitCode, "running with no args should fail")
	// Kong prints an error listing available commands.
	assert.Contains(t, stderr, "expected one of", "should list available commands")
}

// --- help flag ---

func TestCLI_Help(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "--help")

	assert.Equal(t, 0, exitCode, "--help should exit 0")
	for _, name := range []string{"compile", "preview", "batch", "watch", "inspect", "serve", "init", "auth", "service", "history", "guide"} {
		assert.Contains(t, stdout, name, "help should mention the %s command", name)
	}
}
