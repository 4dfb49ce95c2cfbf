package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvrach/chatmark/internal/annotate"
	"github.com/lvrach/chatmark/internal/history"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "éé...", truncate("éééééé", 5), "cuts on rune boundaries")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo"))
	assert.Equal(t, "single", firstLine("single"))
	assert.Equal(t, "", firstLine(""))
}

func TestFormatCreatedAt(t *testing.T) {
	assert.Equal(t, "not a time", formatCreatedAt("not a time"))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, formatCreatedAt("2026-01-02T03:04:05Z"))
}

func TestLookupEntry(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	e, err := history.Append("*x*", annotate.Result{FinalText: "x"})
	require.NoError(t, err)

	got, err := lookupEntry(e.ID[:3])
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = lookupEntry("zzzzzzzz")
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "not_found", cliErr.Code)
}
