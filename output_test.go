package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrinter(asJSON bool) (printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return printer{json: asJSON, out: &out, errOut: &errOut}, &out, &errOut
}

func TestPrinter_Done(t *testing.T) {
	p, out, errOut := testPrinter(false)
	p.done("History cleared.")
	assert.Equal(t, "History cleared.\n", out.String())
	assert.Empty(t, errOut.String())

	p, out, _ = testPrinter(true)
	p.done("History cleared.")
	var resp map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, map[string]string{"status": "ok", "message": "History cleared."}, resp)
}

func TestPrinter_FailCLIError(t *testing.T) {
	err := fmt.Errorf("compile: %w", newCLIError(ExitInvalidInput, "empty_message", "No message given."))

	p, out, errOut := testPrinter(true)
	assert.Equal(t, ExitInvalidInput, p.fail(err))
	assert.Empty(t, out.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &resp))
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "empty_message", resp["error"])
	assert.Equal(t, "No message given.", resp["message"])

	p, _, errOut = testPrinter(false)
	assert.Equal(t, ExitInvalidInput, p.fail(err))
	assert.Equal(t, "Error: No message given.\n", errOut.String())
}

func TestPrinter_FailPlainError(t *testing.T) {
	p, _, errOut := testPrinter(true)
	assert.Equal(t, ExitRuntimeError, p.fail(errors.New("dial tcp: refused")))
	var resp map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &resp))
	assert.Equal(t, "runtime_error", resp["error"])
	assert.Equal(t, "dial tcp: refused", resp["message"])
}
