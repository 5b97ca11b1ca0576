package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/config"
)

const rainsMRS = `[ TOP: h0 INDEX: e2 RELS: < [ _rain_v_1<3:9> LBL: h1 ARG0: e2 [ e TENSE: pres ] ] > HCONS: < h0 qeq h1 > ]`

// Same graph with every variable renamed.
const rainsShifted = `[ TOP: h10 INDEX: e12 RELS: < [ _rain_v_1<3:9> LBL: h11 ARG0: e12 [ e TENSE: pres ] ] > HCONS: < h10 qeq h11 > ]`

// TOP points at a handle that is no label and has no hcons.
const danglingTopMRS = `[ TOP: h0 RELS: < [ _rain_v_1 LBL: h1 ARG0: e2 ] > ]`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.DefaultConfig().SaveToFile(cfgPath))

	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gomrs version")
}

func TestConvertToJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rains.mrs", rainsMRS)

	out, err := runCLI(t, "convert", "-t", "mrs-json", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(strings.TrimSpace(out))))
	assert.Contains(t, out, "_rain_v_1")
}

func TestConvertForcedSourceFormat(t *testing.T) {
	dir := t.TempDir()
	// The extension selects no codec; --from must carry the run.
	path := writeFile(t, dir, "rains.dat", rainsMRS)

	out, err := runCLI(t, "convert", "-f", "simplemrs", "-t", "simplemrs", path)
	require.NoError(t, err)
	assert.Contains(t, out, "_rain_v_1")

	_, err = runCLI(t, "convert", path)
	assert.Error(t, err, "without --from the unknown extension fails")
}

func TestConvertUnknownFormats(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rains.mrs", rainsMRS)

	_, err := runCLI(t, "convert", "-t", "tikz", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target format")

	_, err = runCLI(t, "convert", "-f", "tikz", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source format")
}

func TestCompareSharedUnderRenaming(t *testing.T) {
	dir := t.TempDir()
	test := writeFile(t, dir, "test.mrs", rainsMRS)
	gold := writeFile(t, dir, "gold.mrs", rainsShifted)

	out, err := runCLI(t, "compare", test, gold)
	require.NoError(t, err)
	assert.Contains(t, out, "shared:    1")
	assert.Contains(t, out, "test-only: 0")
}

func TestCompareUnmatched(t *testing.T) {
	dir := t.TempDir()
	test := writeFile(t, dir, "test.mrs", rainsMRS)
	gold := writeFile(t, dir, "gold.mrs",
		`[ TOP: h0 INDEX: e2 RELS: < [ _snow_v_1 LBL: h1 ARG0: e2 ] > HCONS: < h0 qeq h1 > ]`)

	out, err := runCLI(t, "compare", "--count", test, gold)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmatched")
	assert.Contains(t, out, "1\t0\t1")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.mrs", rainsMRS)
	bad := writeFile(t, dir, "bad.mrs", danglingTopMRS)

	out, err := runCLI(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "0 warnings")

	out, err = runCLI(t, "validate", bad)
	require.NoError(t, err, "warnings alone do not fail the run")
	assert.Contains(t, out, "warning: top handle h0 resolves to nothing")

	_, err = runCLI(t, "validate", "--strict", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict")
}
