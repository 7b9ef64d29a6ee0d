package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygcli/internal/shared/testutil"
)

func writeExport(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func siteExport() []byte {
	return testutil.SiteExport("Number of S-CSCF Registered Users (number)",
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"},
		[]string{"2024-01-01 20:00:00", "60", "NE-vis1-02", "3"},
		[]string{"2024-01-01 19:00:00", "60", "NE-sm1-01", "9"},
	).CSV()
}

func TestRunExtract(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	input := writeExport(t, inDir, "host1.csv", siteExport())

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-mode", "without_anchor", "-out", outDir, input},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	outPath := filepath.Join(outDir, "extracted_data_without_anchor.csv")
	assert.Contains(t, stdout.String(), outPath)
	assert.Contains(t, stdout.String(), "2 of 3 input rows selected")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Start Time,sm1,vis1,Total\n2024-01-01 20:00:00,5,3,8\n", string(data))
}

func TestRunExtractXLSXFromDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeExport(t, inDir, "host1.csv", siteExport())
	writeExport(t, inDir, "notes.txt", []byte("ignored"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-mode", "with_anchor", "-format", "xlsx", "-out", outDir, inDir},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	_, err := os.Stat(filepath.Join(outDir, "extracted_data_with_anchor.xlsx"))
	assert.NoError(t, err)
}

func TestRunListCounters(t *testing.T) {
	input := writeExport(t, t.TempDir(), "host1.csv", siteExport())

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-mode", "with_anchor", "-list-counters", input},
		&stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Number of S-CSCF Registered Users (number)\n", stdout.String())
}

func TestRunListModes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-list-modes"}, &stdout, &stderr)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "with_anchor\t"))
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-version"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "PAYG Extract v"))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir, "host1.csv", siteExport())
	broken := writeExport(t, dir, "broken.xlsx", []byte("not a workbook"))

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{name: "missing mode", args: []string{input}, wantCode: 2, wantStderr: "missing -mode"},
		{name: "unknown mode", args: []string{"-mode", "hourly", input}, wantCode: 2, wantStderr: "Usage:"},
		{name: "no inputs", args: []string{"-mode", "with_anchor"}, wantCode: 2, wantStderr: "no input files"},
		{name: "bad flag", args: []string{"-verbose"}, wantCode: 2, wantStderr: "flag provided but not defined"},
		{name: "missing file", args: []string{"-mode", "with_anchor", filepath.Join(dir, "nope.csv")}, wantCode: 1, wantStderr: "does not exist"},
		{name: "unreadable workbook", args: []string{"-mode", "with_anchor", broken}, wantCode: 1, wantStderr: "Error:"},
		{name: "bad snapshot", args: []string{"-mode", "with_anchor", "-snapshot", "8pm", "-out", dir, input}, wantCode: 1, wantStderr: "HH:MM:SS"},
		{name: "unusable output", args: []string{"-mode", "with_anchor", "-out", filepath.Join(input, "out"), input}, wantCode: 1, wantStderr: "output directory is not usable"},
		{name: "bad format", args: []string{"-mode", "with_anchor", "-format", "pdf", "-out", dir, input}, wantCode: 1, wantStderr: "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code, stderr.String())
			assert.Contains(t, stderr.String(), tt.wantStderr)
			assert.Empty(t, stdout.String())
			if tt.wantCode == 1 {
				assert.Contains(t, stderr.String(), `"trace_id"`, "run failures are logged with the run's trace id")
			}
		})
	}
}
