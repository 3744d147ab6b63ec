package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/zipreport/internal/importer"
)

var webFixture = filepath.Join("..", "..", "internal", "importer", "testdata", "web_export.csv")

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportWritesFile(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "report", webFixture, "-o", dir)
	require.NoError(t, err)

	want := filepath.Join(dir, "Unit_3_Quiz__20180502.html")
	assert.Equal(t, want, strings.TrimSpace(out))
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Report: Unit 3 Quiz")
}

func TestReportClassSegment(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "report", webFixture, "-o", dir, "--class", "Period 2", "-f", "xlsx")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "Unit_3_Quiz_Period_2_20180502.xlsx"))
}

func TestReportFormatFromEnv(t *testing.T) {
	t.Setenv("ZIPREPORT_FORMAT", "json")
	out, err := execute(t, "", "report", webFixture, "--stdout")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"quiz_name": "Unit 3 Quiz"`)
}

func TestReportRussian(t *testing.T) {
	out, err := execute(t, "", "report", webFixture, "--stdout", "--lang", "ru")
	require.NoError(t, err)
	assert.Contains(t, out, "Отчёт: Unit 3 Quiz")
}

func TestReportErrors(t *testing.T) {
	_, err := execute(t, "", "report", webFixture, "--format", "docx")
	assert.ErrorContains(t, err, "invalid config")

	_, err = execute(t, "", "report", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = execute(t, "", "report", empty)
	assert.ErrorIs(t, err, importer.ErrEmptyInput)

	_, err = execute(t, "", "report")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "s3cret\n", "hash-password")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = execute(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "zipreport dev\n", out)
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, "", "serve", "--max-upload-mb", "0")
	assert.ErrorContains(t, err, "invalid config")
}
