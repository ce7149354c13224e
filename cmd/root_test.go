package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/profile_data/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes a fresh root command and returns stdout, stderr and the error.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCLI_DuplicateScenario(t *testing.T) {
	p := writeCSV(t, "dups.csv", "a,b\n1,x\n2,x\n2,x\n")

	out, _, err := runCmd(t, p)
	require.NoError(t, err)
	assert.Contains(t, out, "Dimensions: 3 rows x 2 columns")
	assert.Contains(t, out, "Duplicate rows: 1 (33.33%)")
	assert.Contains(t, out, "NUMERIC STATISTICS")
	assert.Contains(t, out, "CATEGORICAL COLUMNS")
}

func TestCLI_OutlierScenario(t *testing.T) {
	p := writeCSV(t, "values.csv", "value\n1\n2\n3\n4\n100\n")

	out, _, err := runCmd(t, p)
	require.NoError(t, err)
	assert.Contains(t, out, "value: 1 outliers (20.00%)")
	assert.NotContains(t, out, "CATEGORICAL COLUMNS")
}

func TestCLI_FileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does_not_exist.csv")

	out, _, err := runCmd(t, missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, table.ErrFileNotFound)
	assert.Empty(t, out)

	msg := errorMessage(err)
	assert.Contains(t, msg, "file not found")
	assert.Contains(t, msg, "does_not_exist.csv")
	assert.NotContains(t, msg, "\n")
}

func TestCLI_BooleanOnlyScenario(t *testing.T) {
	p := writeCSV(t, "flags.csv", "x,y\nTrue,False\nFalse,False\n")

	out, _, err := runCmd(t, p)
	require.NoError(t, err)
	for _, s := range []string{"DATA PROFILE", "Memory:", "MISSING VALUES", "DUPLICATES", "DATA TYPES"} {
		assert.Contains(t, out, s)
	}
	for _, s := range []string{"NUMERIC STATISTICS", "OUTLIERS", "CATEGORICAL COLUMNS"} {
		assert.NotContains(t, out, s)
	}
}

func TestCLI_UsageError(t *testing.T) {
	tcs := map[string][]string{
		"no arguments":   {},
		"too many files": {"a.csv", "b.csv"},
	}
	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			out, _, err := runCmd(t, args...)
			require.Error(t, err)

			var ue *UsageError
			require.True(t, errors.As(err, &ue), "got %T: %v", err, err)
			assert.Empty(t, out)
			assert.Contains(t, errorMessage(err), usageLine)
		})
	}
}

func TestCLI_ParseError(t *testing.T) {
	p := writeCSV(t, "ragged.csv", "a,b\n1,2\n3\n")

	out, _, err := runCmd(t, p)
	require.Error(t, err)

	var pe *table.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(errorMessage(err), "Error reading file: "))
}

func TestCLI_DelimiterAndNullValueFlags(t *testing.T) {
	p := writeCSV(t, "semi.txt", "a;b\n1;-\n2;y\n")

	out, _, err := runCmd(t, "--delimiter", ";", "--null-value", "-", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Dimensions: 2 rows x 2 columns")
	assert.Regexp(t, `(?m)^b\s+1\s+50\.00$`, out)

	_, _, err = runCmd(t, "--delimiter", "::", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported delimiter")
}

func TestCLI_ConfigFileAndLogging(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delimiter: tab\nlog_level: info\nlog_format: json\n"), 0o644))
	p := writeCSV(t, "data.txt", "a\tb\n1\tx\n")

	out, stderr, err := runCmd(t, "--config", cfgPath, p)
	require.NoError(t, err)
	assert.Contains(t, out, "Dimensions: 1 rows x 2 columns")
	assert.Contains(t, stderr, `"msg":"loaded table"`)
	assert.Contains(t, stderr, `"run":"`)
	assert.NotContains(t, out, "loaded table")

	_, _, err = runCmd(t, "--config", filepath.Join(dir, "missing.yaml"), p)
	require.Error(t, err)
}

func TestCLI_ConfigShow(t *testing.T) {
	out, _, err := runCmd(t, "config", "show", "--delimiter", "tab", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "delimiter: tab")
	assert.Contains(t, out, "log_level: debug")
}

func TestCLI_InvalidLogLevel(t *testing.T) {
	p := writeCSV(t, "a.csv", "a\n1\n")

	_, _, err := runCmd(t, "--log-level", "loud", p)
	require.Error(t, err)
	assert.Contains(t, errorMessage(err), "unknown log level")
}
