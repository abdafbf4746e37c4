package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kiel1mcc/lease-ccr-loop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveWorksheetDefaults(t *testing.T) {
	out, err := execute(t, "solve")

	require.NoError(t, err)
	assert.Contains(t, out, "Loop completed!")
	assert.Contains(t, out, "CCR:           $492.90")
	assert.Contains(t, out, "First Payment: $471.36")
}

func TestSolveStrategyAndFormatFlags(t *testing.T) {
	out, err := execute(t, "solve", "--strategy", "hillclimb", "--output-format", "csv")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, `"5","492.90","35.74","471.36","1000.00","0.00"`, lines[5])
}

func TestSolveNotConvergedExitCode(t *testing.T) {
	out, err := execute(t, "solve", "--strategy", "linear", "--step", "5")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errNotConverged))
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, "Loop failed to converge")
}

func TestSolveInvalidInputExitCode(t *testing.T) {
	_, err := execute(t, "solve", "--term", "0")

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestSolveConfigFileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `lease:
  targetCash: 1000
  taxableFees: 900
  nonTaxableFee: 62.5
  taxRate: 0.0725
  moneyFactor: 0.00293
  termMonths: 36
  capCostBase: 25040
  residual: 16276
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	out, err := execute(t, "solve", "--config", path, "--strategy", "hybrid")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "converged"`)
	assert.Contains(t, out, `"strategy": "hybrid"`)
	assert.Contains(t, out, `"iterations": 22`)

	_, err = execute(t, "solve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestSolveRejectsOutputFormat(t *testing.T) {
	_, err := execute(t, "solve", "--output-format", "xml")

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "lease-ccr version dev\n", out)
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		override  string
		wantError bool
	}{
		{name: "defaults"},
		{name: "console debug", level: "debug", format: "console"},
		{name: "override wins", level: "bogus", override: "warn"},
		{name: "bad level", level: "verbose", wantError: true},
		{name: "bad format", format: "xml", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(loggingConfig(tt.level, tt.format, ""), tt.override)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lease-ccr.log")

	logger, err := initializeLogger(loggingConfig("info", "json", path), "")
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, 2, exitCode(&exitError{code: 2, err: errNotConverged}))
}

func loggingConfig(level, format, outputFile string) config.LoggingConfig {
	return config.LoggingConfig{Level: level, Format: format, OutputFile: outputFile}
}
