package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Address string `env:"CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("DMASSIST_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("DMASSIST_CMD_TEST_MODE", "env-mode")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	require.NoError(t, ParseConfig(&cfg))
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")

	require.NoError(t, ParseArgs(fs, []string{"-address", "flag:9001"}))
	require.Equal(t, "flag:9001", cfg.Address)
	require.Equal(t, "env-mode", cfg.Mode)
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	var cfg *testConfig
	require.Error(t, ParseConfig(cfg))
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	require.Error(t, ParseArgs(nil, []string{}))
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	require.Error(t, RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }))
	require.Error(t, RunWithTelemetry(context.Background(), ServiceDice, nil))
}

func TestRunWithTelemetryRunsLoop(t *testing.T) {
	t.Setenv("DMASSIST_OTEL_ENDPOINT", "")
	want := errors.New("done")

	err := RunWithTelemetry(context.Background(), ServiceDice, func(context.Context) error { return want })
	require.ErrorIs(t, err, want)
}
