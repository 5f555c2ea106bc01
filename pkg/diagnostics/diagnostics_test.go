package diagnostics_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sxs-collaboration/spectre-cli/pkg/diagnostics"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		name       string
		flag       diagnostics.Flag
		level      diagnostics.Level
		verbose    bool
		extraLines int
	}{
		{name: "no flag", flag: diagnostics.FlagNone, level: diagnostics.LevelInfo},
		{name: "debug", flag: diagnostics.FlagDebug, level: diagnostics.LevelDebug, verbose: true, extraLines: 3},
		{name: "silent", flag: diagnostics.FlagSilent, level: diagnostics.LevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := diagnostics.Configure(tt.flag)
			assert.Equal(t, tt.level, state.Level)
			assert.Equal(t, tt.verbose, state.Verbose)
			assert.Equal(t, tt.extraLines, state.ExtraLines)
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	assert.Less(t, diagnostics.LevelDebug, diagnostics.LevelInfo)
	assert.Less(t, diagnostics.LevelInfo, diagnostics.LevelCritical)
	assert.Equal(t, "CRITICAL", diagnostics.LevelCritical.String())
}

func TestState_WithSuppressed(t *testing.T) {
	base := diagnostics.Configure(diagnostics.FlagNone)
	extended := base.WithSuppressed("example.com/dispatch")

	assert.True(t, extended.IsSuppressed("example.com/dispatch"))
	assert.True(t, extended.IsSuppressed("example.com/dispatch/internal"))
	assert.False(t, extended.IsSuppressed("example.com/dispatcher"))
	assert.False(t, base.IsSuppressed("example.com/dispatch"), "original state must not change")

	assert.True(t, base.IsSuppressed("github.com/spf13/cobra"))
	assert.True(t, base.IsSuppressed("runtime"))
	assert.False(t, base.IsSuppressed("main"))
}

func TestSelection_Flag(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    diagnostics.Flag
		wantErr error
	}{
		{name: "none", args: nil, want: diagnostics.FlagNone},
		{name: "debug", args: []string{"--debug"}, want: diagnostics.FlagDebug},
		{name: "silent", args: []string{"--silent"}, want: diagnostics.FlagSilent},
		{name: "both", args: []string{"--debug", "--silent"}, wantErr: diagnostics.ErrConflictingFlags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			sel := diagnostics.RegisterFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			got, err := sel.Flag()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		flag      diagnostics.Flag
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{name: "debug", flag: diagnostics.FlagDebug, wantDebug: true, wantInfo: true, wantError: true},
		{name: "default", flag: diagnostics.FlagNone, wantInfo: true, wantError: true},
		{name: "silent", flag: diagnostics.FlagSilent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := diagnostics.Configure(tt.flag).NewLogger(&buf)
			logger.Debug("debug message")
			logger.Info("info message")
			logger.Error("error message")
			require.NoError(t, logger.Sync())

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("debug message")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("info message")))
			assert.Equal(t, tt.wantError, bytes.Contains([]byte(out), []byte("error message")))
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := diagnostics.Configure(diagnostics.FlagNone).NewLogger(&buf)
	logger.Info("Removed file", zap.String("path", "/tmp/out.h5"))

	out := buf.String()
	assert.Regexp(t, `^\[\d\d:\d\d:\d\d\]\tINFO\tRemoved file`, out)
	assert.Contains(t, out, `"path": "/tmp/out.h5"`)
}

func TestInstall(t *testing.T) {
	var buf bytes.Buffer
	logger := diagnostics.Configure(diagnostics.FlagNone).NewLogger(&buf)

	restore := diagnostics.Install(logger)
	zap.L().Info("through zap globals")
	log.Print("through the standard library")
	restore()
	zap.L().Info("after restore")

	out := buf.String()
	assert.Contains(t, out, "through zap globals")
	assert.Contains(t, out, "through the standard library")
	assert.NotContains(t, out, "after restore")
}
