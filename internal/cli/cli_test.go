package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgrid/internal/app"
	"github.com/vk/predictgrid/internal/modelstore"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
	}{
		{
			name: "positional path with defaults",
			args: []string{"run.hcl"},
			want: &app.Config{
				ConfigPath: "run.hcl", LogFormat: "json", LogLevel: "info",
				Executor: app.ExecutorPool, CacheSize: modelstore.DefaultCacheSize,
			},
		},
		{
			name: "flag path wins over positional",
			args: []string{"--config", "a.hcl", "-log-format", "TEXT", "-log-level", "debug", "b.hcl"},
			want: &app.Config{
				ConfigPath: "a.hcl", LogFormat: "text", LogLevel: "debug",
				Executor: app.ExecutorPool, CacheSize: modelstore.DefaultCacheSize,
			},
		},
		{
			name: "remote executor",
			args: []string{"-c", "conf", "-executor", "socketio", "-remote-url", "http://workers:3000", "-aws-region", "eu-west-1", "-model-cache", "4"},
			want: &app.Config{
				ConfigPath: "conf", LogFormat: "json", LogLevel: "info",
				Executor: app.ExecutorSocketIO, RemoteURL: "http://workers:3000", Region: "eu-west-1", CacheSize: 4,
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
		{name: "bad log format", args: []string{"-log-format", "xml", "x.hcl"}, wantCode: 2},
		{name: "bad log level", args: []string{"-log-level", "trace", "x.hcl"}, wantCode: 2},
		{name: "socketio without url", args: []string{"-executor", "socketio", "x.hcl"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, exit, err := Parse(tc.args, &out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
