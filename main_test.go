package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscribe/config"
	"medscribe/log"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("invalid mode")))
	assert.Equal(t, 3, exitCode(&exitError{code: 3}))
	assert.Equal(t, 2, exitCode(fmt.Errorf("doctor: %w", &exitError{code: 2})))
}

func TestDoctorReturnsExitCode(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/generate"
	srv.Close()

	cfg := &config.Config{
		Endpoint:  endpoint,
		LogPath:   t.TempDir(),
		ConfigDir: t.TempDir(),
		Timeout:   time.Second,
		CopyReset: time.Second,
		Mode:      "summarize",
	}
	t.Cleanup(log.Close)

	var out, errOut bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"doctor"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out.String(), "endpoint unreachable")
	assert.NotContains(t, errOut.String(), "exit status", "the report already explains the failure")
}
