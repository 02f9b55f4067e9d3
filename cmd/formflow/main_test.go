package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/devbackend"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FORMFLOW_LOG_LEVEL", "error")
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLocalURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8000", localURL(":8000"))
	assert.Equal(t, "http://127.0.0.1:9000", localURL("0.0.0.0:9000"))
	assert.Equal(t, "http://example.test:80", localURL("example.test:80"))
}

func TestContractCommand(t *testing.T) {
	out, err := execute(t, "contract")
	require.NoError(t, err)
	assert.Contains(t, out, "/create_form")

	out, err = execute(t, "contract", "--list")
	require.NoError(t, err)
	for _, path := range []string{"/create_form", "/validate_submission", "/recover", "/analytics/{form_id}"} {
		assert.Contains(t, out, path)
	}
}

func TestCheckCommandAgainstDevBackend(t *testing.T) {
	store, err := devbackend.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	server, err := devbackend.NewServer(store)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	out, err := execute(t, "check", "--backend", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")
}

func TestInvalidBackendFlagFails(t *testing.T) {
	_, err := execute(t, "check", "--backend", "not a url")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "backend.url"))
}
