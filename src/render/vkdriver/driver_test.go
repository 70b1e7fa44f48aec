package vkdriver

import (
	"bytes"
	"log/slog"
	"testing"

	"sandbox/src/render"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestInitFailedLogsCause(t *testing.T) {
	var buf bytes.Buffer
	render.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { render.SetLogger(nil) })

	res := initFailed("load instance entry points", errors.New("vkCreateDevice missing"))
	require.Equal(t, render.ErrorInitializationFailed, res)
	require.Contains(t, buf.String(), "load instance entry points failed")
	require.Contains(t, buf.String(), "vkCreateDevice missing")
}

func TestResultsNameFailures(t *testing.T) {
	require.NoError(t, Results.ResultError(render.Success))

	err := render.NewError(Results, "vkQueueSubmit", render.ErrorDeviceLost)
	require.Error(t, err)
	res, ok := render.ResultOf(err)
	require.True(t, ok)
	require.Equal(t, render.ErrorDeviceLost, res)
}
