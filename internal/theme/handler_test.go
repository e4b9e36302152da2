package theme

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("Installing JDK", "dir", "/jdks/21.0.3+9")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "Installing JDK")
	require.Contains(t, out, "dir=/jdks/21.0.3+9")
}

func TestHandlerAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelDebug)).
		With("version", 21).
		WithGroup("fetch")

	logger.Warn("slow", "bytes", 42, slog.Group("peer", "host", "api.adoptium.net"))

	out := buf.String()
	require.Contains(t, out, "slow")
	require.Contains(t, out, "version=21")
	require.Contains(t, out, "fetch.bytes=42")
	require.Contains(t, out, "fetch.peer.host=api.adoptium.net")
}
