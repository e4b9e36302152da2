package updater

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jlo/internal/config"
	"jlo/internal/env"

	"github.com/stretchr/testify/require"
)

func newTestUpdater(t *testing.T, version string) (*Updater, *bytes.Buffer) {
	t.Helper()
	p := env.Static{GOOS: "linux", GOARCH: "amd64", Vars: map[string]string{"XDG_CONFIG_HOME": t.TempDir()}}
	cfg, err := config.Load(p)
	require.NoError(t, err)

	var out bytes.Buffer
	u, err := NewUpdater(cfg, version, nil, &out)
	require.NoError(t, err)
	return u, &out
}

func TestShouldCheckForUpdate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		version string
		last    time.Time
		mutate  func(*config.UpdateConfig)
		want    bool
	}{
		{name: "never checked", version: "v1.2.0", want: true},
		{name: "checked recently", version: "1.2.0", last: now.Add(-time.Hour)},
		{name: "interval elapsed", version: "1.2.0", last: now.Add(-CheckInterval), want: true},
		{name: "dev build", version: "dev"},
		{name: "disabled", version: "1.2.0", mutate: func(c *config.UpdateConfig) { c.Enabled = false }},
		{name: "auto check off", version: "1.2.0", mutate: func(c *config.UpdateConfig) { c.AutoCheck = false }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, _ := newTestUpdater(t, tc.version)
			u.now = func() time.Time { return now }
			u.config.UpdateConfig.LastCheck = tc.last
			if tc.mutate != nil {
				tc.mutate(&u.config.UpdateConfig)
			}
			require.Equal(t, tc.want, u.ShouldCheckForUpdate())
		})
	}
}

func TestSkipVersionPersists(t *testing.T) {
	u, _ := newTestUpdater(t, "1.0.0")
	require.NoError(t, u.SkipVersion("1.1.0"))

	p := env.Static{Vars: map[string]string{"XDG_CONFIG_HOME": filepath.Dir(filepath.Dir(u.config.Path()))}}
	cfg, err := config.Load(p)
	require.NoError(t, err)
	require.Equal(t, "1.1.0", cfg.UpdateConfig.SkipVersion)
}

func TestCleanVersion(t *testing.T) {
	require.Equal(t, "1.4.2", cleanVersion("v1.4.2"))
	require.Equal(t, "1.4.2", cleanVersion(" 1.4.2\n"))
}

func TestTruncateChangelog(t *testing.T) {
	require.Equal(t, "See release notes on GitHub for details.", truncateChangelog("  ", 10))
	require.Equal(t, "short", truncateChangelog("short", 10))

	long := "first line of notes\n" + strings.Repeat("x", 50)
	require.Equal(t, "first line of notes...", truncateChangelog(long, 30))

	words := "alpha beta gamma delta epsilon"
	require.Equal(t, "alpha beta gamma...", truncateChangelog(words, 20))
}

func TestMessagesGoToWriter(t *testing.T) {
	u, out := newTestUpdater(t, "v1.0.0")
	u.ShowAlreadyUpToDate()
	u.ShowUpdateNotification("1.1.0")

	require.Contains(t, out.String(), "latest version (1.0.0)")
	require.Contains(t, out.String(), "jlo selfupdate")
}
