package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"jlo/internal/env"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	p := env.Static{GOOS: "linux", Vars: map[string]string{"XDG_CONFIG_HOME": t.TempDir()}}

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, MatchPrefix, cfg.Match)
	require.True(t, cfg.UpdateConfig.Enabled)
	require.True(t, cfg.UpdateConfig.AutoCheck)
	require.Empty(t, cfg.JdkDir)
}

func TestSaveAndReload(t *testing.T) {
	xdg := t.TempDir()
	p := env.Static{GOOS: "linux", Vars: map[string]string{"XDG_CONFIG_HOME": xdg}}

	cfg, err := Load(p)
	require.NoError(t, err)
	cfg.JdkDir = "/srv/jdks"
	cfg.Match = MatchMajor
	cfg.UpdateConfig.LastCheck = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, cfg.Save())
	require.FileExists(t, filepath.Join(xdg, "jlo", "jlo.json"))

	reloaded, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "/srv/jdks", reloaded.JdkDir)
	require.Equal(t, MatchMajor, reloaded.Match)
	require.True(t, cfg.UpdateConfig.LastCheck.Equal(reloaded.UpdateConfig.LastCheck))
}

func TestLoadRejectsUnknownMatch(t *testing.T) {
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "jlo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "jlo", "jlo.json"), []byte(`{"match":"fuzzy"}`), 0o644))

	_, err := Load(env.Static{Vars: map[string]string{"XDG_CONFIG_HOME": xdg}})
	require.Error(t, err)
}

func TestLoadFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(env.Static{Home: home})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "jlo", "jlo.json"), cfg.Path())
}

func TestJdkBasePrecedence(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "home", "duke")
	settings := &Config{JdkDir: filepath.Join(home, "from-settings")}

	cases := []struct {
		name string
		vars map[string]string
		cfg  *Config
		flag string
		want string
	}{
		{"flag wins", map[string]string{env.JdkDirVar: "/env"}, settings, "/flag", filepath.Clean("/flag")},
		{"env over settings", map[string]string{env.JdkDirVar: "/env"}, settings, "", filepath.Clean("/env")},
		{"settings over default", nil, settings, "", settings.JdkDir},
		{"platform default", nil, &Config{}, "", filepath.Join(home, "jdks")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := env.Static{GOOS: "linux", Vars: tc.vars, Home: home}
			got, err := tc.cfg.JdkBase(p, tc.flag)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
