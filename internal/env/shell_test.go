package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func linuxEnv(vars map[string]string) Static {
	return Static{GOOS: "linux", GOARCH: "amd64", Vars: vars, Home: "/home/duke"}
}

func TestActivateFreshShell(t *testing.T) {
	p := linuxEnv(map[string]string{"PATH": "/usr/local/bin:/usr/bin"})

	exports := Activate(p, "/home/duke/jdks/21.0.3+9", "/home/duke/jdks")

	require.Equal(t, []Export{
		{Name: "JAVA_HOME", Value: "/home/duke/jdks/21.0.3+9"},
		{Name: "PATH", Value: "/home/duke/jdks/21.0.3+9/bin:/usr/local/bin:/usr/bin"},
	}, exports)
}

func TestActivateReplacesManagedEntries(t *testing.T) {
	p := linuxEnv(map[string]string{
		"JAVA_HOME": "/home/duke/jdks/17.0.9+9",
		"PATH":      "/home/duke/jdks/17.0.9+9/bin:/usr/bin:/home/duke/jdks-other/bin",
	})

	exports := Activate(p, "/home/duke/jdks/21.0.3+9", "/home/duke/jdks")

	require.Len(t, exports, 2)
	require.Equal(t, "/home/duke/jdks/21.0.3+9/bin:/usr/bin:/home/duke/jdks-other/bin", exports[1].Value)
}

func TestActivateNoChanges(t *testing.T) {
	p := linuxEnv(map[string]string{
		"JAVA_HOME": "/home/duke/jdks/21.0.3+9",
		"PATH":      "/home/duke/jdks/21.0.3+9/bin:/usr/bin",
	})

	require.Empty(t, Activate(p, "/home/duke/jdks/21.0.3+9", "/home/duke/jdks"))
}

func TestActivateWindowsSeparators(t *testing.T) {
	p := Static{GOOS: "windows", GOARCH: "amd64", Vars: map[string]string{
		"PATH": `C:\Users\duke\jdks\17.0.9+9\bin;C:\Windows`,
	}}

	exports := Activate(p, `C:\Users\duke\jdks\21.0.3+9`, `c:\users\duke\jdks`)

	require.Equal(t, `C:\Users\duke\jdks\21.0.3+9\bin;C:\Windows`, exports[1].Value)
}

func TestExportQuoting(t *testing.T) {
	e := Export{Name: "JAVA_HOME", Value: `/opt/$weird "dir"`}
	require.Equal(t, `export JAVA_HOME="/opt/\$weird \"dir\""`, e.String())
}
