package env

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Provider abstracts the process-wide facts jlo depends on so that platform
// and path logic can be exercised without touching the real environment.
type Provider interface {
	OS() string
	Arch() string
	BigEndian() bool
	Getenv(key string) string
	HomeDir() (string, error)
}

// System reads from the running process.
type System struct{}

func (System) OS() string               { return runtime.GOOS }
func (System) Arch() string             { return runtime.GOARCH }
func (System) BigEndian() bool          { return cpu.IsBigEndian }
func (System) Getenv(key string) string { return os.Getenv(key) }
func (System) HomeDir() (string, error) { return os.UserHomeDir() }

// Static is a fixed Provider, used by tests.
type Static struct {
	GOOS   string
	GOARCH string
	Big    bool
	Vars   map[string]string
	Home   string
}

func (s Static) OS() string      { return s.GOOS }
func (s Static) Arch() string    { return s.GOARCH }
func (s Static) BigEndian() bool { return s.Big }

func (s Static) Getenv(key string) string {
	return s.Vars[key]
}

func (s Static) HomeDir() (string, error) {
	if s.Home == "" {
		return "", os.ErrNotExist
	}
	return s.Home, nil
}

// IsWindows reports whether p describes a Windows host.
func IsWindows(p Provider) bool {
	return p.OS() == "windows"
}

// IsMac reports whether p describes a macOS host.
func IsMac(p Provider) bool {
	return p.OS() == "darwin" || p.OS() == "macos"
}
