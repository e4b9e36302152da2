package env

import (
	"fmt"
	"path/filepath"
)

const (
	// HomeVar overrides the jlo home directory.
	HomeVar = "JLO_HOME"
	// JdkDirVar overrides the JDK install base.
	JdkDirVar = "JLO_JDK_DIR"
)

// JloHome returns $JLO_HOME, or ~/.jlo when unset.
func JloHome(p Provider) (string, error) {
	if h := p.Getenv(HomeVar); h != "" {
		return filepath.Clean(h), nil
	}
	home, err := p.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".jlo"), nil
}

// DefaultJdkBase returns the platform's conventional JDK location.
func DefaultJdkBase(p Provider) (string, error) {
	if dir := p.Getenv(JdkDirVar); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := p.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	if IsMac(p) {
		return filepath.Join(home, "Library", "Java", "JavaVirtualMachines"), nil
	}
	return filepath.Join(home, "jdks"), nil
}

// ScratchRoot is where per-invocation work directories are created. It sits
// under the jlo home so the final rename stays on one filesystem in the
// common case.
func ScratchRoot(p Provider) (string, error) {
	home, err := JloHome(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "tmp"), nil
}
