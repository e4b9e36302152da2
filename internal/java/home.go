package java

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"jlo/internal/env"
)

// ErrJavaExecutableMissing means a JDK tree has no launcher where one is expected.
var ErrJavaExecutableMissing = errors.New("java executable is missing")

// ExecutableName returns the launcher file name for the platform.
func ExecutableName(p env.Provider) string {
	if env.IsWindows(p) {
		return "java.exe"
	}
	return "java"
}

// HomePath returns the JAVA_HOME for an installed distribution directory.
// macOS bundles keep the runtime under Contents/Home.
func HomePath(p env.Provider, dir string) string {
	if env.IsMac(p) {
		bundled := filepath.Join(dir, "Contents", "Home")
		if fileExists(filepath.Join(bundled, "bin", ExecutableName(p))) {
			return bundled
		}
	}
	return dir
}

// IsValidJavaHome checks if a path contains the platform java launcher
func IsValidJavaHome(p env.Provider, path string) bool {
	return fileExists(filepath.Join(path, "bin", ExecutableName(p)))
}

// jdkRoot locates the runtime root inside an extracted archive. The archive's
// top-level folder is named after the release; on macOS the runtime sits
// one level further down under Contents/Home.
func jdkRoot(p env.Provider, extracted, releaseName string) (string, error) {
	root := filepath.Join(extracted, releaseName)
	if env.IsMac(p) {
		root = filepath.Join(root, "Contents", "Home")
	}

	launcher := filepath.Join(root, "bin", ExecutableName(p))
	if !fileExists(launcher) {
		return "", fmt.Errorf("%w at: %s", ErrJavaExecutableMissing, launcher)
	}
	return root, nil
}

var versionOutput = regexp.MustCompile(`version\s+"([^"]+)"`)

// RuntimeVersion runs `java -version` from home and returns the reported
// version, or "" when it cannot be determined.
func RuntimeVersion(p env.Provider, home string) string {
	cmd := exec.Command(filepath.Join(home, "bin", ExecutableName(p)), "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ""
	}
	return parseVersionOutput(string(output))
}

// parseVersionOutput parses the output of 'java -version', e.g.
// openjdk version "21.0.3" 2024-04-16 LTS
func parseVersionOutput(output string) string {
	if m := versionOutput.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
