package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RCFile is the per-project file naming the wanted Java major version.
const RCFile = ".jlorc"

// MinVersion is the oldest Java major version the catalog serves.
const MinVersion = 8

var (
	ErrNotInitialized     = errors.New("not initialized, run `jlo init` first")
	ErrAlreadyInitialized = errors.New("file '" + RCFile + "' already exists")
	ErrInvalidVersion     = errors.New("unsupported Java version")
)

const rcHeader = "# Java version configured by J'Lo - https://github.com/java-loader/jlo"

// LoadVersion reads the major version from dir/.jlorc. The first line that is
// neither blank nor a # comment holds the version.
func LoadVersion(dir string) (int, error) {
	path := filepath.Join(dir, RCFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("could not read '%s': %w", RCFile, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimBOM(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := ParseVersion(line)
		if err != nil {
			return 0, fmt.Errorf("in '%s': %w", RCFile, err)
		}
		return v, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("could not read '%s': %w", RCFile, err)
	}

	return 0, fmt.Errorf("%w: file '%s' is empty, please specify a Java version", ErrNotInitialized, RCFile)
}

// InitVersion creates dir/.jlorc holding version. An existing file is never
// overwritten.
func InitVersion(dir string, version int) error {
	if !IsValidVersion(version) {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}

	path := filepath.Join(dir, RCFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", RCFile, err)
	}

	_, err = fmt.Fprintf(f, "%s\n%d\n", rcHeader, version)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write '%s': %w", RCFile, err)
	}
	return nil
}

// ParseVersion parses a major version string and validates it.
func ParseVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !IsValidVersion(v) {
		return 0, fmt.Errorf("%w: '%s', only major versions %d, 11, ... are supported", ErrInvalidVersion, s, MinVersion)
	}
	return v, nil
}

// IsValidVersion reports whether v is a major version jlo can install.
func IsValidVersion(v int) bool {
	return v >= MinVersion
}

// trimBOM drops a UTF-8 byte order mark (files written by PowerShell).
func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
