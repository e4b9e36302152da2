package env

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned when the host OS or CPU has no catalog token.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// CatalogOS maps the host operating system to the catalog's OS token.
func CatalogOS(p Provider) (string, error) {
	switch p.OS() {
	case "linux", "windows", "solaris", "aix":
		return p.OS(), nil
	case "illumos":
		return "solaris", nil
	case "darwin", "macos":
		return "mac", nil
	}
	return "", fmt.Errorf("%w: unknown OS %q", ErrUnsupportedPlatform, p.OS())
}

// CatalogArch maps the host CPU architecture to the catalog's architecture
// token. Both Go and LLVM-style names are accepted.
func CatalogArch(p Provider) (string, error) {
	switch arch := p.Arch(); arch {
	case "amd64", "x86_64":
		return "x64", nil
	case "386", "x86":
		return "x32", nil
	case "arm64", "aarch64":
		return "aarch64", nil
	case "arm":
		return "arm", nil
	case "ppc64le":
		return "ppc64le", nil
	case "ppc64":
		return "ppc64", nil
	case "powerpc64":
		if p.BigEndian() {
			return "ppc64", nil
		}
		return "ppc64le", nil
	case "s390x":
		return "s390x", nil
	case "riscv64":
		return "riscv64", nil
	case "sparc64":
		return "sparcv9", nil
	default:
		return "", fmt.Errorf("%w: unknown architecture %q", ErrUnsupportedPlatform, arch)
	}
}
