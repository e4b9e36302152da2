package java

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a store-managed distribution found on disk.
type Version struct {
	Name   string          // Directory name, the distribution's semver string
	Path   string          // Absolute path of the distribution directory
	Semver *semver.Version // Parsed Name
}

// Major returns the leading version component.
func (v Version) Major() int {
	return int(v.Semver.Major())
}

// compareVersions orders by semver precedence, then by build metadata so that
// 21.0.3+10 sorts above 21.0.3+9.
func compareVersions(a, b *semver.Version) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return compareMetadata(a.Metadata(), b.Metadata())
}

func compareMetadata(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareIdentifier(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// MatchStrategy decides whether an installed distribution satisfies a request.
type MatchStrategy int

const (
	// MatchPrefix accepts any directory whose name starts with the request,
	// so "1" also matches "11.0.2". This is the historical behavior.
	MatchPrefix MatchStrategy = iota
	// MatchMajor accepts only directories whose major version equals the request.
	MatchMajor
)

func (m MatchStrategy) matches(name, request string) bool {
	switch m {
	case MatchMajor:
		v, err := semver.StrictNewVersion(name)
		if err != nil {
			return false
		}
		return strconv.FormatUint(v.Major(), 10) == strings.TrimSpace(request)
	default:
		return strings.HasPrefix(name, request)
	}
}

// ParseMatchStrategy maps a settings value to a MatchStrategy.
func ParseMatchStrategy(s string) MatchStrategy {
	if s == "major" {
		return MatchMajor
	}
	return MatchPrefix
}
