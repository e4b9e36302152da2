package installer

import "context"

// Resolver answers catalog questions for one upstream distributor.
type Resolver interface {
	Name() string
	LatestBuild(ctx context.Context, major int) (*JdkMetadata, error)
	LatestMajorVersion(ctx context.Context) (int, error)
	AvailableReleases(ctx context.Context) ([]JavaRelease, error)
}

// JavaRelease represents an available Java major version
type JavaRelease struct {
	Major int
	IsLTS bool
}

// JdkMetadata describes one downloadable JDK build. All string fields are
// guaranteed non-empty by the resolver.
type JdkMetadata struct {
	Semver       string // e.g. 21.0.3+9, also the install directory name
	ReleaseName  string // e.g. jdk-21.0.3+9, the archive's top-level folder
	PackageName  string // archive file name
	DownloadLink string
	Checksum     string // hex-encoded SHA-256 of the archive
	Size         int64  // advertised archive size, 0 if unknown
}
