package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"jlo/internal/env"
	"jlo/internal/java"

	"github.com/dustin/go-humanize"
)

// Installer drives the JDK lifecycle: resolve, fetch, extract and place
// distributions into a java.Store, and reclaim superseded builds.
type Installer struct {
	resolver  Resolver
	fetcher   *Fetcher
	extractor *Extractor
	store     *java.Store
	env       env.Provider
	scratch   string
	logger    *slog.Logger
	spin      SpinnerFunc
}

// Option configures an Installer.
type Option func(*Installer)

// WithFetcher replaces the default archive fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(i *Installer) { i.fetcher = f }
}

// WithExtractor replaces the default archive extractor.
func WithExtractor(e *Extractor) Option {
	return func(i *Installer) { i.extractor = e }
}

// WithScratchDir sets the directory temporary work happens in. It should be
// on the same filesystem as the store so the final rename cannot fail with a
// cross-device error.
func WithScratchDir(dir string) Option {
	return func(i *Installer) { i.scratch = dir }
}

// WithLogger sets the installer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// WithSpinnerFunc sets how metadata lookups are shown to the user.
func WithSpinnerFunc(s SpinnerFunc) Option {
	return func(i *Installer) { i.spin = s }
}

// NewInstaller creates an Installer placing distributions into store.
func NewInstaller(resolver Resolver, store *java.Store, p env.Provider, opts ...Option) *Installer {
	i := &Installer{
		resolver:  resolver,
		fetcher:   NewFetcher(nil, nil),
		extractor: NewExtractor(nil),
		store:     store,
		env:       p,
		logger:    slog.New(slog.DiscardHandler),
		spin:      NoSpinner,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result describes the outcome of an update.
type Result struct {
	Path      string // JAVA_HOME of the distribution
	Semver    string // Distribution version
	Installed bool   // False when the latest build was already present
}

// EnsureAvailable returns the home of a local distribution satisfying major,
// installing the latest remote build first when none exists.
func (i *Installer) EnsureAvailable(ctx context.Context, major int) (string, error) {
	if v, ok := i.store.FindSuitable(strconv.Itoa(major)); ok {
		i.logger.Debug("using installed JDK", "version", v.Name, "dir", v.Path)
		return java.HomePath(i.env, v.Path), nil
	}

	i.logger.Info(fmt.Sprintf("JDK %d not installed, fetching it", major))
	meta, err := i.resolve(ctx, major)
	if err != nil {
		return "", err
	}
	return i.install(ctx, meta)
}

// Update resolves the latest remote build of major and installs it unless
// that exact build is already present.
func (i *Installer) Update(ctx context.Context, major int) (Result, error) {
	meta, err := i.resolve(ctx, major)
	if err != nil {
		return Result{}, err
	}

	if dir, ok := i.store.FindInstalled(meta.Semver); ok {
		i.logger.Info(fmt.Sprintf("JDK %d is up to date (%s)", major, meta.Semver))
		return Result{Path: java.HomePath(i.env, dir), Semver: meta.Semver}, nil
	}

	home, err := i.install(ctx, meta)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: home, Semver: meta.Semver, Installed: true}, nil
}

// UpdateAll updates each major in ascending order. A failure is logged and
// does not stop the remaining versions; all failures are returned joined.
func (i *Installer) UpdateAll(ctx context.Context, majors []int) error {
	sorted := slices.Clone(majors)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var errs []error
	for _, major := range sorted {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		res, err := i.Update(ctx, major)
		if err != nil {
			i.logger.Error(fmt.Sprintf("Failed to update JDK %d", major), "error", err)
			errs = append(errs, fmt.Errorf("JDK %d: %w", major, err))
			continue
		}
		if res.Installed {
			i.logger.Info(fmt.Sprintf("Installed JDK %s", res.Semver), "dir", res.Path)
		}
	}
	return errors.Join(errs...)
}

// InstalledMajors returns the major versions currently in the store.
func (i *Installer) InstalledMajors() ([]int, error) {
	return i.store.FindInstalledMajorVersions()
}

// Reclaim removes every managed distribution superseded by a newer build of
// the same major version.
func (i *Installer) Reclaim() error {
	return i.store.Cleanup()
}

func (i *Installer) resolve(ctx context.Context, major int) (*JdkMetadata, error) {
	var meta *JdkMetadata
	err := i.spin(fmt.Sprintf("Fetching %s metadata for JDK %d...", i.resolver.Name(), major), func() error {
		var err error
		meta, err = i.resolver.LatestBuild(ctx, major)
		return err
	})
	return meta, err
}

// install runs fetch, extract and place for meta inside a fresh scratch
// directory, which is removed on return regardless of outcome.
func (i *Installer) install(ctx context.Context, meta *JdkMetadata) (string, error) {
	if i.scratch != "" {
		if err := os.MkdirAll(i.scratch, 0o755); err != nil {
			return "", fmt.Errorf("failed to create scratch directory: %w", err)
		}
	}
	tmp, err := os.MkdirTemp(i.scratch, "jlo-install-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			i.logger.Warn("failed to remove temp directory", "dir", tmp, "error", err)
		}
	}()

	archive := filepath.Join(tmp, filepath.Base(meta.PackageName))
	i.logger.Debug("downloading", "url", meta.DownloadLink, "file", archive, "size", humanize.IBytes(uint64(max(meta.Size, 0))))
	if err := i.fetcher.Fetch(ctx, meta.DownloadLink, meta.Checksum, archive); err != nil {
		return "", err
	}

	extracted := filepath.Join(tmp, "extract")
	if err := i.extractor.Extract(archive, extracted); err != nil {
		return "", err
	}

	dest := i.store.Dir(meta.Semver)
	if err := i.store.Install(meta.ReleaseName, extracted, dest); err != nil {
		return "", err
	}

	return java.HomePath(i.env, dest), nil
}
