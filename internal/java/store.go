package java

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"jlo/internal/env"

	"github.com/Masterminds/semver/v3"
	"github.com/natefinch/atomic"
)

// MarkerFile is the zero-byte file that marks a directory as managed by jlo.
// Directories without it are never matched and never deleted.
const MarkerFile = ".jlo-managed"

// ErrDestinationOccupied means the install target exists, is not managed by
// jlo and does not hold a usable JDK.
var ErrDestinationOccupied = errors.New("destination exists and is not managed by jlo")

// Store is the on-disk tree of installed distributions, one directory per
// semver under Base. It is the only component that mutates that tree.
type Store struct {
	Base   string
	env    env.Provider
	logger *slog.Logger
	match  MatchStrategy
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for scan and cleanup diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMatchStrategy sets how FindSuitable compares names to requests.
func WithMatchStrategy(m MatchStrategy) Option {
	return func(s *Store) { s.match = m }
}

// NewStore creates a Store rooted at base.
func NewStore(base string, p env.Provider, opts ...Option) *Store {
	s := &Store{
		Base:   base,
		env:    p,
		logger: slog.New(slog.DiscardHandler),
		match:  MatchPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the canonical directory for a distribution semver.
func (s *Store) Dir(semverName string) string {
	return filepath.Join(s.Base, semverName)
}

// FindSuitable returns the highest managed distribution whose name satisfies
// request under the store's match strategy.
func (s *Store) FindSuitable(request string) (Version, bool) {
	versions, err := s.scan()
	if err != nil {
		s.logger.Debug("cannot read JDK base directory", "dir", s.Base, "error", err)
		return Version{}, false
	}

	candidates := slices.DeleteFunc(versions, func(v Version) bool {
		return !s.match.matches(v.Name, request)
	})
	if len(candidates) == 0 {
		return Version{}, false
	}

	sortDescending(candidates)
	return candidates[0], true
}

// FindInstalled reports whether the exact distribution semverName is
// installed and managed.
func (s *Store) FindInstalled(semverName string) (string, bool) {
	dir := s.Dir(semverName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	if !s.isManaged(dir) {
		return "", false
	}
	return dir, true
}

// Install moves the JDK found in extracted to dest and marks it managed.
//
// The rename is the commit point: dest either appears complete or not at all.
// The marker is written afterwards; a dest left unmarked by an interrupted
// run is completed here when it holds a usable JDK.
func (s *Store) Install(releaseName, extracted, dest string) error {
	root, err := jdkRoot(s.env, extracted, releaseName)
	if err != nil {
		return err
	}

	if info, err := os.Stat(dest); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrDestinationOccupied, dest)
		}
		if s.isManaged(dest) {
			s.logger.Debug("distribution already installed", "dir", dest)
			return nil
		}
		if !IsValidJavaHome(s.env, HomePath(s.env, dest)) {
			return fmt.Errorf("%w: %s", ErrDestinationOccupied, dest)
		}
		s.logger.Warn("completing interrupted installation", "dir", dest)
		return writeMarker(dest)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to inspect %s: %w", dest, err)
	}

	s.logger.Info("Installing JDK", "dir", dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create installation directory: %w", err)
	}

	if err := os.Rename(root, dest); err != nil {
		return fmt.Errorf("failed to move JDK to final location: %w", err)
	}

	return writeMarker(dest)
}

// Cleanup keeps only the newest managed distribution per major version.
// A failed removal is logged and does not stop the others; all removal
// errors are returned joined.
func (s *Store) Cleanup() error {
	versions, err := s.scan()
	if err != nil {
		return fmt.Errorf("can't read JDK base directory %s: %w", s.Base, err)
	}

	groups := groupByMajor(versions)

	majors := make([]int, 0, len(groups))
	for major := range groups {
		majors = append(majors, major)
	}
	slices.Sort(majors)

	var errs []error
	for _, major := range majors {
		group := groups[major]
		if len(group) <= 1 {
			continue
		}
		sortDescending(group)

		kept, losers := group[0], group[1:]
		names := make([]string, len(losers))
		for i, v := range losers {
			names[i] = v.Name
		}
		s.logger.Info(fmt.Sprintf("Keeping %s for JDK %d, removing: %s", kept.Name, major, strings.Join(names, ", ")))

		for _, old := range losers {
			if err := os.RemoveAll(old.Path); err != nil {
				s.logger.Error("Error removing old JDK", "dir", old.Path, "error", err)
				errs = append(errs, fmt.Errorf("failed to remove %s: %w", old.Path, err))
			}
		}
	}

	return errors.Join(errs...)
}

// FindInstalledMajorVersions returns the distinct major versions present,
// ascending.
func (s *Store) FindInstalledMajorVersions() ([]int, error) {
	versions, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("can't read JDK base directory %s: %w", s.Base, err)
	}

	groups := groupByMajor(versions)
	majors := make([]int, 0, len(groups))
	for major := range groups {
		majors = append(majors, major)
	}
	slices.Sort(majors)
	return majors, nil
}

// List returns every managed distribution, newest first.
func (s *Store) List() ([]Version, error) {
	versions, err := s.scan()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sortDescending(versions)
	return versions, nil
}

// scan lists the managed, semver-named directories directly under Base.
func (s *Store) scan() ([]Version, error) {
	entries, err := os.ReadDir(s.Base)
	if err != nil {
		return nil, err
	}

	versions := make([]Version, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(s.Base, entry.Name())
		if !entry.IsDir() {
			s.logger.Debug("Ignoring non-directory", "path", path)
			continue
		}
		if !s.isManaged(path) {
			s.logger.Debug("Ignoring non-jlo-managed directory", "path", path)
			continue
		}
		sv, err := semver.StrictNewVersion(entry.Name())
		if err != nil {
			s.logger.Warn("Ignoring non-semver directory", "path", path)
			continue
		}
		versions = append(versions, Version{Name: entry.Name(), Path: path, Semver: sv})
	}
	return versions, nil
}

func (s *Store) isManaged(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && info.Mode().IsRegular()
}

func writeMarker(dir string) error {
	if err := atomic.WriteFile(filepath.Join(dir, MarkerFile), bytes.NewReader(nil)); err != nil {
		return fmt.Errorf("failed to mark %s as managed: %w", dir, err)
	}
	return nil
}

func groupByMajor(versions []Version) map[int][]Version {
	groups := make(map[int][]Version)
	for _, v := range versions {
		groups[v.Major()] = append(groups[v.Major()], v)
	}
	return groups
}

func sortDescending(versions []Version) {
	slices.SortFunc(versions, func(a, b Version) int {
		return compareVersions(b.Semver, a.Semver)
	})
}
