package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"jlo/internal/config"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	// GitHubRepo is the repository for jlo releases
	GitHubRepo = "java-loader/jlo"

	// CheckInterval is minimum time between update checks
	CheckInterval = 24 * time.Hour

	// UpdateTimeout is maximum time for update operations
	UpdateTimeout = 5 * time.Minute
)

// ErrNoReleases is returned when the repository has no usable release.
var ErrNoReleases = errors.New("no releases found")

// Updater handles checking and applying updates of the jlo binary
type Updater struct {
	config         *config.Config
	currentVersion string
	selfUpdater    *selfupdate.Updater
	logger         *slog.Logger
	out            io.Writer
	now            func() time.Time
}

// NewUpdater creates a new Updater. Messages are written to out.
func NewUpdater(cfg *config.Config, version string, logger *slog.Logger, out io.Writer) (*Updater, error) {
	// Assets are validated against the release's SHA256SUMS.txt
	su, err := selfupdate.NewUpdater(selfupdate.Config{
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "SHA256SUMS.txt",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Updater{
		config:         cfg,
		currentVersion: cleanVersion(version),
		selfUpdater:    su,
		logger:         logger,
		out:            out,
		now:            time.Now,
	}, nil
}

// CurrentVersion returns the running version without a "v" prefix.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// ShouldCheckForUpdate reports whether a background check is due, based on
// the settings and the last check time. Development builds never check.
func (u *Updater) ShouldCheckForUpdate() bool {
	if u.currentVersion == "" || u.currentVersion == "dev" {
		return false
	}
	if !u.config.UpdateConfig.Enabled || !u.config.UpdateConfig.AutoCheck {
		return false
	}
	return u.now().Sub(u.config.UpdateConfig.LastCheck) >= CheckInterval
}

// CheckForUpdate queries GitHub for the latest release.
// Returns nil if no update is available or the user skipped that version,
// unless force is set, in which case skipped versions are offered again.
func (u *Updater) CheckForUpdate(ctx context.Context, force bool) (*selfupdate.Release, error) {
	latest, found, err := u.selfUpdater.DetectLatest(ctx, selfupdate.ParseSlug(GitHubRepo))
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, ErrNoReleases
	}

	u.config.UpdateConfig.LastCheck = u.now()
	if err := u.config.Save(); err != nil {
		u.logger.Warn("failed to save settings", "path", u.config.Path(), "error", err)
	}

	if latest.LessOrEqual(u.currentVersion) {
		return nil, nil
	}
	if !force && u.config.UpdateConfig.SkipVersion == latest.Version() {
		u.logger.Debug("update skipped by user", "version", latest.Version())
		return nil, nil
	}

	return latest, nil
}

// PerformUpdate downloads and installs the update.
// The current binary is backed up first and restored on failure.
func (u *Updater) PerformUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	backup := exe + ".backup"
	if err := copyFile(exe, backup); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := u.selfUpdater.UpdateTo(ctx, release, exe); err != nil {
		if rollbackErr := os.Rename(backup, exe); rollbackErr != nil {
			return fmt.Errorf("update failed and rollback failed: update error: %w, rollback error: %v", err, rollbackErr)
		}
		return fmt.Errorf("update failed (rolled back): %w", err)
	}

	if err := os.Remove(backup); err != nil {
		u.logger.Debug("failed to remove backup", "path", backup, "error", err)
	}
	return nil
}

// SkipVersion marks a version as skipped by the user
func (u *Updater) SkipVersion(version string) error {
	u.config.UpdateConfig.SkipVersion = version
	return u.config.Save()
}

// copyFile creates a copy of the file for backup purposes
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// cleanVersion removes 'v' prefix if present for consistent comparison
func cleanVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
