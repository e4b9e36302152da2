package updater

import (
	"fmt"
	"strings"

	"jlo/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/dustin/go-humanize"
)

// Prompt answers
const (
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionLater  = "later"
)

// PromptForUpdate asks whether to install release.
// Returns the user's choice: ActionUpdate, ActionSkip or ActionLater.
func (u *Updater) PromptForUpdate(release *selfupdate.Release) (string, error) {
	description := fmt.Sprintf(
		"Download size: %s\n\n%s",
		humanize.IBytes(uint64(max(release.AssetByteSize, 0))),
		truncateChangelog(release.ReleaseNotes, 400),
	)

	var action string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render(fmt.Sprintf("Update available: %s → %s", u.currentVersion, release.Version()))).
		Description(theme.Faint.Render(description)).
		Options(
			huh.NewOption(theme.SuccessStyle.Render("Update now"), ActionUpdate),
			huh.NewOption(theme.InfoStyle.Render("Skip this version"), ActionSkip),
			huh.NewOption(theme.WarningStyle.Render("Remind me later"), ActionLater),
		).
		Value(&action).
		Run()
	if err != nil {
		return "", err
	}

	if action == ActionSkip {
		if err := u.SkipVersion(release.Version()); err != nil {
			u.logger.Warn("failed to save skip preference", "error", err)
		}
	}

	return action, nil
}

// ShowUpdateNotification displays a subtle notification about an available update
func (u *Updater) ShowUpdateNotification(latestVersion string) {
	fmt.Fprintf(u.out, "\n%s Update available: %s → %s %s\n\n",
		theme.InfoStyle.Render("ℹ"),
		theme.Faint.Render(u.currentVersion),
		theme.CurrentStyle.Render(latestVersion),
		theme.Faint.Render("(run 'jlo selfupdate')"))
}

// ShowUpdateSuccess displays success message after update
func (u *Updater) ShowUpdateSuccess(version string) {
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, theme.SuccessMessage("Update complete"))
	fmt.Fprintf(u.out, "%s %s\n\n",
		theme.LabelStyle.Render("Version:"),
		theme.CurrentStyle.Render(version))
}

// ShowAlreadyUpToDate displays message when already on latest version
func (u *Updater) ShowAlreadyUpToDate() {
	fmt.Fprintln(u.out, theme.SuccessMessage(fmt.Sprintf("You're already running the latest version (%s)", u.currentVersion)))
}

// ShowDownloadingUpdate displays a message while downloading
func (u *Updater) ShowDownloadingUpdate(version string) {
	fmt.Fprintln(u.out, theme.InfoMessage(fmt.Sprintf("Downloading jlo %s...", version)))
}

// truncateChangelog truncates the changelog to a maximum length
func truncateChangelog(changelog string, maxLen int) string {
	changelog = strings.TrimSpace(changelog)
	if changelog == "" {
		return "See release notes on GitHub for details."
	}
	if len(changelog) <= maxLen {
		return changelog
	}

	// Prefer breaking at a newline, then a space
	truncated := changelog[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	} else if idx := strings.LastIndex(truncated, " "); idx > maxLen/2 {
		truncated = truncated[:idx]
	}

	return truncated + "..."
}
