package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"jlo/internal/config"
	"jlo/internal/env"
	"jlo/internal/installer"
	"jlo/internal/java"
	"jlo/internal/theme"
	"jlo/internal/updater"

	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

func (a *app) newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env [VERSION]",
		Short: "Print shell exports activating a JDK, installing it if needed",
		Long: "Prints JAVA_HOME and PATH exports for the requested major version, or the\n" +
			"one in " + config.RCFile + " when no version is given. Use it as:\n\n" +
			"  eval \"$(jlo env)\"",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := a.requestedVersion(args)
			if err != nil {
				return err
			}

			home, err := a.installer.EnsureAvailable(cmd.Context(), version)
			if err != nil {
				return err
			}
			a.logger.Debug("activating", "version", version, "java_home", home)

			exports := env.Activate(a.env, home, a.store.Base)
			if len(exports) > 0 {
				a.logger.Info("Use Java from " + home)
			}
			for _, export := range exports {
				fmt.Fprintln(cmd.OutOrStdout(), export)
			}
			return nil
		},
	}
}

func (a *app) newInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [VERSION]",
		Short: "Create " + config.RCFile + " in the current directory",
		Long: "Writes " + config.RCFile + " with the given major version. Without one the\n" +
			"latest published major version is used, or chosen from a list with -i.",
		Args:    cobra.MaximumNArgs(1),
		PostRun: a.notify,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				version int
				err     error
			)
			switch {
			case len(args) == 1:
				version, err = config.ParseVersion(args[0])
			case interactive:
				version, err = a.selectRelease(cmd.Context())
			default:
				err = a.spin("Fetching latest Java version...", func() error {
					version, err = a.resolver.LatestMajorVersion(cmd.Context())
					return err
				})
			}
			if err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := config.InitVersion(cwd, version); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme.SuccessMessage(fmt.Sprintf("Created %s with Java %d", config.RCFile, version)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose the version from the available releases")
	return cmd
}

// selectRelease asks the user to pick one of the published major versions.
func (a *app) selectRelease(ctx context.Context) (int, error) {
	if !a.interactive {
		return 0, errors.New("interactive selection needs a terminal")
	}

	var releases []installer.JavaRelease
	err := a.spin("Fetching available Java versions...", func() error {
		var err error
		releases, err = a.resolver.AvailableReleases(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	options := make([]huh.Option[int], 0, len(releases))
	for _, r := range releases {
		if !config.IsValidVersion(r.Major) {
			continue
		}
		label := "Java " + strconv.Itoa(r.Major)
		if r.IsLTS {
			label += " " + theme.SuccessStyle.Render("(LTS)")
		}
		options = append(options, huh.NewOption(label, r.Major))
	}
	if len(options) == 0 {
		return 0, installer.ErrNoReleasesFound
	}

	version := options[0].Value
	err = huh.NewSelect[int]().
		Title(theme.Subtitle.Render("Select Java version")).
		Description(theme.Faint.Render("LTS releases receive long-term support")).
		Options(options...).
		Height(10).
		Value(&version).
		Run()
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (a *app) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [VERSION...|all]",
		Short: "Install the latest build of the given major versions",
		Long: "Installs the newest published build of each requested major version when\n" +
			"it is not already present. 'all' refreshes every installed major version;\n" +
			"without arguments the version in " + config.RCFile + " is used.",
		PostRun: a.notify,
		RunE: func(cmd *cobra.Command, args []string) error {
			majors, err := a.updateTargets(args)
			if err != nil {
				return err
			}
			return a.installer.UpdateAll(cmd.Context(), majors)
		},
	}
}

// errNoUpdateTargets is returned when the update arguments name no version.
var errNoUpdateTargets = fmt.Errorf("%w: no valid Java versions provided to update", config.ErrInvalidVersion)

// updateTargets expands the update arguments into major versions. "all"
// adds every installed major version; invalid versions are skipped with a
// warning. Duplicates are left for UpdateAll to drop.
func (a *app) updateTargets(args []string) ([]int, error) {
	if len(args) == 0 {
		v, err := a.requestedVersion(nil)
		if err != nil {
			return nil, err
		}
		return []int{v}, nil
	}

	var majors []int
	for _, arg := range args {
		if arg == "all" {
			installed, err := a.installer.InstalledMajors()
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			majors = append(majors, installed...)
			continue
		}

		v, err := config.ParseVersion(arg)
		if err != nil {
			a.logger.Warn("Skipping invalid version", "version", arg, "error", err)
			continue
		}
		majors = append(majors, v)
	}

	if len(majors) == 0 {
		return nil, errNoUpdateTargets
	}
	return majors, nil
}

func (a *app) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   "Remove all but the newest build of each major version",
		Args:    cobra.NoArgs,
		PostRun: a.notify,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.installer.Reclaim()
		},
	}
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List the JDKs managed by jlo",
		Args:    cobra.NoArgs,
		PostRun: a.notify,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions, err := a.store.List()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				a.logger.Info("No JDKs installed in " + a.store.Base)
				return nil
			}

			current := a.env.Getenv("JAVA_HOME")
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, v := range versions {
				home := java.HomePath(a.env, v.Path)
				mark, runtime := " ", ""
				if current != "" && samePath(a.env, current, home) {
					mark = "*"
					if rv := java.RuntimeVersion(a.env, home); rv != "" {
						runtime = "(" + rv + ")"
					}
				}
				fmt.Fprintf(w, "%s %s\t%s\t%s\n", mark, v.Name, home, runtime)
			}
			return w.Flush()
		},
	}
}

func samePath(p env.Provider, a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if env.IsWindows(p) {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func (a *app) newSelfUpdateCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "selfupdate",
		Short: "Update jlo to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.UpdateConfig.Enabled {
				a.logger.Warn("Updates are disabled in configuration.")
				fmt.Fprintln(os.Stderr, theme.Faint.Render("To enable, edit "+a.cfg.Path()+" and set update_config.enabled to true"))
				return nil
			}

			upd, err := updater.NewUpdater(a.cfg, Version, a.logger, os.Stderr)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), updater.UpdateTimeout)
			defer cancel()

			var release *selfupdate.Release
			err = a.spin("Checking for updates...", func() error {
				var err error
				release, err = upd.CheckForUpdate(ctx, true)
				return err
			})
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			if release == nil {
				upd.ShowAlreadyUpToDate()
				return nil
			}

			if !yes {
				if !a.interactive {
					return fmt.Errorf("jlo %s is available, rerun with --yes to install it", release.Version())
				}
				action, err := upd.PromptForUpdate(release)
				if err != nil {
					a.logger.Warn("Update cancelled.")
					return nil
				}
				switch action {
				case updater.ActionSkip:
					a.logger.Info(fmt.Sprintf("Skipped version %s", release.Version()))
					return nil
				case updater.ActionLater:
					a.logger.Info("Update postponed")
					return nil
				}
			}

			upd.ShowDownloadingUpdate(release.Version())
			if err := upd.PerformUpdate(ctx, release); err != nil {
				return fmt.Errorf("%w\nPlease try again or download manually from https://github.com/%s/releases", err, updater.GitHubRepo)
			}

			upd.ShowUpdateSuccess(release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "install without asking")
	return cmd
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jlo version",
		Args:  cobra.NoArgs,
		// No settings or store needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "jlo "+Version)
		},
	}
}

// requestedVersion returns the version given on the command line, or the one
// configured in the current directory.
func (a *app) requestedVersion(args []string) (int, error) {
	if len(args) > 0 {
		return config.ParseVersion(args[0])
	}
	cwd, err := os.Getwd()
	if err != nil {
		return 0, err
	}
	v, err := config.LoadVersion(cwd)
	if err != nil {
		return 0, err
	}
	a.logger.Debug("using version from "+config.RCFile, "version", v, "dir", cwd)
	return v, nil
}
