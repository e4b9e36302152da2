package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"jlo/internal/config"
	"jlo/internal/env"
	"jlo/internal/installer"
	"jlo/internal/java"
	"jlo/internal/theme"
	"jlo/internal/updater"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set during build time via ldflags
var Version = "dev"

// app carries what every command needs, built once before a command runs.
type app struct {
	env         env.Provider
	logger      *slog.Logger
	cfg         *config.Config
	store       *java.Store
	installer   *installer.Installer
	resolver    installer.Resolver
	spin        installer.SpinnerFunc
	interactive bool

	jdkDir  string
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorMessage(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{env: env.System{}}

	root := &cobra.Command{
		Use:   "jlo",
		Short: "J'Lo, the Java loader",
		Long: "Installs JDKs on demand and points your shell at them.\n\n" +
			"Add this to your shell profile to activate the project's JDK:\n\n" +
			"  eval \"$(jlo env)\"",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.jdkDir, "jdk-dir", "", "directory JDKs are installed into")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "show debug output")

	root.AddCommand(
		a.newEnvCmd(),
		a.newInitCmd(),
		a.newUpdateCmd(),
		a.newCleanCmd(),
		a.newListCmd(),
		a.newSelfUpdateCmd(),
		a.newVersionCmd(),
	)

	return root
}

func (a *app) setup() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(theme.NewHandler(os.Stderr, level))
	a.interactive = term.IsTerminal(int(os.Stderr.Fd()))

	cfg, err := config.Load(a.env)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	base, err := cfg.JdkBase(a.env, a.jdkDir)
	if err != nil {
		return err
	}
	scratch, err := env.ScratchRoot(a.env)
	if err != nil {
		return err
	}

	a.store = java.NewStore(base, a.env,
		java.WithLogger(a.logger),
		java.WithMatchStrategy(java.ParseMatchStrategy(cfg.Match)),
	)
	a.resolver = installer.NewAdoptium(a.env, installer.WithResolverLogger(a.logger))

	track, spin := installer.TrackerFactory(installer.NopTracker), installer.SpinnerFunc(installer.NoSpinner)
	if a.interactive {
		track, spin = installer.BarTracker, installer.WithSpinner
	}

	a.spin = spin
	a.installer = installer.NewInstaller(a.resolver, a.store, a.env,
		installer.WithFetcher(installer.NewFetcher(nil, track)),
		installer.WithExtractor(installer.NewExtractor(track)),
		installer.WithScratchDir(scratch),
		installer.WithLogger(a.logger),
		installer.WithSpinnerFunc(spin),
	)

	a.logger.Debug("configuration", "jdk_dir", base, "scratch", scratch, "settings", cfg.Path(), "match", cfg.Match)
	return nil
}

// notify is the PostRun of the human-facing commands. `env` output is
// evaluated by the shell and does not check.
func (a *app) notify(cmd *cobra.Command, _ []string) {
	a.notifyUpdate(cmd.Context())
}

// notifyUpdate prints a one-line notice when a newer jlo is published.
// Failures are only logged at debug level.
func (a *app) notifyUpdate(ctx context.Context) {
	if !a.interactive || a.cfg == nil {
		return
	}

	upd, err := updater.NewUpdater(a.cfg, Version, a.logger, os.Stderr)
	if err != nil || !upd.ShouldCheckForUpdate() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	release, err := upd.CheckForUpdate(ctx, false)
	if err != nil {
		a.logger.Debug("background update check failed", "error", err)
		return
	}
	if release != nil {
		upd.ShowUpdateNotification(release.Version())
	}
}
