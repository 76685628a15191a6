package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/napolitain/tycoon/internal/clock"
	"github.com/napolitain/tycoon/internal/config"
	"github.com/napolitain/tycoon/internal/engine"
	"github.com/napolitain/tycoon/internal/loader"
	"github.com/napolitain/tycoon/internal/models"
	"github.com/napolitain/tycoon/internal/platform/logger"
	"github.com/napolitain/tycoon/internal/session"
	"github.com/napolitain/tycoon/internal/solver"
	"github.com/napolitain/tycoon/internal/store"
)

type options struct {
	configFile   string
	settingsPath string
	dbPath       string
	verbose      bool
	quiet        bool
}

// app is the per-command wiring of settings, store and sessions
type app struct {
	settings *models.Settings
	store    *store.Store
	sessions *session.Manager
	clk      clock.Clock
	out      io.Writer
}

func main() {
	if err := newRootCmd(clock.RealClock{}).Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd(clk clock.Clock) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tycoon",
		Short: "Idle game studio tycoon",
		Long: `Manage idle tycoon save slots: develop games, hire employees and
buy containers while resources accrue every tick.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.settingsPath, "settings", "s", "", "Path to settings document (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to save database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log session events")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Minimal output")

	// run wires an app for one command invocation and tears it down afterwards
	run := func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), opts, clk, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()
			if !opts.quiet {
				printBanner(a.out)
			}
			return fn(cmd.Context(), a, args)
		}
	}

	var horizon int
	planCmd := &cobra.Command{
		Use:   "plan <save-id>",
		Short: "Suggest an acquisition order by greedy ROI",
		Long: `Simulate the save tick by tick, always taking the action that pays back
fastest. The save itself is not modified.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			return runPlan(ctx, a, args, horizon)
		}),
	}
	planCmd.Flags().IntVar(&horizon, "horizon", 600, "Number of ticks to plan ahead")

	rootCmd.AddCommand(
		planCmd,
		&cobra.Command{
			Use:   "new",
			Short: "Create a new save in a free slot",
			Args:  cobra.NoArgs,
			RunE:  run(runNew),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List save slots",
			Args:  cobra.NoArgs,
			RunE:  run(runList),
		},
		&cobra.Command{
			Use:   "show <save-id>",
			Short: "Show a save, caught up to now",
			Args:  cobra.ExactArgs(1),
			RunE:  run(runShow),
		},
		&cobra.Command{
			Use:   "advance <save-id> <ticks>",
			Short: "Advance a save by a number of ticks",
			Args:  cobra.ExactArgs(2),
			RunE:  run(runAdvance),
		},
		&cobra.Command{
			Use:   "hire <save-id> <employee-id>",
			Short: "Hire an employee",
			Args:  cobra.ExactArgs(2),
			RunE:  run(acquireRunner(models.Employee)),
		},
		&cobra.Command{
			Use:   "develop <save-id> <game-id>",
			Short: "Start developing a game",
			Args:  cobra.ExactArgs(2),
			RunE:  run(acquireRunner(models.Content)),
		},
		&cobra.Command{
			Use:   "buy-container <save-id> <container-type-id>",
			Short: "Buy a container to raise capacity",
			Args:  cobra.ExactArgs(2),
			RunE:  run(runBuyContainer),
		},
		&cobra.Command{
			Use:   "capacity <save-id>",
			Short: "Show slot usage per category",
			Args:  cobra.ExactArgs(1),
			RunE:  run(runCapacity),
		},
		&cobra.Command{
			Use:   "delete <save-id>",
			Short: "Delete a save and free its slot",
			Args:  cobra.ExactArgs(1),
			RunE:  run(runDelete),
		},
		&cobra.Command{
			Use:   "catalog",
			Short: "List assets and containers from the settings document",
			Args:  cobra.NoArgs,
			RunE:  run(runCatalog),
		},
	)

	return rootCmd
}

func setup(ctx context.Context, opts *options, clk clock.Clock, out io.Writer) (*app, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if opts.settingsPath != "" {
		cfg.SettingsPath = opts.settingsPath
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	color.NoColor = color.NoColor || !cfg.ColorEnabled()

	settings, err := loader.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	st, err := store.Open(ctx, cfg.DBPath, settings.MaxSaveSlots)
	if err != nil {
		return nil, fmt.Errorf("opening saves: %w", err)
	}

	lg := logger.Discard()
	if opts.verbose {
		lg = logger.New(out)
	}

	return &app{
		settings: settings,
		store:    st,
		sessions: session.NewManager(st, settings, clk, lg, 0),
		clk:      clk,
		out:      out,
	}, nil
}

// close releases sessions without saving. Commands that change a save persist it
// themselves, so read-only commands never rewrite the stored profile.
func (a *app) close() {
	a.sessions.Discard()
	_ = a.store.Close()
}

func runNew(ctx context.Context, a *app, args []string) error {
	slot, err := a.store.Create(ctx, engine.CreateProfile(a.settings, a.clk.Now()))
	if err != nil {
		return err
	}
	successColor.Fprintf(a.out, "✓ Created save %s\n\n", slot.ID)
	printProfile(a.out, slot.Profile, a.settings)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	slots, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	infoColor.Fprintf(a.out, "💾 %d/%d slots used\n\n", len(slots), a.store.MaxSlots())
	if len(slots) > 0 {
		printSlots(a.out, slots)
	}
	return nil
}

func runShow(ctx context.Context, a *app, args []string) error {
	s, err := a.sessions.Open(ctx, args[0])
	if err != nil {
		return err
	}
	profile, err := s.Snapshot()
	if err != nil {
		return err
	}
	printProfile(a.out, profile, a.settings)
	return nil
}

func runAdvance(ctx context.Context, a *app, args []string) error {
	ticks, err := strconv.Atoi(args[1])
	if err != nil || ticks < 0 {
		return fmt.Errorf("ticks must be a non-negative integer, got %q", args[1])
	}
	s, err := a.sessions.Open(ctx, args[0])
	if err != nil {
		return err
	}
	profile, report, err := s.Tick(ticks)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(ctx, s.ID()); err != nil {
		return err
	}

	successColor.Fprintf(a.out, "✓ Advanced %d ticks\n", ticks)
	for _, c := range report.Completed {
		successColor.Fprintf(a.out, "✓ Finished developing %s\n", assetName(a.settings, c.Type, c.ID))
	}
	fmt.Fprintln(a.out)
	printProfile(a.out, profile, a.settings)
	return nil
}

func acquireRunner(category models.AssetCategory) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		s, err := a.sessions.Open(ctx, args[0])
		if err != nil {
			return err
		}
		profile, outcome, err := s.Acquire(category, args[1])
		if err != nil {
			return err
		}
		if outcome != engine.Applied {
			return fmt.Errorf("cannot acquire %s: %s", args[1], outcome)
		}
		if err := a.sessions.Save(ctx, s.ID()); err != nil {
			return err
		}

		verb := "Hired"
		if category == models.Content {
			verb = "Started developing"
		}
		successColor.Fprintf(a.out, "✓ %s %s\n\n", verb, assetName(a.settings, category, args[1]))
		printProfile(a.out, profile, a.settings)
		return nil
	}
}

func runBuyContainer(ctx context.Context, a *app, args []string) error {
	s, err := a.sessions.Open(ctx, args[0])
	if err != nil {
		return err
	}
	profile, outcome, err := s.PurchaseContainer(args[1])
	if err != nil {
		return err
	}
	if outcome != engine.Applied {
		return fmt.Errorf("cannot buy %s: %s", args[1], outcome)
	}
	if err := a.sessions.Save(ctx, s.ID()); err != nil {
		return err
	}
	successColor.Fprintf(a.out, "✓ Bought %s\n\n", args[1])
	printCapacity(a.out, profile, a.settings)
	return nil
}

func runCapacity(ctx context.Context, a *app, args []string) error {
	s, err := a.sessions.Open(ctx, args[0])
	if err != nil {
		return err
	}
	profile, err := s.Snapshot()
	if err != nil {
		return err
	}
	printCapacity(a.out, profile, a.settings)
	return nil
}

func runPlan(ctx context.Context, a *app, args []string, horizon int) error {
	if horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %d", horizon)
	}
	s, err := a.sessions.Open(ctx, args[0])
	if err != nil {
		return err
	}
	profile, err := s.Snapshot()
	if err != nil {
		return err
	}
	plan := solver.NewGreedySolver(a.settings, horizon).Solve(profile, a.clk.Now())
	printPlan(a.out, plan, a.settings)
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	a.sessions.Evict(args[0])
	if err := a.store.Delete(ctx, args[0]); err != nil {
		return err
	}
	successColor.Fprintf(a.out, "✓ Deleted save %s\n", args[0])
	return nil
}

func runCatalog(ctx context.Context, a *app, args []string) error {
	printCatalog(a.out, a.settings)
	return nil
}
