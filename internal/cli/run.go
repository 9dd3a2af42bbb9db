package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DBPath string

	// BattleIDs allows overriding the battle ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	BattleIDs engine.BattleIDGenerator
}

// RunResult summarizes one persisted battle.
type RunResult struct {
	BattleID string `json:"battle_id"`
	Steps    int64  `json:"steps"`
	Results  int    `json:"results"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Resolve a scenario's steps into the battle log",
		Long: `Build a scenario's entities, queue its steps and resolve them on the
battle loop, writing every step's results to the configured state store
under a fresh battle ID. Assertions are not checked; use 'runebound test'.

Example:
  runebound run ./scenarios/wolf_bites_hero.yaml --db battles.db
  runebound log --db battles.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBattle(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite state file (overrides config)")

	return cmd
}

func runBattle(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	backend, err := openBackend(ctx, opts.settings(), opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open state", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			slog.Error("error closing state", "error", closeErr)
		}
	}()

	ids := opts.BattleIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	h, err := harness.New(ctx, scenario,
		harness.WithBattleIDs(ids),
		harness.WithResultWriter(backend),
		harness.WithWallClock(engine.SystemClock{}),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build battle", err)
	}
	battle := h.Battle()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, c := range harness.Commands(scenario) {
		battle.Enqueue(c)
	}
	battle.Stop()

	if err := battle.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "battle error", err)
	}

	logged, err := backend.ReadResults(ctx, battle.ID())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read battle log", err)
	}

	result := RunResult{BattleID: battle.ID(), Steps: battle.Seq(), Results: len(logged)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Battle %s: %d steps, %d results", result.BattleID, result.Steps, result.Results))
}
