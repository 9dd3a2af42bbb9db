package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/runebound/internal/store"
)

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "log [battle-id]",
		Short: "Show the battle log",
		Long: `Without an argument, list every logged battle with its step and
result counts. With a battle ID, print that battle's results in order.

Battles are logged by 'runebound run' and 'runebound test --record'.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, rootOpts, dbPath, args)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite state file (overrides config)")

	return cmd
}

func runLog(cmd *cobra.Command, rootOpts *RootOptions, dbPath string, args []string) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	backend, err := openBackend(ctx, rootOpts.settings(), dbPath)
	if err != nil {
		_ = formatter.Error("E202", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open state", err)
	}
	defer backend.Close()

	if len(args) == 0 {
		battles, err := backend.ListBattles(ctx)
		if err != nil {
			_ = formatter.Error("E301", err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to list battles", err)
		}
		return outputBattles(formatter, battles)
	}

	battleID := args[0]
	results, err := backend.ReadResults(ctx, battleID)
	if err != nil {
		_ = formatter.Error("E301", err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to read battle log", err)
	}
	if len(results) == 0 {
		msg := fmt.Sprintf("no results logged for battle %q", battleID)
		_ = formatter.Error("E302", msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	return outputBattleLog(formatter, results)
}

func outputBattles(formatter *OutputFormatter, battles []store.BattleSummary) error {
	if formatter.Format == "json" {
		if battles == nil {
			battles = []store.BattleSummary{}
		}
		return formatter.Success(battles)
	}
	if len(battles) == 0 {
		return formatter.Success("No battles logged")
	}

	var b strings.Builder
	for i, s := range battles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %d steps, %d results", s.BattleID, s.Steps, s.Results)
	}
	return formatter.Success(b.String())
}

func outputBattleLog(formatter *OutputFormatter, results []store.LoggedResult) error {
	if formatter.Format == "json" {
		return formatter.Success(results)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d.%d] %s", r.Seq, r.Ordinal, formatActionResult(r.Result))
	}
	return formatter.Success(b.String())
}
