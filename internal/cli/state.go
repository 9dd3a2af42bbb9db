package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/runebound/internal/engine"
)

// StateTables lists the game state tables in display order.
var StateTables = []string{"switch", "variable", "timestamp", "currency", "inventory"}

// StateEntry is one game state cell.
type StateEntry struct {
	Table string `json:"table"`
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// NewStateCommand creates the state command with get and set subcommands.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Read and write persisted game state",
		Long: `Inspect the switches, variables, timestamps, currencies and inventory
that Event evaluation reads and writes.

Keys are used as given. Event evaluation prefixes switch, variable and
timestamp keys with the configured namespace.

Tables: switch, variable, timestamp, currency, inventory`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite state file (overrides config)")

	get := &cobra.Command{
		Use:           "get <table> <key>",
		Short:         "Read one game state value",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(cmd, rootOpts, dbPath, args[0], args[1], nil)
		},
	}

	set := &cobra.Command{
		Use:           "set <table> <key> <value>",
		Short:         "Write one game state value",
		Long:          "Write one game state value. Switches take true/false or 1/0; timestamps take unix seconds.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseStateValue(args[0], args[2])
			if err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			return runState(cmd, rootOpts, dbPath, args[0], args[1], &v)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func runState(cmd *cobra.Command, rootOpts *RootOptions, dbPath, table, key string, value *int64) error {
	ctx := cmd.Context()
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if !slices.Contains(StateTables, table) {
		msg := fmt.Sprintf("unknown table %q (valid: %v)", table, StateTables)
		_ = formatter.Error("E201", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	backend, err := openBackend(ctx, rootOpts.settings(), dbPath)
	if err != nil {
		_ = formatter.Error("E202", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open state", err)
	}
	defer backend.Close()

	if value != nil {
		formatter.VerboseLog("Setting %s %q = %d", table, key, *value)
		if err := writeState(ctx, backend, table, key, *value); err != nil {
			_ = formatter.Error("E203", err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to write state", err)
		}
	}

	v, err := readState(ctx, backend, table, key)
	if err != nil {
		_ = formatter.Error("E203", err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to read state", err)
	}

	entry := StateEntry{Table: table, Key: key, Value: v}
	if formatter.Format == "json" {
		return formatter.Success(entry)
	}
	if table == "switch" {
		return formatter.Success(fmt.Sprintf("%s %s = %t", table, key, v != 0))
	}
	return formatter.Success(fmt.Sprintf("%s %s = %d", table, key, v))
}

// parseStateValue parses a CLI argument for table.
func parseStateValue(table, arg string) (int64, error) {
	if table == "switch" {
		on, err := strconv.ParseBool(arg)
		if err != nil {
			return 0, fmt.Errorf("invalid switch value %q: want true or false", arg)
		}
		if on {
			return 1, nil
		}
		return 0, nil
	}
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: want an integer", table, arg)
	}
	return v, nil
}

func readState(ctx context.Context, repo engine.GameStateRepo, table, key string) (int64, error) {
	switch table {
	case "switch":
		on, err := repo.Switch(ctx, key)
		if on {
			return 1, err
		}
		return 0, err
	case "variable":
		return repo.Variable(ctx, key)
	case "timestamp":
		return repo.Timestamp(ctx, key)
	case "currency":
		return repo.Currency(ctx, key)
	default:
		return repo.Inventory(ctx, key)
	}
}

func writeState(ctx context.Context, repo engine.GameStateRepo, table, key string, v int64) error {
	switch table {
	case "switch":
		return repo.SetSwitch(ctx, key, v != 0)
	case "variable":
		return repo.SetVariable(ctx, key, v)
	case "timestamp":
		return repo.SetTimestamp(ctx, key, v)
	case "currency":
		return repo.SetCurrency(ctx, key, v)
	default:
		return repo.SetInventory(ctx, key, v)
	}
}
