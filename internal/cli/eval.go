package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/runebound/internal/archive"
	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/harness"
	"github.com/roach88/runebound/internal/ir"
	"github.com/roach88/runebound/internal/testutil"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	Domain   string
	Content  string
	Scenario string
	User     string
	Target   string
	Item     string
	Quantity int
	DBPath   string
}

var evalDomains = map[string]ir.ContextDomain{
	"combat": ir.ContextCombat,
	"item":   ir.ContextItem,
	"event":  ir.ContextEvent,
}

// EvalResult is the outcome of evaluating one node.
type EvalResult struct {
	Node    string                `json:"node"` // value, condition or extra
	Type    string                `json:"type"`
	Domain  string                `json:"domain"`
	Value   *float64              `json:"value,omitempty"`
	Holds   *bool                 `json:"holds,omitempty"`
	Results []engine.ActionResult `json:"results,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <node-file>",
		Short: "Evaluate a Value, Condition or Extra tree",
		Long: `Decode a JSON or YAML node tree and evaluate it in a Combat, Item or
Event context.

Entities come from --scenario when given. Otherwise two default entities,
"user" and "target", are built. Event evaluation reads and writes the
configured game state store.

Exit codes:
  0 - Evaluated
  1 - Evaluation failed
  2 - Command error (unreadable file, bad node, unknown entity)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Domain, "domain", "combat", "evaluation context (combat|item|event)")
	cmd.Flags().StringVar(&opts.Content, "content", "", "content directory to load")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario file providing content and entities")
	cmd.Flags().StringVar(&opts.User, "user", "", "user entity id")
	cmd.Flags().StringVar(&opts.Target, "target", "", "target entity id")
	cmd.Flags().StringVar(&opts.Item, "item", "", "item key for the item context")
	cmd.Flags().IntVar(&opts.Quantity, "quantity", 1, "item quantity")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite state file (overrides config)")

	return cmd
}

// evalSetup is the archive, entities and random source an evaluation runs on.
type evalSetup struct {
	archive *archive.Archive
	user    *engine.Entity
	target  *engine.Entity
	random  engine.Random
}

func runEval(cmd *cobra.Command, rootOpts *RootOptions, opts *EvalOptions, path string) error {
	ctx := cmd.Context()
	cfg := rootOpts.settings()
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	domain, ok := evalDomains[opts.Domain]
	if !ok {
		return evalError(formatter, "E101", fmt.Sprintf("invalid domain %q: must be combat, item or event", opts.Domain))
	}

	data, err := readNodeFile(path)
	if err != nil {
		return evalError(formatter, "E102", err.Error())
	}
	node, err := decodeNode(data)
	if err != nil {
		return evalError(formatter, "E103", fmt.Sprintf("invalid node: %v", err))
	}

	setup, err := buildEvalSetup(cmd, cfg.Random.Seed, opts)
	if err != nil {
		return evalError(formatter, "E104", err.Error())
	}
	formatter.VerboseLog("Evaluating %s in %s context (user %s, target %s)", node.Kind(), domain, setup.user.ID, setup.target.ID)

	result := EvalResult{Type: node.Kind(), Domain: opts.Domain}

	switch domain {
	case ir.ContextCombat:
		c := engine.NewCombatContext(engine.NewAction("eval", setup.user, 1), setup.user, setup.target, setup.random)
		c.Archive = setup.archive
		c.Clock = engine.SystemClock{}
		evalSync(&result, node, c)
		result.Results = c.Results()

	case ir.ContextItem:
		item := &ir.ItemData{Key: "eval", Name: "eval", Tier: 1}
		if opts.Item != "" {
			found, ok := setup.archive.Item(opts.Item)
			if !ok {
				return evalError(formatter, "E104", engine.NewUnknownContentError("item", opts.Item).Error())
			}
			item = found
		}
		c := &engine.ItemContext{
			Item:     item,
			Quantity: opts.Quantity,
			User:     setup.user,
			Target:   setup.target,
			Random:   setup.random,
			Archive:  setup.archive,
		}
		evalSync(&result, node, c)

	case ir.ContextEvent:
		backend, err := openBackend(ctx, cfg, opts.DBPath)
		if err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("failed to open state: %v", err))
		}
		defer backend.Close()

		ec := &engine.EventContext{
			Action:    engine.NewAction("eval", setup.user, 1),
			User:      setup.user,
			Target:    setup.target,
			Random:    setup.random,
			Clock:     engine.SystemClock{},
			State:     backend,
			Archive:   setup.archive,
			Namespace: cfg.Event.Namespace,
		}
		if err := evalEvent(cmd, &result, node, ec); err != nil {
			_ = formatter.Error("E105", err.Error(), nil)
			return WrapExitError(ExitFailure, "evaluation failed", err)
		}
	}

	return outputEvalResult(formatter, result)
}

func evalSync(result *EvalResult, node ir.Node, c engine.SyncContext) {
	switch n := node.(type) {
	case ir.Value:
		v := engine.EvaluateValue(n, c)
		result.Node, result.Value = "value", &v
	case ir.Condition:
		ok := engine.EvaluateCondition(n, c)
		result.Node, result.Holds = "condition", &ok
	case ir.Extra:
		engine.ExecuteExtra(n, c)
		result.Node = "extra"
	}
}

func evalEvent(cmd *cobra.Command, result *EvalResult, node ir.Node, ec *engine.EventContext) error {
	ctx := cmd.Context()
	switch n := node.(type) {
	case ir.Value:
		v, err := engine.EvaluateEventValue(ctx, n, ec)
		if err != nil {
			return err
		}
		result.Node, result.Value = "value", &v
	case ir.Condition:
		ok, err := engine.EvaluateEventCondition(ctx, n, ec)
		if err != nil {
			return err
		}
		result.Node, result.Holds = "condition", &ok
	case ir.Extra:
		if err := engine.ExecuteEventExtra(ctx, n, ec); err != nil {
			return err
		}
		result.Node = "extra"
	}
	return nil
}

// readNodeFile reads a node tree from YAML or JSON and returns it as JSON.
func readNodeFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read node file: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse node file: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert node file: %w", err)
	}
	return data, nil
}

// decodeNode decodes data as a Value, then a Condition, then an Extra.
// Only an unknown root type moves on to the next family.
func decodeNode(data []byte) (ir.Node, error) {
	v, err := ir.UnmarshalValue(data)
	if err == nil {
		return v, nil
	}
	if !isUnknownRootType(err) {
		return nil, err
	}

	c, err := ir.UnmarshalCondition(data)
	if err == nil {
		return c, nil
	}
	if !isUnknownRootType(err) {
		return nil, err
	}

	x, err := ir.UnmarshalExtra(data)
	if err == nil {
		return x, nil
	}
	if isUnknownRootType(err) {
		var ve ir.ValidationError
		errors.As(err, &ve)
		return nil, fmt.Errorf("unknown node type: %s", strings.TrimPrefix(ve.Message, "unknown extra type "))
	}
	return nil, err
}

func isUnknownRootType(err error) bool {
	var ve ir.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return ve.Field == "type" && strings.HasPrefix(ve.Message, "unknown ")
}

func buildEvalSetup(cmd *cobra.Command, seed *uint64, opts *EvalOptions) (*evalSetup, error) {
	if opts.Scenario != "" {
		return scenarioSetup(cmd, opts)
	}

	arc := archive.New(nil)
	if opts.Content != "" {
		loaded, err := archive.Load(cmd.Context(), opts.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		arc = loaded
	}

	var random engine.Random
	if seed != nil {
		random = engine.NewRandom(*seed)
	} else {
		random = engine.NewRandom(uint64(time.Now().UnixNano()))
	}

	user := engine.NewEntity("user", testutil.EntityData("user", nil), 1, arc)
	target := engine.NewEntity("target", testutil.EntityData("target", nil), 1, arc)
	return &evalSetup{archive: arc, user: user, target: target, random: random}, nil
}

func scenarioSetup(cmd *cobra.Command, opts *EvalOptions) (*evalSetup, error) {
	scenario, err := harness.LoadScenario(opts.Scenario)
	if err != nil {
		return nil, err
	}
	h, err := harness.New(cmd.Context(), scenario)
	if err != nil {
		return nil, err
	}

	battle := h.Battle()
	entities := battle.Entities()
	pick := func(id string, fallback int) (*engine.Entity, error) {
		if id == "" {
			return entities[min(fallback, len(entities)-1)], nil
		}
		e := battle.Entity(id)
		if e == nil {
			return nil, fmt.Errorf("unknown entity %q", id)
		}
		return e, nil
	}

	user, err := pick(opts.User, 0)
	if err != nil {
		return nil, err
	}
	target, err := pick(opts.Target, 1)
	if err != nil {
		return nil, err
	}
	return &evalSetup{archive: h.Archive(), user: user, target: target, random: h.Random()}, nil
}

func evalError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputEvalResult(formatter *OutputFormatter, result EvalResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	switch {
	case result.Value != nil:
		fmt.Fprintf(&b, "%v", *result.Value)
	case result.Holds != nil:
		fmt.Fprintf(&b, "%t", *result.Holds)
	case len(result.Results) == 0:
		b.WriteString("ok")
	default:
		for i, r := range result.Results {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(formatActionResult(r))
		}
	}
	return formatter.Success(b.String())
}

// formatActionResult renders one result as a single line.
func formatActionResult(r engine.ActionResult) string {
	line := fmt.Sprintf("%s -> %s", r.Kind, r.Target)
	if r.Name != "" {
		line += " " + r.Name
	}
	if r.Delta != 0 {
		line += fmt.Sprintf(" %+d", r.Delta)
	}
	if r.Absorbed != 0 {
		line += fmt.Sprintf(" (absorbed %d)", r.Absorbed)
	}
	if r.Tier != 0 {
		line += fmt.Sprintf(" tier %d", r.Tier)
	}
	if r.Turns != 0 {
		line += fmt.Sprintf(" turns %d", r.Turns)
	}
	return line
}
