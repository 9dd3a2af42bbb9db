package engine

import (
	"context"

	"github.com/roach88/runebound/internal/ir"
)

// TitlePrefix namespaces the switches that record unlocked titles.
const TitlePrefix = "title:"

// EvaluateEventValue evaluates v against an Event context. Only leaves that
// read persisted state touch ec.State; an error comes only from there.
func EvaluateEventValue(ctx context.Context, v ir.Value, ec *EventContext) (float64, error) {
	return evalValue(ec.frame(ctx), v)
}

// EvaluateEventCondition evaluates cond against an Event context.
func EvaluateEventCondition(ctx context.Context, cond ir.Condition, ec *EventContext) (bool, error) {
	return evalCondition(ec.frame(ctx), cond)
}

// ExecuteEventExtra executes x against an Event context. Execution stops at
// the first state error; writes made before it are kept.
func ExecuteEventExtra(ctx context.Context, x ir.Extra, ec *EventContext) error {
	return execExtra(ec.frame(ctx), x)
}

func evalEventValue(f *frame, v ir.Value) (float64, error) {
	if f.state == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case ir.SavedVariable:
		x, err := f.state.Variable(f.ctx, f.key(n.Key))
		if err != nil {
			return 0, NewStateError("read variable", f.key(n.Key), err)
		}
		return float64(x), nil
	case ir.SavedTimestamp:
		x, err := f.state.Timestamp(f.ctx, f.key(n.Key))
		if err != nil {
			return 0, NewStateError("read timestamp", f.key(n.Key), err)
		}
		return float64(x), nil
	case ir.Currency:
		x, err := f.state.Currency(f.ctx, n.Kind)
		if err != nil {
			return 0, NewStateError("read currency", n.Kind, err)
		}
		return float64(x), nil
	case ir.InventoryCount:
		x, err := f.state.Inventory(f.ctx, n.Item)
		if err != nil {
			return 0, NewStateError("read inventory", n.Item, err)
		}
		return float64(x), nil
	}
	return 0, nil
}

func evalEventCondition(f *frame, c ir.Condition) (bool, error) {
	if f.state == nil {
		return false, nil
	}
	switch n := c.(type) {
	case ir.Switch:
		return f.readSwitch(f.key(n.Key))

	case ir.QuestCompleted:
		if f.async == nil {
			return false, nil
		}
		q, ok, err := f.async.FetchQuest(f.ctx, n.Quest)
		if err != nil || !ok {
			return false, err
		}
		return f.readSwitch(f.key(q.CompletionSwitch))

	case ir.TitleUnlocked:
		return f.readSwitch(TitlePrefix + n.Title)

	case ir.TimeElapsed:
		stamp, err := f.state.Timestamp(f.ctx, f.key(n.Key))
		if err != nil {
			return false, NewStateError("read timestamp", f.key(n.Key), err)
		}
		if stamp == 0 {
			return false, nil
		}
		return f.now().Now().Unix()-stamp >= n.Seconds, nil
	}
	return false, nil
}

func (f *frame) readSwitch(key string) (bool, error) {
	on, err := f.state.Switch(f.ctx, key)
	if err != nil {
		return false, NewStateError("read switch", key, err)
	}
	return on, nil
}

func execEventExtra(f *frame, x ir.Extra) error {
	if f.state == nil {
		return nil
	}
	switch n := x.(type) {
	case ir.SetSwitch:
		if err := f.state.SetSwitch(f.ctx, f.key(n.Key), n.On); err != nil {
			return NewStateError("write switch", f.key(n.Key), err)
		}

	case ir.SetVariable:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		if err := f.state.SetVariable(f.ctx, f.key(n.Key), int64(v)); err != nil {
			return NewStateError("write variable", f.key(n.Key), err)
		}

	case ir.AddVariable:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		cur, err := f.state.Variable(f.ctx, f.key(n.Key))
		if err != nil {
			return NewStateError("read variable", f.key(n.Key), err)
		}
		if err := f.state.SetVariable(f.ctx, f.key(n.Key), cur+int64(v)); err != nil {
			return NewStateError("write variable", f.key(n.Key), err)
		}

	case ir.StampTime:
		if err := f.state.SetTimestamp(f.ctx, f.key(n.Key), f.now().Now().Unix()); err != nil {
			return NewStateError("write timestamp", f.key(n.Key), err)
		}

	case ir.ChangeCurrency:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		cur, err := f.state.Currency(f.ctx, n.Kind)
		if err != nil {
			return NewStateError("read currency", n.Kind, err)
		}
		if err := f.state.SetCurrency(f.ctx, n.Kind, max(cur+int64(v), 0)); err != nil {
			return NewStateError("write currency", n.Kind, err)
		}

	case ir.ChangeInventory:
		v, err := evalValue(f, n.Value)
		if err != nil {
			return err
		}
		cur, err := f.state.Inventory(f.ctx, n.Item)
		if err != nil {
			return NewStateError("read inventory", n.Item, err)
		}
		if err := f.state.SetInventory(f.ctx, n.Item, max(cur+int64(v), 0)); err != nil {
			return NewStateError("write inventory", n.Item, err)
		}
	}
	return nil
}
