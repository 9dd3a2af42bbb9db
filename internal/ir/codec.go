package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ValidationError represents a construction-time error with a field path.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MarshalNode encodes any Value, Condition or Extra as JSON.
// Object keys are sorted, so equal trees encode to equal bytes.
func MarshalNode(n Node) ([]byte, error) {
	obj, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// UnmarshalValue decodes a Value tree. Unknown types and unknown fields are
// rejected with a path-qualified ValidationError.
func UnmarshalValue(data []byte) (Value, error) {
	return decodeValue("", data)
}

// UnmarshalCondition decodes a Condition tree.
func UnmarshalCondition(data []byte) (Condition, error) {
	return decodeCondition("", data)
}

// UnmarshalExtra decodes an Extra tree.
func UnmarshalExtra(data []byte) (Extra, error) {
	return decodeExtra("", data)
}

// ToMap converts a node into the generic map form used by the JSON codec.
// Content loaders embed this form into YAML and CUE documents.
func ToMap(n Node) (map[string]any, error) {
	return encodeNode(n)
}

// =============================================================================
// Encoding
// =============================================================================

func encodeNode(n Node) (map[string]any, error) {
	switch v := n.(type) {
	case Value:
		return encodeValue(v)
	case Condition:
		return encodeCondition(v)
	case Extra:
		return encodeExtra(v)
	case nil:
		return nil, fmt.Errorf("cannot encode nil node")
	default:
		return nil, fmt.Errorf("unknown node type: %T", n)
	}
}

// encoder accumulates the first error while filling an object.
type encoder struct {
	obj map[string]any
	err error
}

func newEncoder(n Node) *encoder {
	return &encoder{obj: map[string]any{"type": n.Kind()}}
}

func (e *encoder) set(key string, v any) {
	e.obj[key] = v
}

func (e *encoder) value(key string, v Value, optional bool) {
	if e.err != nil {
		return
	}
	if v == nil {
		if !optional {
			e.err = fmt.Errorf("%s: %s is required", e.obj["type"], key)
		}
		return
	}
	m, err := encodeValue(v)
	if err != nil {
		e.err = fmt.Errorf("%s.%s: %w", e.obj["type"], key, err)
		return
	}
	e.obj[key] = m
}

func (e *encoder) values(key string, vs []Value) {
	if e.err != nil {
		return
	}
	list := make([]any, len(vs))
	for i, v := range vs {
		if v == nil {
			e.err = fmt.Errorf("%s.%s[%d]: nil value", e.obj["type"], key, i)
			return
		}
		m, err := encodeValue(v)
		if err != nil {
			e.err = fmt.Errorf("%s.%s[%d]: %w", e.obj["type"], key, i, err)
			return
		}
		list[i] = m
	}
	e.obj[key] = list
}

func (e *encoder) condition(key string, c Condition) {
	if e.err != nil {
		return
	}
	if c == nil {
		e.err = fmt.Errorf("%s: %s is required", e.obj["type"], key)
		return
	}
	m, err := encodeCondition(c)
	if err != nil {
		e.err = fmt.Errorf("%s.%s: %w", e.obj["type"], key, err)
		return
	}
	e.obj[key] = m
}

func (e *encoder) conditions(key string, cs []Condition) {
	if e.err != nil {
		return
	}
	list := make([]any, len(cs))
	for i, c := range cs {
		if c == nil {
			e.err = fmt.Errorf("%s.%s[%d]: nil condition", e.obj["type"], key, i)
			return
		}
		m, err := encodeCondition(c)
		if err != nil {
			e.err = fmt.Errorf("%s.%s[%d]: %w", e.obj["type"], key, i, err)
			return
		}
		list[i] = m
	}
	e.obj[key] = list
}

func (e *encoder) extra(key string, x Extra, optional bool) {
	if e.err != nil {
		return
	}
	if x == nil {
		if !optional {
			e.err = fmt.Errorf("%s: %s is required", e.obj["type"], key)
		}
		return
	}
	m, err := encodeExtra(x)
	if err != nil {
		e.err = fmt.Errorf("%s.%s: %w", e.obj["type"], key, err)
		return
	}
	e.obj[key] = m
}

func (e *encoder) extras(key string, xs []Extra) {
	if e.err != nil {
		return
	}
	list := make([]any, len(xs))
	for i, x := range xs {
		if x == nil {
			e.err = fmt.Errorf("%s.%s[%d]: nil extra", e.obj["type"], key, i)
			return
		}
		m, err := encodeExtra(x)
		if err != nil {
			e.err = fmt.Errorf("%s.%s[%d]: %w", e.obj["type"], key, i, err)
			return
		}
		list[i] = m
	}
	e.obj[key] = list
}

func (e *encoder) done() (map[string]any, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.obj, nil
}

func encodeValue(v Value) (map[string]any, error) {
	e := newEncoder(v)
	switch n := v.(type) {
	case Constant:
		e.set("value", n.Value)
	case Sum:
		e.values("values", n.Values)
	case Times:
		e.values("values", n.Values)
	case TimesByConstant:
		e.value("value", n.Value, false)
		e.set("constant", n.Constant)
	case Div:
		e.value("dividend", n.Dividend, false)
		e.value("divisor", n.Divisor, false)
	case Negate:
		e.value("value", n.Value, false)
	case Shift:
		e.value("value", n.Value, false)
		e.value("amount", n.Amount, false)
	case AbsoluteValue:
		e.value("value", n.Value, false)
	case CoercedBetween:
		e.value("value", n.Value, false)
		e.value("min", n.Min, true)
		e.value("max", n.Max, true)
	case MinOf:
		e.values("values", n.Values)
	case MaxOf:
		e.values("values", n.Values)
	case RandomInt:
		e.set("min", n.Range.Min)
		e.set("max", n.Range.Max)
	case RandomFloat:
		e.set("min", n.Range.Min)
		e.set("max", n.Range.Max)
	case ConditionedValue:
		e.condition("condition", n.Condition)
		e.value("if_true", n.IfTrue, true)
		e.value("if_false", n.IfFalse, true)
		e.value("default", n.Default, true)
	case ForUserValue:
		e.value("value", n.Value, false)
	case SwappedValue:
		e.value("value", n.Value, false)
	case LoadValue:
		e.set("key", n.Key)
		e.value("default", n.Default, true)
	case SavedVariable:
		e.set("key", n.Key)
	case SavedTimestamp:
		e.set("key", n.Key)
	case Currency:
		e.set("kind", n.Kind)
	case InventoryCount:
		e.set("item", n.Item)
	case StatOf:
		e.set("stat", string(n.Stat))
	case TurnsLeftOf:
		e.set("effect", n.Effect)
	case TierOf:
		e.set("effect", n.Effect)
	case ShieldValueOf:
		e.set("key", n.Key)
	case EffectCount:
		e.set("buff", n.Buff)
		e.set("debuff", n.Debuff)
	case Damage, Absorbed, AttackRate, DefendRate, TargetCount,
		ItemQuantity, ItemTier,
		ActionTier, TimesUsed, TimesRepeated, SkillPower, EffectTurnsLeft,
		HPRate, SPRate, APRate, ShieldTotal,
		Now, HourOfDay, DayOfWeek:
		// no fields
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
	return e.done()
}

func encodeCondition(c Condition) (map[string]any, error) {
	e := newEncoder(c)
	switch n := c.(type) {
	case And:
		e.conditions("conditions", n.Conditions)
	case Or:
		e.conditions("conditions", n.Conditions)
	case Not:
		e.condition("condition", n.Condition)
	case Compare:
		e.value("v1", n.V1, false)
		e.value("v2", n.V2, false)
		e.set("inclusive", n.Inclusive)
	case CompareValues:
		e.value("v1", n.V1, false)
		e.value("v2", n.V2, false)
		e.set("comparator", string(n.Comparator))
	case Chance:
		e.value("success_rate", n.SuccessRate, false)
		e.value("base", n.Base, true)
	case ItemNamed:
		e.set("name", n.Name)
	case ItemQuantityAtLeast:
		e.set("quantity", n.Quantity)
	case Switch:
		e.set("key", n.Key)
	case QuestCompleted:
		e.set("quest", n.Quest)
	case TitleUnlocked:
		e.set("title", n.Title)
	case TimeElapsed:
		e.set("key", n.Key)
		e.set("seconds", n.Seconds)
	case HasCategory:
		e.set("category", n.Category)
	case HasEffect:
		e.set("effect", n.Effect)
	case HasShield:
		e.set("key", n.Key)
	case HPLessThan:
		e.set("rate", n.Rate)
	case SPLessThan:
		e.set("rate", n.Rate)
	case PathIs:
		e.set("path", n.Path)
	case True, False, Critical, TargetingSelf, Missed,
		HasBuff, HasDebuff, IsFrozen, IsAlive:
		// no fields
	default:
		return nil, fmt.Errorf("unknown condition type: %T", c)
	}
	return e.done()
}

func encodeExtra(x Extra) (map[string]any, error) {
	e := newEncoder(x)
	switch n := x.(type) {
	case ConditionedExtra:
		e.condition("condition", n.Condition)
		e.extra("if_true", n.IfTrue, true)
		e.extra("if_false", n.IfFalse, true)
	case Grouped:
		e.extras("extras", n.Extras)
	case SaveValue:
		e.set("key", n.Key)
		e.value("value", n.Value, false)
	case ForUserExtra:
		e.extra("extra", n.Extra, false)
	case SwappedExtra:
		e.extra("extra", n.Extra, false)
	case HPChange:
		e.value("value", n.Value, false)
		e.set("pierce_shield", n.PierceShield)
	case SPChange:
		e.value("value", n.Value, false)
	case APChange:
		e.value("value", n.Value, false)
	case AttachEffect:
		e.set("name", n.Name)
		e.value("tier", n.Tier, true)
		e.value("turns", n.Turns, false)
	case RemoveEffect:
		e.set("name", n.Name)
	case RemoveAllEffect:
		e.set("buff", n.Buff)
		e.set("debuff", n.Debuff)
	case AttachShield:
		e.set("key", n.Key)
		e.value("value", n.Value, false)
		e.value("turns", n.Turns, true)
	case RemoveShield:
		e.set("key", n.Key)
	case SetSwitch:
		e.set("key", n.Key)
		e.set("on", n.On)
	case SetVariable:
		e.set("key", n.Key)
		e.value("value", n.Value, false)
	case AddVariable:
		e.set("key", n.Key)
		e.value("value", n.Value, false)
	case StampTime:
		e.set("key", n.Key)
	case ChangeCurrency:
		e.set("kind", n.Kind)
		e.value("value", n.Value, false)
	case ChangeInventory:
		e.set("item", n.Item)
		e.value("value", n.Value, false)
	case Empty, RemoveAllShields, NoEffect:
		// no fields
	default:
		return nil, fmt.Errorf("unknown extra type: %T", x)
	}
	return e.done()
}

// =============================================================================
// Decoding
// =============================================================================

// decoder reads fields of one JSON object and remembers the first error.
// Every key read is marked so finish can reject unknown fields.
type decoder struct {
	path string
	kind string
	raw  map[string]json.RawMessage
	used map[string]bool
	err  error
}

func newDecoder(path string, data []byte) (*decoder, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ValidationError{Field: pathOrRoot(path), Message: "expected object"}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ValidationError{Field: pathOrRoot(path), Message: err.Error()}
	}
	d := &decoder{path: path, raw: raw, used: map[string]bool{"type": true}}
	typeRaw, ok := raw["type"]
	if !ok {
		return nil, ValidationError{Field: join(path, "type"), Message: "is required"}
	}
	if err := json.Unmarshal(typeRaw, &d.kind); err != nil {
		return nil, ValidationError{Field: join(path, "type"), Message: "must be a string"}
	}
	return d, nil
}

func pathOrRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (d *decoder) fail(key, msg string) {
	if d.err == nil {
		d.err = ValidationError{Field: join(d.path, key), Message: msg}
	}
}

func (d *decoder) failErr(err error) {
	if d.err == nil {
		d.err = err
	}
}

// take returns the raw field and marks it used. Missing required fields fail.
func (d *decoder) take(key string, optional bool) (json.RawMessage, bool) {
	raw, ok := d.raw[key]
	d.used[key] = true
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if !optional {
			d.fail(key, "is required")
		}
		return nil, false
	}
	return raw, true
}

func (d *decoder) float(key string) float64 {
	raw, ok := d.take(key, false)
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		d.fail(key, "must be a number")
	}
	return f
}

func (d *decoder) int(key string) int {
	raw, ok := d.take(key, false)
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		d.fail(key, "must be an integer")
	}
	return n
}

func (d *decoder) int64(key string) int64 {
	raw, ok := d.take(key, false)
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		d.fail(key, "must be an integer")
	}
	return n
}

func (d *decoder) str(key string) string {
	raw, ok := d.take(key, false)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(key, "must be a string")
		return ""
	}
	if s == "" {
		d.fail(key, "must not be empty")
	}
	return s
}

// flag reads an optional boolean; absent reads as false.
func (d *decoder) flag(key string) bool {
	raw, ok := d.take(key, true)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		d.fail(key, "must be a boolean")
	}
	return b
}

func (d *decoder) value(key string, optional bool) Value {
	raw, ok := d.take(key, optional)
	if !ok || d.err != nil {
		return nil
	}
	v, err := decodeValue(join(d.path, key), raw)
	if err != nil {
		d.failErr(err)
		return nil
	}
	return v
}

func (d *decoder) values(key string) []Value {
	raw, ok := d.take(key, false)
	if !ok || d.err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(key, "must be a list")
		return nil
	}
	out := make([]Value, 0, len(items))
	for i, item := range items {
		v, err := decodeValue(fmt.Sprintf("%s[%d]", join(d.path, key), i), item)
		if err != nil {
			d.failErr(err)
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (d *decoder) condition(key string) Condition {
	raw, ok := d.take(key, false)
	if !ok || d.err != nil {
		return nil
	}
	c, err := decodeCondition(join(d.path, key), raw)
	if err != nil {
		d.failErr(err)
		return nil
	}
	return c
}

func (d *decoder) conditions(key string) []Condition {
	raw, ok := d.take(key, false)
	if !ok || d.err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(key, "must be a list")
		return nil
	}
	out := make([]Condition, 0, len(items))
	for i, item := range items {
		c, err := decodeCondition(fmt.Sprintf("%s[%d]", join(d.path, key), i), item)
		if err != nil {
			d.failErr(err)
			return nil
		}
		out = append(out, c)
	}
	return out
}

func (d *decoder) extra(key string, optional bool) Extra {
	raw, ok := d.take(key, optional)
	if !ok || d.err != nil {
		return nil
	}
	x, err := decodeExtra(join(d.path, key), raw)
	if err != nil {
		d.failErr(err)
		return nil
	}
	return x
}

func (d *decoder) extras(key string) []Extra {
	raw, ok := d.take(key, false)
	if !ok || d.err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(key, "must be a list")
		return nil
	}
	out := make([]Extra, 0, len(items))
	for i, item := range items {
		x, err := decodeExtra(fmt.Sprintf("%s[%d]", join(d.path, key), i), item)
		if err != nil {
			d.failErr(err)
			return nil
		}
		out = append(out, x)
	}
	return out
}

// finish rejects fields that no reader consumed.
func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	var unknown []string
	for k := range d.raw {
		if !d.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return ValidationError{Field: join(d.path, unknown[0]), Message: fmt.Sprintf("unknown field for %s", d.kind)}
	}
	return nil
}

func (d *decoder) unknownType(family string) error {
	return ValidationError{Field: join(d.path, "type"), Message: fmt.Sprintf("unknown %s type %q", family, d.kind)}
}

func decodeValue(path string, data []byte) (Value, error) {
	d, err := newDecoder(path, data)
	if err != nil {
		return nil, err
	}

	var v Value
	switch d.kind {
	case "Value.Constant":
		v = Constant{Value: d.float("value")}
	case "Value.Sum":
		v = Sum{Values: d.values("values")}
	case "Value.Times":
		v = Times{Values: d.values("values")}
	case "Value.TimesByConstant":
		v = TimesByConstant{Value: d.value("value", false), Constant: d.float("constant")}
	case "Value.Div":
		v = Div{Dividend: d.value("dividend", false), Divisor: d.value("divisor", false)}
	case "Value.Negate":
		v = Negate{Value: d.value("value", false)}
	case "Value.Shift":
		v = Shift{Value: d.value("value", false), Amount: d.value("amount", false)}
	case "Value.AbsoluteValue":
		v = AbsoluteValue{Value: d.value("value", false)}
	case "Value.CoercedBetween":
		v = CoercedBetween{Value: d.value("value", false), Min: d.value("min", true), Max: d.value("max", true)}
	case "Value.MinOf":
		v = MinOf{Values: d.values("values")}
	case "Value.MaxOf":
		v = MaxOf{Values: d.values("values")}
	case "Value.RandomInt":
		r := IntRange{Min: d.int("min"), Max: d.int("max")}
		if d.err == nil && r.Max < r.Min {
			d.fail("max", "must not be below min")
		}
		v = RandomInt{Range: r}
	case "Value.RandomFloat":
		r := FloatRange{Min: d.float("min"), Max: d.float("max")}
		if d.err == nil && r.Max < r.Min {
			d.fail("max", "must not be below min")
		}
		v = RandomFloat{Range: r}
	case "Value.Conditioned":
		v = ConditionedValue{
			Condition: d.condition("condition"),
			IfTrue:    d.value("if_true", true),
			IfFalse:   d.value("if_false", true),
			Default:   d.value("default", true),
		}
	case "Value.ForUser":
		v = ForUserValue{Value: d.value("value", false)}
	case "Value.Swapped":
		v = SwappedValue{Value: d.value("value", false)}
	case "Value.LoadValue":
		v = LoadValue{Key: d.str("key"), Default: d.value("default", true)}
	case "Combat.Damage":
		v = Damage{}
	case "Combat.Absorbed":
		v = Absorbed{}
	case "Combat.AttackRate":
		v = AttackRate{}
	case "Combat.DefendRate":
		v = DefendRate{}
	case "Combat.TargetCount":
		v = TargetCount{}
	case "Item.Quantity":
		v = ItemQuantity{}
	case "Item.Tier":
		v = ItemTier{}
	case "Event.Variable":
		v = SavedVariable{Key: d.str("key")}
	case "Event.Timestamp":
		v = SavedTimestamp{Key: d.str("key")}
	case "Event.Currency":
		v = Currency{Kind: d.str("kind")}
	case "Event.InventoryCount":
		v = InventoryCount{Item: d.str("item")}
	case "Action.Tier":
		v = ActionTier{}
	case "Action.TimesUsed":
		v = TimesUsed{}
	case "Action.TimesRepeated":
		v = TimesRepeated{}
	case "Action.Power":
		v = SkillPower{}
	case "Action.TurnsLeft":
		v = EffectTurnsLeft{}
	case "Entity.Stat":
		s := Stat(d.str("stat"))
		if d.err == nil && !ValidStats[s] {
			d.fail("stat", fmt.Sprintf("unknown stat %q", s))
		}
		v = StatOf{Stat: s}
	case "Entity.HPRate":
		v = HPRate{}
	case "Entity.SPRate":
		v = SPRate{}
	case "Entity.APRate":
		v = APRate{}
	case "Entity.TurnsLeftOf":
		v = TurnsLeftOf{Effect: d.str("effect")}
	case "Entity.TierOf":
		v = TierOf{Effect: d.str("effect")}
	case "Entity.ShieldValueOf":
		v = ShieldValueOf{Key: d.str("key")}
	case "Entity.ShieldTotal":
		v = ShieldTotal{}
	case "Entity.EffectCount":
		v = EffectCount{Buff: d.flag("buff"), Debuff: d.flag("debuff")}
	case "Time.Now":
		v = Now{}
	case "Time.HourOfDay":
		v = HourOfDay{}
	case "Time.DayOfWeek":
		v = DayOfWeek{}
	default:
		return nil, d.unknownType("value")
	}

	if err := d.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeCondition(path string, data []byte) (Condition, error) {
	d, err := newDecoder(path, data)
	if err != nil {
		return nil, err
	}

	var c Condition
	switch d.kind {
	case "Condition.And":
		c = And{Conditions: d.conditions("conditions")}
	case "Condition.Or":
		c = Or{Conditions: d.conditions("conditions")}
	case "Condition.Not":
		c = Not{Condition: d.condition("condition")}
	case "Condition.Compare":
		c = Compare{V1: d.value("v1", false), V2: d.value("v2", false), Inclusive: d.flag("inclusive")}
	case "Condition.CompareValues":
		n := CompareValues{V1: d.value("v1", false), V2: d.value("v2", false)}
		name := d.str("comparator")
		if d.err == nil {
			cmp, err := ParseComparator(name)
			if err != nil {
				d.fail("comparator", err.Error())
			}
			n.Comparator = cmp
		}
		c = n
	case "Condition.Chance":
		c = Chance{SuccessRate: d.value("success_rate", false), Base: d.value("base", true)}
	case "Condition.True":
		c = True{}
	case "Condition.False":
		c = False{}
	case "Combat.Critical":
		c = Critical{}
	case "Combat.TargetingSelf":
		c = TargetingSelf{}
	case "Combat.Missed":
		c = Missed{}
	case "Item.Named":
		c = ItemNamed{Name: d.str("name")}
	case "Item.QuantityAtLeast":
		c = ItemQuantityAtLeast{Quantity: d.int("quantity")}
	case "Event.Switch":
		c = Switch{Key: d.str("key")}
	case "Event.QuestCompleted":
		c = QuestCompleted{Quest: d.str("quest")}
	case "Event.TitleUnlocked":
		c = TitleUnlocked{Title: d.str("title")}
	case "Event.TimeElapsed":
		c = TimeElapsed{Key: d.str("key"), Seconds: d.int64("seconds")}
	case "Entity.HasCategory":
		c = HasCategory{Category: d.str("category")}
	case "Entity.HasEffect":
		c = HasEffect{Effect: d.str("effect")}
	case "Entity.HasShield":
		c = HasShield{Key: d.str("key")}
	case "Entity.HasBuff":
		c = HasBuff{}
	case "Entity.HasDebuff":
		c = HasDebuff{}
	case "Entity.IsFrozen":
		c = IsFrozen{}
	case "Entity.IsAlive":
		c = IsAlive{}
	case "Entity.HPLessThan":
		c = HPLessThan{Rate: d.float("rate")}
	case "Entity.SPLessThan":
		c = SPLessThan{Rate: d.float("rate")}
	case "Entity.PathIs":
		c = PathIs{Path: d.str("path")}
	default:
		return nil, d.unknownType("condition")
	}

	if err := d.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeExtra(path string, data []byte) (Extra, error) {
	d, err := newDecoder(path, data)
	if err != nil {
		return nil, err
	}

	var x Extra
	switch d.kind {
	case "Extra.Empty":
		x = Empty{}
	case "Extra.Conditioned":
		x = ConditionedExtra{
			Condition: d.condition("condition"),
			IfTrue:    d.extra("if_true", true),
			IfFalse:   d.extra("if_false", true),
		}
	case "Extra.Grouped":
		x = Grouped{Extras: d.extras("extras")}
	case "Extra.SaveValue":
		x = SaveValue{Key: d.str("key"), Value: d.value("value", false)}
	case "Extra.ForUser":
		x = ForUserExtra{Extra: d.extra("extra", false)}
	case "Extra.Swapped":
		x = SwappedExtra{Extra: d.extra("extra", false)}
	case "Entity.HPChange":
		x = HPChange{Value: d.value("value", false), PierceShield: d.flag("pierce_shield")}
	case "Entity.SPChange":
		x = SPChange{Value: d.value("value", false)}
	case "Entity.APChange":
		x = APChange{Value: d.value("value", false)}
	case "Entity.AttachEffect":
		x = AttachEffect{Name: d.str("name"), Tier: d.value("tier", true), Turns: d.value("turns", false)}
	case "Entity.RemoveEffect":
		x = RemoveEffect{Name: d.str("name")}
	case "Entity.RemoveAllEffect":
		x = RemoveAllEffect{Buff: d.flag("buff"), Debuff: d.flag("debuff")}
	case "Entity.AttachShield":
		x = AttachShield{Key: d.str("key"), Value: d.value("value", false), Turns: d.value("turns", true)}
	case "Entity.RemoveShield":
		x = RemoveShield{Key: d.str("key")}
	case "Entity.RemoveAllShields":
		x = RemoveAllShields{}
	case "Combat.NoEffect":
		x = NoEffect{}
	case "Event.SetSwitch":
		x = SetSwitch{Key: d.str("key"), On: d.flag("on")}
	case "Event.SetVariable":
		x = SetVariable{Key: d.str("key"), Value: d.value("value", false)}
	case "Event.AddVariable":
		x = AddVariable{Key: d.str("key"), Value: d.value("value", false)}
	case "Event.StampTime":
		x = StampTime{Key: d.str("key")}
	case "Event.ChangeCurrency":
		x = ChangeCurrency{Kind: d.str("kind"), Value: d.value("value", false)}
	case "Event.ChangeInventory":
		x = ChangeInventory{Item: d.str("item"), Value: d.value("value", false)}
	default:
		return nil, d.unknownType("extra")
	}

	if err := d.finish(); err != nil {
		return nil, err
	}
	return x, nil
}
