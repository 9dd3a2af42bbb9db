package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/runebound/internal/ir"
)

// Kind names a content record family. The top-level field of a content
// document selects it.
type Kind string

const (
	KindEffect Kind = "effect"
	KindSkill  Kind = "skill"
	KindPlugin Kind = "plugin"
	KindItem   Kind = "item"
	KindQuest  Kind = "quest"
	KindEntity Kind = "entity"
)

// Kinds lists every record family in document order.
var Kinds = []Kind{KindEffect, KindSkill, KindPlugin, KindItem, KindQuest, KindEntity}

// IsKind reports whether s names a record family.
func IsKind(s string) bool {
	for _, k := range Kinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// DecodeRecord decodes the JSON form of one record of the given kind.
func DecodeRecord(kind Kind, key string, data []byte) (any, error) {
	switch kind {
	case KindEffect:
		return ir.DecodeEffect(key, data)
	case KindSkill:
		return ir.DecodeSkill(key, data)
	case KindPlugin:
		return ir.DecodePlugin(key, data)
	case KindItem:
		return ir.DecodeItem(key, data)
	case KindQuest:
		return ir.DecodeQuest(key, data)
	case KindEntity:
		return ir.DecodeEntity(key, data)
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
}

// CompileEffect compiles one effect record. The record key is the last
// label of v's path, e.g.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`effect: burn: { is_debuff: true, ... }`)
//	eff, err := CompileEffect(v.LookupPath(cue.ParsePath("effect.burn")))
func CompileEffect(v cue.Value) (*ir.EffectData, error) {
	return compileAs[ir.EffectData](KindEffect, v)
}

// CompileSkill compiles one skill record.
func CompileSkill(v cue.Value) (*ir.SkillData, error) {
	return compileAs[ir.SkillData](KindSkill, v)
}

// CompilePlugin compiles one plugin record.
func CompilePlugin(v cue.Value) (*ir.PluginData, error) {
	return compileAs[ir.PluginData](KindPlugin, v)
}

// CompileItem compiles one item record.
func CompileItem(v cue.Value) (*ir.ItemData, error) {
	return compileAs[ir.ItemData](KindItem, v)
}

// CompileQuest compiles one quest record.
func CompileQuest(v cue.Value) (*ir.QuestData, error) {
	return compileAs[ir.QuestData](KindQuest, v)
}

// CompileEntity compiles one entity template.
func CompileEntity(v cue.Value) (*ir.EntityData, error) {
	return compileAs[ir.EntityData](KindEntity, v)
}

func compileAs[T any](kind Kind, v cue.Value) (*T, error) {
	rec, _, err := compileRecord(kind, v)
	if err != nil {
		return nil, err
	}
	return rec.(*T), nil
}

// compileRecord exports v to JSON and decodes it through the IR codec.
// Returns the record and its generic JSON form for hashing.
func compileRecord(kind Kind, v cue.Value) (any, any, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}
	key := recordKey(v)
	if key == "" {
		return nil, nil, &CompileError{Field: string(kind), Message: "record has no key", Pos: v.Pos()}
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}
	rec, err := DecodeRecord(kind, key, data)
	if err != nil {
		return nil, nil, positioned(v, kind, key, err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, nil, fmt.Errorf("%s %q: %w", kind, key, err)
	}
	return rec, generic, nil
}

// CompileBundle compiles every record of a content document. All record
// errors are collected; the bundle is returned only when there are none.
func CompileBundle(v cue.Value) (*Bundle, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	b := NewBundle()
	var errs CompileErrors
	for iter.Next() {
		name := iter.Label()
		if !IsKind(name) {
			errs = append(errs, &CompileError{
				Field:   name,
				Message: "unknown content kind",
				Pos:     iter.Value().Pos(),
			})
			continue
		}
		kind := Kind(name)

		records, err := iter.Value().Fields()
		if err != nil {
			errs = appendErr(errs, formatCUEError(err))
			continue
		}
		for records.Next() {
			rec, generic, err := compileRecord(kind, records.Value())
			if err != nil {
				errs = appendErr(errs, err)
				continue
			}
			if err := b.Add(kind, recordKey(records.Value()), rec, generic); err != nil {
				errs = appendErr(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return b, nil
}

func recordKey(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	label := sels[len(sels)-1].String()
	if unquoted, err := strconv.Unquote(label); err == nil {
		return unquoted
	}
	return label
}

// positioned converts IR validation errors into compile errors carrying the
// source position of the offending field, or of the record when the field
// cannot be located.
func positioned(v cue.Value, kind Kind, key string, err error) error {
	var list ir.ValidationErrors
	var single ir.ValidationError
	switch {
	case errors.As(err, &list):
	case errors.As(err, &single):
		list = ir.ValidationErrors{single}
	default:
		return &CompileError{Field: fmt.Sprintf("%s.%s", kind, key), Message: err.Error(), Pos: v.Pos()}
	}

	prefix := fmt.Sprintf("%s.%s.", kind, key)
	out := make(CompileErrors, 0, len(list))
	for _, ve := range list {
		field, rel := ve.Field, ""
		switch {
		case strings.HasPrefix(field, prefix):
			rel = strings.TrimPrefix(field, prefix)
		case field != strings.TrimSuffix(prefix, "."):
			rel = field
			field = prefix + field
		}
		out = append(out, &CompileError{Field: field, Message: ve.Message, Pos: fieldPos(v, rel)})
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func fieldPos(v cue.Value, rel string) token.Pos {
	for rel != "" {
		p := cue.ParsePath(rel)
		if p.Err() == nil {
			if f := v.LookupPath(p); f.Exists() {
				return f.Pos()
			}
		}
		// Fall back to the nearest enclosing field.
		i := strings.LastIndexAny(rel, ".[")
		if i < 0 {
			break
		}
		rel = rel[:i]
	}
	return v.Pos()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileErrors is a list of compile errors, reported together.
type CompileErrors []*CompileError

func (es CompileErrors) Error() string {
	switch len(es) {
	case 0:
		return "no errors"
	case 1:
		return es[0].Error()
	}
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// appendErr flattens err into errs.
func appendErr(errs CompileErrors, err error) CompileErrors {
	var list CompileErrors
	var single *CompileError
	switch {
	case errors.As(err, &list):
		return append(errs, list...)
	case errors.As(err, &single):
		return append(errs, single)
	default:
		return append(errs, &CompileError{Field: "content", Message: err.Error()})
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
