package compiler

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/runebound/internal/ir"
)

// Bundle is the compiled content of one or more documents, keyed per kind.
type Bundle struct {
	Effects  map[string]*ir.EffectData
	Skills   map[string]*ir.SkillData
	Plugins  map[string]*ir.PluginData
	Items    map[string]*ir.ItemData
	Quests   map[string]*ir.QuestData
	Entities map[string]*ir.EntityData

	// Hashes maps "kind/key" to the content hash of the record's source.
	Hashes map[string]string
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		Effects:  make(map[string]*ir.EffectData),
		Skills:   make(map[string]*ir.SkillData),
		Plugins:  make(map[string]*ir.PluginData),
		Items:    make(map[string]*ir.ItemData),
		Quests:   make(map[string]*ir.QuestData),
		Entities: make(map[string]*ir.EntityData),
		Hashes:   make(map[string]string),
	}
}

// DuplicateError reports a key defined twice for the same kind.
type DuplicateError struct {
	Kind Kind
	Key  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
}

// Add inserts a decoded record. generic is the record's JSON form used for
// its content hash; nil skips hashing.
func (b *Bundle) Add(kind Kind, key string, rec any, generic any) error {
	if b.Has(kind, key) {
		return &DuplicateError{Kind: kind, Key: key}
	}

	switch r := rec.(type) {
	case *ir.EffectData:
		b.Effects[key] = r
	case *ir.SkillData:
		b.Skills[key] = r
	case *ir.PluginData:
		b.Plugins[key] = r
	case *ir.ItemData:
		b.Items[key] = r
	case *ir.QuestData:
		b.Quests[key] = r
	case *ir.EntityData:
		b.Entities[key] = r
	default:
		return fmt.Errorf("%s %q: unsupported record type %T", kind, key, rec)
	}

	if generic != nil {
		h, err := ir.ContentHash(string(kind), key, generic)
		if err != nil {
			return err
		}
		b.Hashes[hashKey(kind, key)] = h
	}
	return nil
}

// Has reports whether a record of kind is defined under key.
func (b *Bundle) Has(kind Kind, key string) bool {
	var ok bool
	switch kind {
	case KindEffect:
		_, ok = b.Effects[key]
	case KindSkill:
		_, ok = b.Skills[key]
	case KindPlugin:
		_, ok = b.Plugins[key]
	case KindItem:
		_, ok = b.Items[key]
	case KindQuest:
		_, ok = b.Quests[key]
	case KindEntity:
		_, ok = b.Entities[key]
	}
	return ok
}

// Keys returns the sorted keys defined for kind.
func (b *Bundle) Keys(kind Kind) []string {
	switch kind {
	case KindEffect:
		return slices.Sorted(maps.Keys(b.Effects))
	case KindSkill:
		return slices.Sorted(maps.Keys(b.Skills))
	case KindPlugin:
		return slices.Sorted(maps.Keys(b.Plugins))
	case KindItem:
		return slices.Sorted(maps.Keys(b.Items))
	case KindQuest:
		return slices.Sorted(maps.Keys(b.Quests))
	case KindEntity:
		return slices.Sorted(maps.Keys(b.Entities))
	}
	return nil
}

// Len returns the total number of records.
func (b *Bundle) Len() int {
	return len(b.Effects) + len(b.Skills) + len(b.Plugins) + len(b.Items) + len(b.Quests) + len(b.Entities)
}

// Hash returns the content hash recorded for a record, if any.
func (b *Bundle) Hash(kind Kind, key string) (string, bool) {
	h, ok := b.Hashes[hashKey(kind, key)]
	return h, ok
}

// Merge adds every record of other to b. Keys already in b are reported as
// DuplicateErrors and skipped; the rest are still merged.
func (b *Bundle) Merge(other *Bundle) []error {
	var errs []error
	for _, kind := range Kinds {
		for _, key := range other.Keys(kind) {
			if b.Has(kind, key) {
				errs = append(errs, &DuplicateError{Kind: kind, Key: key})
				continue
			}
			_ = b.Add(kind, key, other.record(kind, key), nil)
			if h, ok := other.Hash(kind, key); ok {
				b.Hashes[hashKey(kind, key)] = h
			}
		}
	}
	return errs
}

func (b *Bundle) record(kind Kind, key string) any {
	switch kind {
	case KindEffect:
		return b.Effects[key]
	case KindSkill:
		return b.Skills[key]
	case KindPlugin:
		return b.Plugins[key]
	case KindItem:
		return b.Items[key]
	case KindQuest:
		return b.Quests[key]
	case KindEntity:
		return b.Entities[key]
	}
	return nil
}

func hashKey(kind Kind, key string) string {
	return string(kind) + "/" + key
}
