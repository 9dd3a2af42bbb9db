package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/runebound/internal/compiler"
	"github.com/roach88/runebound/internal/engine"
	"github.com/roach88/runebound/internal/ir"
)

const effectsCUE = `package content

effect: poison: {
	is_debuff: true
	extra: {type: "Entity.HPChange", value: {type: "Value.Constant", value: -3}}
}
`

const skillsCUE = `package content

skill: bite: {
	base_power: 10
	extra: {type: "Entity.AttachEffect", name: "poison", turns: {type: "Value.Constant", value: 2}}
}
`

const itemsYAML = `item:
  potion:
    consumable: true
    extra:
      type: Entity.HPChange
      value: {type: Value.Constant, value: 20}
quest:
  hunt:
    title: Hunt the wolf
    completion_switch: hunt_done
`

const entitiesYAML = `entity:
  wolf:
    path: beast
    stats: {MaxHP: 40, ATK: 12}
    skills: [bite]
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadErrors(t *testing.T, err error) LoadErrors {
	t.Helper()
	var errs LoadErrors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestLoad_MixedSources(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"effects.cue":          effectsCUE,
		"skills.cue":           skillsCUE,
		"items.yaml":           itemsYAML,
		"beasts/entities.yml":  entitiesYAML,
		".hidden/ignored.yaml": "not: [valid",
	})

	a, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 4, a.FileCount())
	assert.Equal(t, 5, a.Bundle().Len())

	eff, ok := a.Effect("poison")
	require.True(t, ok)
	assert.True(t, eff.IsDebuff)

	skill, ok := a.Skill("bite")
	require.True(t, ok)
	assert.Equal(t, ir.AttachEffect{Name: "poison", Turns: ir.Constant{Value: 2}}, skill.Extra)

	item, ok := a.Item("potion")
	require.True(t, ok)
	assert.Equal(t, ir.HPChange{Value: ir.Constant{Value: 20}}, item.Extra)

	quest, ok := a.Quest("hunt")
	require.True(t, ok)
	assert.Equal(t, "Hunt the wolf", quest.Title)

	wolf, ok := a.Entity("wolf")
	require.True(t, ok)
	assert.Equal(t, []string{"bite"}, wolf.Skills)

	_, ok = a.Plugin("fang")
	assert.False(t, ok)
	assert.Empty(t, compiler.Validate(a.Bundle()))
}

func TestLoad_ServesEngine(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"effects.cue": effectsCUE,
		"skills.cue":  skillsCUE,
		"beasts.yaml": entitiesYAML,
	})
	a, err := Load(context.Background(), dir)
	require.NoError(t, err)

	data, _ := a.Entity("wolf")
	wolf := engine.NewEntity("wolf-1", data, 1, a)
	require.Len(t, wolf.Skills, 1)
	assert.Equal(t, "bite", wolf.Skills[0].Name)
}

func TestLoad_YAMLAndCUEHashAlike(t *testing.T) {
	cueDir := writeFiles(t, map[string]string{
		"q.cue": "package content\n\nquest: hunt: {title: \"Hunt\", completion_switch: \"done\"}\n",
	})
	yamlDir := writeFiles(t, map[string]string{
		"q.yaml": "quest:\n  hunt:\n    completion_switch: done\n    title: Hunt\n",
	})

	fromCUE, err := Load(context.Background(), cueDir)
	require.NoError(t, err)
	fromYAML, err := Load(context.Background(), yamlDir)
	require.NoError(t, err)

	hc, ok := fromCUE.Bundle().Hash(compiler.KindQuest, "hunt")
	require.True(t, ok)
	hy, ok := fromYAML.Bundle().Hash(compiler.KindQuest, "hunt")
	require.True(t, ok)
	assert.Equal(t, hc, hy)
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yaml": "quest:\n  hunt:\n    completion_switch: a\n",
		"b.yaml": "quest:\n  hunt:\n    completion_switch: b\n",
	})

	a, err := Load(context.Background(), dir)
	assert.Nil(t, a)

	errs := loadErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeDuplicate, errs[0].Code)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), errs[0].File)
	assert.Contains(t, errs[0].Message, filepath.Join(dir, "a.yaml"))
}

func TestLoad_DuplicateBetweenCUEAndYAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"effects.cue":  effectsCUE,
		"effects.yaml": "effect:\n  poison:\n    is_debuff: true\n",
	})

	_, err := Load(context.Background(), dir)
	errs := loadErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeDuplicate, errs[0].Code)
}

func TestLoad_YAMLRecordErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.yaml": "quest:\n  a:\n    title: x\nmonster:\n  slime: {}\nskill:\n  s:\n    target: everyone\n    growth: [5, 3]\n    extra: {type: Extra.Empty}\n",
	})

	_, err := Load(context.Background(), dir)
	errs := loadErrors(t, err)
	require.Len(t, errs, 4)

	assert.Equal(t, ErrCodeRecord, errs[0].Code)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Message, "quest.a.completion_switch")

	assert.Contains(t, errs[1].Message, "monster: unknown content kind")
	assert.Equal(t, 4, errs[1].Line)

	assert.Contains(t, errs[2].Message, "skill.s.target")
	assert.Contains(t, errs[3].Message, "skill.s.growth[1]")
	assert.Contains(t, errs[3].Error(), "bad.yaml:8:")
}

func TestLoad_YAMLSyntaxError(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.yaml": "quest: [unclosed\n"})

	_, err := Load(context.Background(), dir)
	errs := loadErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeYAML, errs[0].Code)
}

func TestLoad_CUERecordError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.cue": "package content\n\nitem: potion: {\n\ttier: 0\n\textra: {type: \"Extra.Empty\"}\n}\n",
	})

	_, err := Load(context.Background(), dir)
	errs := loadErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeRecord, errs[0].Code)
	assert.Contains(t, errs[0].Message, "item.potion.tier")
	require.True(t, errs[0].Pos.IsValid())
	assert.Equal(t, 4, errs[0].Pos.Line())
}

func TestLoad_DirectoryErrors(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, ErrCodeNotFound, loadErrors(t, err)[0].Code)

	_, err = Load(context.Background(), t.TempDir())
	assert.Equal(t, ErrCodeNoFiles, loadErrors(t, err)[0].Code)

	file := filepath.Join(writeFiles(t, map[string]string{"x.yaml": "quest: {}\n"}), "x.yaml")
	_, err = Load(context.Background(), file)
	assert.Equal(t, ErrCodeNotFound, loadErrors(t, err)[0].Code)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"items.yaml": itemsYAML})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFindContentFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.cue":          "package content\n",
		"a.cue":          "package content\n",
		"nested/c.cue":   "package other\n",
		"nested/d.yml":   "",
		"e.yaml":         "",
		"notes.md":       "",
		"cue.mod/x.yaml": "",
	})

	cueFiles, yamlFiles, err := FindContentFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "b.cue")}, cueFiles)
	assert.Equal(t, []string{filepath.Join(dir, "e.yaml"), filepath.Join(dir, "nested", "d.yml")}, yamlFiles)
}

func TestArchive_AsyncLookups(t *testing.T) {
	v := cuecontext.New().CompileString(`
		effect: poison: extra: {type: "Extra.Empty"}
		item: potion: extra: {type: "Extra.Empty"}
		quest: hunt: completion_switch: "done"
	`)
	a, err := LoadValue(v)
	require.NoError(t, err)

	ctx := context.Background()
	eff, ok, err := a.FetchEffect(ctx, "poison")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "poison", eff.Name)

	_, ok, err = a.FetchItem(ctx, "elixir")
	require.NoError(t, err)
	assert.False(t, ok, "misses are not errors")

	q, ok, err := a.FetchQuest(ctx, "hunt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "done", q.CompletionSwitch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = a.FetchQuest(cancelled, "hunt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadValue_Errors(t *testing.T) {
	v := cuecontext.New().CompileString(`quest: hunt: title: "no switch"`)

	_, err := LoadValue(v)
	errs := loadErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeRecord, errs[0].Code)
}

func TestNew_NilBundle(t *testing.T) {
	a := New(nil)
	_, ok := a.Skill("x")
	assert.False(t, ok)
	assert.Zero(t, a.Bundle().Len())
}

func TestLoadError_Error(t *testing.T) {
	tests := []struct {
		err  *LoadError
		want string
	}{
		{&LoadError{Code: "E001", Message: "boom"}, "E001: boom"},
		{&LoadError{Code: "E009", Message: "bad", File: "a.yaml"}, "a.yaml: E009: bad"},
		{&LoadError{Code: "E009", Message: "bad", File: "a.yaml", Line: 3}, "a.yaml:3: E009: bad"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}

	errs := LoadErrors{tests[0].err, tests[2].err}
	assert.Equal(t, "E001: boom\na.yaml:3: E009: bad", errs.Error())
}
