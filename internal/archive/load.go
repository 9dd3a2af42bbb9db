package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/roach88/runebound/internal/compiler"
	"github.com/roach88/runebound/internal/ir"
)

// Error code constants, shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No content files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDuplicate   = "E008" // Key defined twice
	ErrCodeYAML        = "E009" // YAML parse error
	ErrCodeRecord      = "E010" // Record failed to compile
)

// LoadError represents an error that occurred during content loading.
// CUE errors carry Pos; YAML errors carry File and Line.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
	File    string
	Line    int
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadErrors is every error found while loading a directory.
type LoadErrors []*LoadError

func (es LoadErrors) Error() string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Load reads every .cue and .yaml/.yml file under dir and compiles it into an
// Archive. All record errors are collected; when any occur the error is a
// LoadErrors and the archive is nil.
func Load(ctx context.Context, dir string) (*Archive, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, LoadErrors{{Code: ErrCodeNotFound, Message: fmt.Sprintf("content directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, LoadErrors{{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing content directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, LoadErrors{{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindContentFiles(dir)
	if err != nil {
		return nil, LoadErrors{{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, LoadErrors{{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no content files found in %s", dir)}}
	}

	// Slot 0 is the CUE instance, the rest follow yamlFiles order, so the
	// merge below is deterministic regardless of completion order.
	parts := make([]*part, len(yamlFiles)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	if len(cueFiles) > 0 {
		g.Go(func() error {
			parts[0] = loadCUE(dir)
			return gctx.Err()
		})
	}
	for i, path := range yamlFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := loadYAML(path)
			if err != nil {
				return err
			}
			parts[i+1] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading content from %s: %w", dir, err)
	}

	bundle := compiler.NewBundle()
	origin := make(map[string]string)
	var errs LoadErrors
	for _, p := range parts {
		if p == nil {
			continue
		}
		errs = append(errs, p.errs...)
		if p.bundle == nil {
			continue
		}
		for _, kind := range compiler.Kinds {
			for _, key := range p.bundle.Keys(kind) {
				id := string(kind) + "." + key
				if first, dup := origin[id]; dup {
					errs = append(errs, &LoadError{
						Code:    ErrCodeDuplicate,
						Message: fmt.Sprintf("%s %q already defined in %s", kind, key, first),
						File:    p.file,
					})
				} else {
					origin[id] = p.file
				}
			}
		}
		// Duplicates were reported above with their source file.
		_ = bundle.Merge(p.bundle)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	slog.Info("content loaded",
		"dir", dir,
		"cue_files", len(cueFiles),
		"yaml_files", len(yamlFiles),
		"effects", len(bundle.Effects),
		"skills", len(bundle.Skills),
		"plugins", len(bundle.Plugins),
		"items", len(bundle.Items),
		"quests", len(bundle.Quests),
		"entities", len(bundle.Entities),
	)
	return &Archive{bundle: bundle, files: len(cueFiles) + len(yamlFiles)}, nil
}

// part is the compiled content of one source: the CUE instance or a single
// YAML file.
type part struct {
	file   string
	bundle *compiler.Bundle
	errs   LoadErrors
}

// FindContentFiles walks dir and returns the sorted .cue and .yaml/.yml paths.
// CUE files are only taken from dir itself, since they build as one instance.
func FindContentFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "cue.mod") {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".cue":
			if filepath.Dir(path) == filepath.Clean(dir) {
				cueFiles = append(cueFiles, path)
			}
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
		return nil
	})
	slices.Sort(cueFiles)
	slices.Sort(yamlFiles)
	return cueFiles, yamlFiles, err
}

// loadCUE builds the CUE files of dir as one instance and compiles it.
func loadCUE(dir string) *part {
	p := &part{file: dir}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		p.errs = LoadErrors{{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
		return p
	}
	inst := instances[0]
	if inst.Err != nil {
		p.errs = LoadErrors{{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
		return p
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		p.errs = LoadErrors{{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
		return p
	}

	b, err := compiler.CompileBundle(value)
	if err != nil {
		p.errs = convertCompileError(err)
		return p
	}
	p.bundle = b
	return p
}

// convertCompileError converts compiler errors to LoadErrors with position info.
func convertCompileError(err error) LoadErrors {
	var list compiler.CompileErrors
	var single *compiler.CompileError
	switch {
	case errors.As(err, &list):
	case errors.As(err, &single):
		list = compiler.CompileErrors{single}
	default:
		return LoadErrors{{Code: ErrCodeGeneric, Message: err.Error()}}
	}

	out := make(LoadErrors, len(list))
	for i, ce := range list {
		out[i] = &LoadError{
			Code:    ErrCodeRecord,
			Message: fmt.Sprintf("%s: %s", ce.Field, ce.Message),
			Pos:     ce.Pos,
		}
	}
	return out
}

// loadYAML decodes one YAML content file. Parse failures and bad records are
// returned in the part; only I/O failures are errors.
func loadYAML(path string) (*part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p := &part{file: path, bundle: compiler.NewBundle()}
	fail := func(line int, code, msg string) {
		p.errs = append(p.errs, &LoadError{Code: code, Message: msg, File: path, Line: line})
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		fail(0, ErrCodeYAML, err.Error())
		return p, nil
	}
	if len(doc.Content) == 0 {
		return p, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		fail(root.Line, ErrCodeYAML, "content file must be a mapping of kinds")
		return p, nil
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		kindNode, recordsNode := root.Content[i], root.Content[i+1]
		if !compiler.IsKind(kindNode.Value) {
			fail(kindNode.Line, ErrCodeRecord, fmt.Sprintf("%s: unknown content kind", kindNode.Value))
			continue
		}
		kind := compiler.Kind(kindNode.Value)
		if recordsNode.Kind != yaml.MappingNode {
			fail(recordsNode.Line, ErrCodeRecord, fmt.Sprintf("%s: must be a mapping of records", kind))
			continue
		}

		for j := 0; j+1 < len(recordsNode.Content); j += 2 {
			keyNode, recNode := recordsNode.Content[j], recordsNode.Content[j+1]
			key := keyNode.Value

			var generic any
			if err := recNode.Decode(&generic); err != nil {
				fail(recNode.Line, ErrCodeYAML, fmt.Sprintf("%s.%s: %v", kind, key, err))
				continue
			}
			raw, err := json.Marshal(generic)
			if err != nil {
				fail(recNode.Line, ErrCodeYAML, fmt.Sprintf("%s.%s: %v", kind, key, err))
				continue
			}
			rec, err := compiler.DecodeRecord(kind, key, raw)
			if err != nil {
				var list ir.ValidationErrors
				if errors.As(err, &list) {
					for _, ve := range list {
						fail(recNode.Line, ErrCodeRecord, ve.Error())
					}
				} else {
					fail(recNode.Line, ErrCodeRecord, err.Error())
				}
				continue
			}
			// Round-trip through JSON so YAML and CUE sources hash alike.
			var hashable any
			_ = json.Unmarshal(raw, &hashable)
			if err := p.bundle.Add(kind, key, rec, hashable); err != nil {
				fail(keyNode.Line, ErrCodeDuplicate, err.Error())
			}
		}
	}
	return p, nil
}

// LoadValue compiles an in-memory CUE value into an Archive. Used by tests
// and by callers that build content programmatically.
func LoadValue(v cue.Value) (*Archive, error) {
	b, err := compiler.CompileBundle(v)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return New(b), nil
}
