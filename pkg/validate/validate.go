// Package validate checks a built pack's assets against an embedded CUE
// schema. Findings are warnings: they are reported and logged, never fatal.
package validate

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/geometry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

//go:embed schema.cue
var schema []byte

// MissingTexture is the texture reference the game renders as the
// purple and black checkerboard.
const MissingTexture = "#missing"

// Kind is an asset family with its own schema definition.
type Kind struct {
	Name       string
	Pattern    string
	Definition string
}

// Kinds are checked in this order.
var Kinds = []Kind{
	{Name: "blockstate", Pattern: "assets/*/blockstates/**/*.json", Definition: "#Blockstate"},
	{Name: "model", Pattern: "assets/*/models/**/*.json", Definition: "#Model"},
	{Name: "sounds", Pattern: "assets/*/sounds.json", Definition: "#Sounds"},
}

// Finding is one problem in one file.
type Finding struct {
	File    string
	Kind    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.File, f.Message)
}

// Report summarises a validation run.
type Report struct {
	Files    int
	Findings []Finding
}

// OK reports whether nothing was found.
func (r Report) OK() bool { return len(r.Findings) == 0 }

// Validator owns a CUE context, which is not safe for concurrent use. Use
// one per build.
type Validator struct {
	ctx  *cue.Context
	defs map[string]cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	compiled := ctx.CompileBytes(schema, cue.Filename("schema.cue"))
	if compiled.Err() != nil {
		return nil, errors.Wrap(compiled.Err(), errors.ErrInternal, "failed to compile asset schema")
	}
	v := &Validator{ctx: ctx, defs: make(map[string]cue.Value)}
	for _, k := range Kinds {
		def := compiled.LookupPath(cue.ParsePath(k.Definition))
		if def.Err() != nil {
			return nil, errors.Wrapf(def.Err(), errors.ErrInternal, "schema definition %s not found", k.Definition)
		}
		v.defs[k.Name] = def
	}
	return v, nil
}

// Validate checks every known asset under fsys.
func (v *Validator) Validate(fsys afero.Fs, logger zerolog.Logger) (Report, error) {
	var report Report
	iofs := afero.NewIOFS(fsys)

	for _, k := range Kinds {
		files, err := doublestar.Glob(iofs, k.Pattern)
		if err != nil {
			return report, errors.Wrap(err, errors.ErrFileAccess, "searching for assets").
				WithDetail("pattern", k.Pattern)
		}
		logger.Debug().Str("kind", k.Name).Int("files", len(files)).Msg("Validating assets")
		for _, file := range files {
			data, err := afero.ReadFile(fsys, file)
			if err != nil {
				return report, errors.Wrap(err, errors.ErrFileAccess, "reading asset").
					WithDetail("path", file)
			}
			report.Files++
			for _, msg := range v.Check(k.Name, file, data) {
				f := Finding{File: file, Kind: k.Name, Message: msg}
				logger.Warn().Str("file", file).Str("kind", k.Name).Msg(msg)
				report.Findings = append(report.Findings, f)
			}
		}
	}
	return report, nil
}

// Check validates one file's content as kind and returns its problems.
func (v *Validator) Check(kind, file string, data []byte) []string {
	def, ok := v.defs[kind]
	if !ok {
		return []string{fmt.Sprintf("unknown asset kind %q", kind)}
	}

	// JSON is valid CUE, so the data compiles directly.
	asset := v.ctx.CompileBytes(data, cue.Filename(file))
	if asset.Err() != nil {
		return []string{"not valid JSON: " + firstLine(asset.Err())}
	}
	if err := def.Unify(asset).Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, "didn't match schema: "+formatError(e))
		}
		return msgs
	}

	if kind == "model" {
		if model, err := value.Parse(data); err == nil && hasMissingTexture(model) {
			return []string{"Missing texture"}
		}
	}
	return nil
}

func hasMissingTexture(model *value.Value) bool {
	for _, el := range geometry.Elements(model) {
		faces, _ := el.Get("faces")
		for _, key := range faces.Keys() {
			face, _ := faces.Get(key)
			tex, _ := face.Get("texture")
			if s, ok := tex.AsString(); ok && s == MissingTexture {
				return true
			}
		}
	}
	return false
}

func formatError(e cueerrors.Error) string {
	path := strings.Join(cueerrors.Path(e), ".")
	msg := firstLine(e)
	if path != "" && !strings.HasPrefix(msg, path) {
		return path + ": " + msg
	}
	return msg
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
