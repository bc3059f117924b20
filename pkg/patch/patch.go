// Package patch implements the patch operations applied to a build root and
// the patch files that group them.
//
// A patch declaration is {"type": <tag>, "patch": <arguments>}. Parse maps
// the tag to one of a closed set of variants; Apply runs it against an Env
// whose Build filesystem is rooted at a single build's private directory.
package patch

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/registry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/selector"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Patch tags.
const (
	TypeReplace   = "replace"
	TypeRemove    = "remove"
	TypeMixinJSON = "mixin_json"
	TypeModifier  = "modifier"
	TypeMulti     = "multi"
)

// Env is everything a patch may touch.
type Env struct {
	Ctx context.Context
	// Build is rooted at the build root. Patches never write anywhere else.
	Build afero.Fs
	// Source is where replace directories are read from, normally the OS
	// filesystem. It is only ever read.
	Source afero.Fs
	// PatchDir is the directory patch files live in. Relative replace
	// directories resolve against it.
	PatchDir string
	// Expand resolves directory keywords such as #packdir. Nil leaves
	// directories unchanged.
	Expand      func(string) string
	BlockFiles  []string
	CopyWorkers int
	Logger      zerolog.Logger
}

func (e Env) context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func (e Env) selectorEnv() selector.Env {
	return selector.Env{Fs: e.Build, BlockFiles: e.BlockFiles, Logger: e.Logger}
}

func (e Env) sourceDir(dir string) string {
	if e.Expand != nil {
		dir = e.Expand(dir)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.PatchDir, dir)
	}
	return filepath.Clean(dir)
}

// Patch is one operation on a build root.
type Patch interface {
	Type() string
	Apply(env Env) error
}

type parseFunc func(args *value.Value) (Patch, error)

var parsers = registry.New[parseFunc]("patch type")

func init() {
	registry.MustRegister(parsers, TypeReplace, parseReplace)
	registry.MustRegister(parsers, TypeRemove, parseRemove)
	registry.MustRegister(parsers, TypeMixinJSON, parseMixinJSON)
	registry.MustRegister(parsers, TypeModifier, parseModifier)
	registry.MustRegister(parsers, TypeMulti, parseMulti)
}

// Types lists the recognised patch types in declaration order.
func Types() []string { return parsers.Names() }

// Parse builds a Patch from its declaration. Unknown tags produce an
// Unknown patch, which only logs when applied.
func Parse(decl *value.Value) (Patch, error) {
	if !decl.IsObject() {
		return nil, errors.New(errors.ErrPatchInvalid, "patch must be an object")
	}
	typeV, _ := decl.Get("type")
	tag, ok := typeV.AsString()
	if !ok {
		return nil, errors.New(errors.ErrPatchInvalid, "patch has no type")
	}
	args, ok := decl.Get("patch")
	if !ok {
		args = value.NewObject()
	}

	parse, ok := parsers.Lookup(tag)
	if !ok {
		return Unknown{Name: tag}, nil
	}
	p, err := parse(args)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrPatchInvalid) || errors.IsErrorCode(err, errors.ErrSelectorInvalid) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrPatchInvalid, "invalid %s patch", tag).WithDetail("type", tag)
	}
	return p, nil
}

// Unknown is a patch whose tag is not recognised.
type Unknown struct {
	Name string
}

func (u Unknown) Type() string { return u.Name }

func (u Unknown) Apply(env Env) error {
	env.Logger.Error().Str("type", u.Name).Msg("Incorrect patch type")
	return nil
}

// Multi runs nested patches in order against the same build root.
type Multi struct {
	Patches []Patch
}

func (Multi) Type() string { return TypeMulti }

func (m Multi) Apply(env Env) error {
	for _, p := range m.Patches {
		if err := p.Apply(env); err != nil {
			return err
		}
	}
	return nil
}

func parseMulti(args *value.Value) (Patch, error) {
	list := args
	if args.IsObject() {
		list, _ = args.Get("patches")
	}
	if !list.IsArray() {
		return nil, errors.New(errors.ErrPatchInvalid, "multi patch needs a list of patches")
	}
	m := Multi{}
	for _, decl := range list.Items() {
		p, err := Parse(decl)
		if err != nil {
			return nil, err
		}
		m.Patches = append(m.Patches, p)
	}
	return m, nil
}
