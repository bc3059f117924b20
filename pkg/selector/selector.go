// Package selector resolves declarative file selection rules to concrete
// paths inside a build root.
//
// A rule is a JSON object {"type": ..., "arguments": {...}}. Parse turns it
// into one of a closed set of Selector variants; Resolve evaluates a variant
// against a filesystem and returns slash separated paths relative to that
// filesystem's root. Resolution is read only and idempotent.
package selector

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/registry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Type tags accepted in rule declarations.
const (
	TypeFile       = "file"
	TypePath       = "path"
	TypeIdentifier = "identifier"
	TypeBlock      = "block"
	TypeUnion      = "union"
)

// Env is what a selector resolves against.
type Env struct {
	// Fs is rooted at the build root.
	Fs afero.Fs
	// BlockFiles are path templates expanded by block selectors.
	BlockFiles []string
	Logger     zerolog.Logger
}

// Selector is implemented by FileList, PathGlob, Identifiers, Blocks, Union
// and Unknown.
type Selector interface {
	Type() string
	Resolve(env Env) ([]string, error)
}

type parseFunc func(args *value.Value) (Selector, error)

var parsers = registry.New[parseFunc]("selector type")

func init() {
	registry.MustRegister(parsers, TypeFile, parseFileList)
	registry.MustRegister(parsers, TypePath, parsePathGlob)
	registry.MustRegister(parsers, TypeIdentifier, parseIdentifiers)
	registry.MustRegister(parsers, TypeBlock, parseBlocks)
	registry.MustRegister(parsers, TypeUnion, parseUnion)
}

// Types lists the recognised selector types.
func Types() []string { return parsers.Names() }

// Parse builds a Selector from a rule declaration. An unrecognised type is
// not an error: it yields an Unknown selector that resolves to nothing.
func Parse(rule *value.Value) (Selector, error) {
	if !rule.IsObject() {
		return nil, errors.New(errors.ErrSelectorInvalid, "selector must be an object")
	}
	typeV, _ := rule.Get("type")
	typ, ok := typeV.AsString()
	if !ok {
		return nil, errors.New(errors.ErrSelectorInvalid, "selector has no type")
	}
	args, ok := rule.Get("arguments")
	if !ok {
		args = value.NewObject()
	}

	parse, ok := parsers.Lookup(typ)
	if !ok {
		return Unknown{Name: typ}, nil
	}
	sel, err := parse(args)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSelectorInvalid, "invalid %s selector", typ).
			WithDetail("type", typ)
	}
	return sel, nil
}

// Unknown stands in for a rule whose type is not recognised.
type Unknown struct {
	Name string
}

func (u Unknown) Type() string { return u.Name }

func (u Unknown) Resolve(env Env) ([]string, error) {
	env.Logger.Error().Str("selector", u.Name).Msg("Incorrect file selector type")
	return nil, nil
}

// dedupe keeps the first occurrence of every path.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
