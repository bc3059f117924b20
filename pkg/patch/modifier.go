package patch

import (
	"fmt"
	"math/rand"

	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/geometry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/registry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/selector"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Modifier kinds accepted by the modifier patch.
const (
	ModifierMargin    = "model_margin"
	ModifierFlip      = "model_flip"
	ModifierTranslate = "model_translate"
)

// ModelMargin inflates the listed models with geometry.Margin. Every
// application seeds its own generator from Seed, so the output only depends
// on the declaration.
type ModelMargin struct {
	Models []string
	geometry.MarginOptions
	Seed int64
}

func (ModelMargin) Type() string { return TypeModifier + "/" + ModifierMargin }

func (m ModelMargin) Apply(env Env) error {
	rng := rand.New(rand.NewSource(m.Seed))
	return forEachModel(env, m.Models, func(id string, model *value.Value) (bool, error) {
		if _, err := geometry.Margin(model, m.MarginOptions, rng); err != nil {
			env.Logger.Error().Str("model", id).Msg("File lacks elements")
			return false, nil
		}
		return true, nil
	})
}

// ModelFlip mirrors the listed models about Origin on Axes.
type ModelFlip struct {
	Models []string
	Axes   []geometry.Axis
	Origin geometry.Vec3
}

func (ModelFlip) Type() string { return TypeModifier + "/" + ModifierFlip }

func (m ModelFlip) Apply(env Env) error {
	return forEachModel(env, m.Models, func(_ string, model *value.Value) (bool, error) {
		geometry.Flip(model, m.Axes, m.Origin)
		return true, nil
	})
}

// ModelTranslate moves the listed models by Offset.
type ModelTranslate struct {
	Models []string
	Offset geometry.Vec3
}

func (ModelTranslate) Type() string { return TypeModifier + "/" + ModifierTranslate }

func (m ModelTranslate) Apply(env Env) error {
	return forEachModel(env, m.Models, func(_ string, model *value.Value) (bool, error) {
		geometry.Translate(model, m.Offset)
		return true, nil
	})
}

// forEachModel loads each model, hands it to fn and writes it back when fn
// reports a change. Missing models are skipped with a warning.
func forEachModel(env Env, models []string, fn func(id string, model *value.Value) (bool, error)) error {
	for _, id := range models {
		p := selector.IdentifierPath(id, "models", "json")
		data, err := afero.ReadFile(env.Build, p)
		if err != nil {
			env.Logger.Warn().Str("model", id).Str("file", p).Msg("File couldn't be found")
			continue
		}
		model, err := value.Parse(data)
		if err != nil {
			return errors.Wrapf(err, errors.ErrJSONParse, "parsing model %s", id).WithDetail("path", p)
		}
		changed, err := fn(id, model)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if err := afero.WriteFile(env.Build, p, value.Indent(model), 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "writing model %s", id).WithDetail("path", p)
		}
	}
	return nil
}

type modifierFunc func(models []string, params *value.Value) (Patch, error)

var modifiers = registry.New[modifierFunc]("modifier kind")

func init() {
	registry.MustRegister(modifiers, ModifierMargin, parseMargin)
	registry.MustRegister(modifiers, ModifierFlip, parseFlip)
	registry.MustRegister(modifiers, ModifierTranslate, parseTranslate)
}

// Modifiers lists the recognised modifier kinds.
func Modifiers() []string { return modifiers.Names() }

func parseModifier(args *value.Value) (Patch, error) {
	typeV, _ := args.Get("type")
	kind, _ := typeV.AsString()
	params, ok := args.Get("arguments")
	if !ok {
		params = value.NewObject()
	}

	var common struct {
		Models []string `mapstructure:"models"`
	}
	if err := params.Bind(&common); err != nil {
		return nil, err
	}

	parse, ok := modifiers.Lookup(kind)
	if !ok {
		return Unknown{Name: TypeModifier + "/" + kind}, nil
	}
	return parse(common.Models, params)
}

func parseMargin(models []string, params *value.Value) (Patch, error) {
	var raw struct {
		Offset       float64 `mapstructure:"offset"`
		RandomOffset float64 `mapstructure:"random_offset"`
		Seed         int64   `mapstructure:"seed"`
	}
	if err := params.Bind(&raw); err != nil {
		return nil, err
	}
	return ModelMargin{
		Models:        models,
		MarginOptions: geometry.MarginOptions{Offset: raw.Offset, RandomOffset: raw.RandomOffset},
		Seed:          raw.Seed,
	}, nil
}

func parseFlip(models []string, params *value.Value) (Patch, error) {
	var raw struct {
		Axes   []string  `mapstructure:"axes"`
		Origin []float64 `mapstructure:"origin"`
	}
	if err := params.Bind(&raw); err != nil {
		return nil, err
	}
	flip := ModelFlip{Models: models, Origin: geometry.Vec3{8, 8, 8}}
	for _, name := range raw.Axes {
		a, ok := geometry.ParseAxis(name)
		if !ok {
			return nil, fmt.Errorf("unknown axis %q", name)
		}
		flip.Axes = append(flip.Axes, a)
	}
	if len(flip.Axes) == 0 {
		return nil, fmt.Errorf("model_flip needs at least one axis")
	}
	if raw.Origin != nil {
		if len(raw.Origin) != 3 {
			return nil, fmt.Errorf("origin needs three coordinates")
		}
		copy(flip.Origin[:], raw.Origin)
	}
	return flip, nil
}

func parseTranslate(models []string, params *value.Value) (Patch, error) {
	var raw struct {
		X float64 `mapstructure:"x"`
		Y float64 `mapstructure:"y"`
		Z float64 `mapstructure:"z"`
	}
	if err := params.Bind(&raw); err != nil {
		return nil, err
	}
	return ModelTranslate{Models: models, Offset: geometry.Vec3{raw.X, raw.Y, raw.Z}}, nil
}
