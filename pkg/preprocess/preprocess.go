// Package preprocess expands geometry descriptors into derived models.
//
// A descriptor is a file ending in .rpp.json anywhere under
// assets/<namespace>/models/:
//
//	{
//	  "identifier": "stay_true:block/slab_top",
//	  "modify": {
//	    "model": "minecraft:block/slab",
//	    "type": "translate",
//	    "arguments": {"y": 8}
//	  }
//	}
//
// The base model is loaded, inherits its parent's elements when it has none,
// is modified and saved as identifier. Descriptors never reach the output.
package preprocess

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/geometry"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/selector"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Pattern matches descriptor files relative to the build root.
const Pattern = "assets/*/models/**/*.rpp.json"

// Modification kinds.
const (
	KindTranslate = "translate"
	KindFlip      = "flip"
)

// maxParentDepth bounds parent chains, which may be cyclic in broken packs.
const maxParentDepth = 32

// Descriptor is one parsed .rpp.json file.
type Descriptor struct {
	Identifier string `mapstructure:"identifier"`
	Modify     struct {
		Model     string       `mapstructure:"model"`
		Type      string       `mapstructure:"type"`
		Arguments *value.Value `mapstructure:"-"`
	} `mapstructure:"modify"`
}

// ParseDescriptor decodes a descriptor file.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	root, err := value.Parse(data)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := root.Bind(&d); err != nil {
		return nil, err
	}
	if d.Identifier == "" {
		return nil, fmt.Errorf("descriptor has no identifier")
	}
	if d.Modify.Model == "" {
		return nil, fmt.Errorf("descriptor has no modify.model")
	}
	modify, _ := root.Get("modify")
	if args, ok := modify.Get("arguments"); ok {
		d.Modify.Arguments = args
	} else {
		d.Modify.Arguments = value.NewObject()
	}
	return &d, nil
}

// Run processes every descriptor under fsys and returns how many models it
// wrote. Problems with one descriptor are logged and do not stop the rest.
func Run(fsys afero.Fs, logger zerolog.Logger) (int, error) {
	matches, err := doublestar.Glob(afero.NewIOFS(fsys), Pattern)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrFileAccess, "searching for model descriptors")
	}

	written := 0
	for _, file := range matches {
		log := logger.With().Str("descriptor", file).Logger()
		ok, err := process(fsys, file, log)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
		if err := fsys.Remove(file); err != nil {
			return written, errors.Wrap(err, errors.ErrFileWrite, "removing model descriptor").
				WithDetail("path", file)
		}
	}
	if written > 0 {
		logger.Debug().Int("models", written).Msg("Generated models")
	}
	return written, nil
}

func process(fsys afero.Fs, file string, logger zerolog.Logger) (bool, error) {
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrFileAccess, "reading model descriptor").
			WithDetail("path", file)
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid model descriptor")
		return false, nil
	}

	model, err := loadModel(fsys, d.Modify.Model, 0)
	if err != nil {
		logger.Warn().Err(err).Str("model", d.Modify.Model).Msg("Base model couldn't be loaded")
		return false, nil
	}

	switch d.Modify.Type {
	case KindTranslate:
		var args struct {
			X float64 `mapstructure:"x"`
			Y float64 `mapstructure:"y"`
			Z float64 `mapstructure:"z"`
		}
		if err := d.Modify.Arguments.Bind(&args); err != nil {
			logger.Warn().Err(err).Msg("Invalid translate arguments")
			return false, nil
		}
		geometry.Translate(model, geometry.Vec3{args.X, args.Y, args.Z})
	case KindFlip:
		var args struct {
			Axes   []string  `mapstructure:"axes"`
			Origin []float64 `mapstructure:"origin"`
		}
		if err := d.Modify.Arguments.Bind(&args); err != nil {
			logger.Warn().Err(err).Msg("Invalid flip arguments")
			return false, nil
		}
		origin := geometry.Vec3{8, 8, 8}
		if len(args.Origin) == 3 {
			copy(origin[:], args.Origin)
		}
		var axes []geometry.Axis
		for _, name := range args.Axes {
			if a, ok := geometry.ParseAxis(name); ok {
				axes = append(axes, a)
			}
		}
		geometry.Flip(model, axes, origin)
	default:
		logger.Warn().Str("type", d.Modify.Type).Msg("Incorrect modification type")
		return false, nil
	}

	out := selector.IdentifierPath(d.Identifier, "models", "json")
	if err := fsys.MkdirAll(path.Dir(out), 0755); err != nil {
		return false, errors.Wrap(err, errors.ErrDirCreate, "creating model directory").
			WithDetail("path", out)
	}
	if err := afero.WriteFile(fsys, out, value.Indent(savedModel(model)), 0644); err != nil {
		return false, errors.Wrap(err, errors.ErrFileWrite, "writing generated model").
			WithDetail("path", out)
	}
	logger.Trace().Str("model", d.Identifier).Msg("Generated model")
	return true, nil
}

// loadModel reads a model and fills in elements from its parent chain when
// it declares none.
func loadModel(fsys afero.Fs, id string, depth int) (*value.Value, error) {
	if depth > maxParentDepth {
		return nil, fmt.Errorf("parent chain of %s is too deep", id)
	}
	p := selector.IdentifierPath(id, "models", "json")
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	model, err := value.Parse(data)
	if err != nil {
		return nil, err
	}
	if !model.IsObject() {
		return nil, fmt.Errorf("model %s is not an object", id)
	}
	if len(geometry.Elements(model)) > 0 {
		return model, nil
	}
	parentV, ok := model.Get("parent")
	if !ok {
		return model, nil
	}
	parentID, ok := parentV.AsString()
	if !ok {
		return model, nil
	}
	parent, err := loadModel(fsys, parentID, depth+1)
	if err != nil {
		// builtin parents such as block/block only exist in the game jar
		return model, nil
	}
	if els, ok := parent.Get("elements"); ok {
		model.Set("elements", els.Clone())
	}
	return model, nil
}

func savedModel(model *value.Value) *value.Value {
	out := value.NewObject()
	for _, key := range []string{"parent", "textures", "elements", "display"} {
		v, ok := model.Get(key)
		if !ok {
			continue
		}
		if key == "elements" && v.Len() == 0 {
			continue
		}
		out.Set(key, v)
	}
	return out
}
