package patch

import (
	"fmt"
	"regexp"

	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/selector"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// MixinJSON edits JSON files in place.
type MixinJSON struct {
	Mixins []Mixin
}

// Mixin picks files with Files, a location inside each with Location, and
// runs Modifiers there in order.
type Mixin struct {
	Files     selector.Selector
	Location  value.Path
	Modifiers []Modifier
	// LocationType is set when the location selector type was not
	// recognised; the mixin is then skipped.
	LocationType string
}

// Modifier is one edit at a mixin location.
type Modifier interface {
	Modify(root *value.Value, at value.Path) (*value.Value, error)
}

// SetModifier writes Data at the location.
type SetModifier struct {
	Data *value.Value
	value.SetOptions
}

func (m SetModifier) Modify(root *value.Value, at value.Path) (*value.Value, error) {
	return value.Set(root, at, m.Data, m.SetOptions), nil
}

// ReplaceModifier runs a regular expression substitution on string leaves.
type ReplaceModifier struct {
	Select      string `mapstructure:"select"`
	Replacement string `mapstructure:"replacement"`
}

func (m ReplaceModifier) Modify(root *value.Value, at value.Path) (*value.Value, error) {
	if _, err := value.ReplaceText(root, at, m.Select, m.Replacement); err != nil {
		return nil, err
	}
	return root, nil
}

// unknownModifier is kept so the mixin can log it at apply time.
type unknownModifier struct {
	name string
}

func (m unknownModifier) Modify(root *value.Value, _ value.Path) (*value.Value, error) {
	return root, nil
}

func (MixinJSON) Type() string { return TypeMixinJSON }

func (m MixinJSON) Apply(env Env) error {
	for i, mixin := range m.Mixins {
		if err := mixin.apply(env); err != nil {
			return err
		}
		env.Logger.Debug().Msgf("Completed mixin [%d/%d]", i+1, len(m.Mixins))
	}
	return nil
}

func (m Mixin) apply(env Env) error {
	if m.LocationType != "" {
		env.Logger.Error().Str("selector", m.LocationType).Msg("Incorrect selector type")
		return nil
	}
	for _, mod := range m.Modifiers {
		if u, ok := mod.(unknownModifier); ok {
			env.Logger.Error().Str("modifier", u.name).Msg("Incorrect modifier type")
		}
	}

	files, err := m.Files.Resolve(env.selectorEnv())
	if err != nil {
		return errors.Wrap(err, errors.ErrPatchApply, "resolving mixin files")
	}

	for _, file := range files {
		data, err := afero.ReadFile(env.Build, file)
		if err != nil {
			env.Logger.Warn().Str("file", file).Msg("File couldn't be found")
			continue
		}
		root, err := value.Parse(data)
		if err != nil {
			return errors.Wrapf(err, errors.ErrJSONParse, "parsing %s", file).WithDetail("path", file)
		}
		for _, mod := range m.Modifiers {
			root, err = mod.Modify(root, m.Location)
			if err != nil {
				return errors.Wrapf(err, errors.ErrPatchApply, "modifying %s", file).WithDetail("path", file)
			}
		}
		if err := afero.WriteFile(env.Build, file, value.Indent(root), 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", file).WithDetail("path", file)
		}
	}
	return nil
}

func parseMixinJSON(args *value.Value) (Patch, error) {
	list, ok := args.Get("mixins")
	if !ok || !list.IsArray() {
		return nil, errors.New(errors.ErrPatchInvalid, "mixin_json patch needs a list of mixins")
	}
	out := MixinJSON{}
	for i, decl := range list.Items() {
		mixin, err := parseMixin(decl)
		if err != nil {
			return nil, fmt.Errorf("mixin %d: %w", i+1, err)
		}
		out.Mixins = append(out.Mixins, mixin)
	}
	return out, nil
}

func parseMixin(decl *value.Value) (Mixin, error) {
	var m Mixin

	rule, ok := decl.Get("file_selector")
	if !ok {
		return m, fmt.Errorf("missing file_selector")
	}
	sel, err := selector.Parse(rule)
	if err != nil {
		return m, err
	}
	m.Files = sel

	loc, ok := decl.Get("selector")
	if !ok {
		return m, fmt.Errorf("missing selector")
	}
	var locDecl struct {
		Type      string `mapstructure:"type"`
		Arguments struct {
			Location string `mapstructure:"location"`
		} `mapstructure:"arguments"`
	}
	if err := loc.Bind(&locDecl); err != nil {
		return m, err
	}
	if locDecl.Type == "path" {
		m.Location = value.ParsePath(locDecl.Arguments.Location)
	} else {
		m.LocationType = locDecl.Type
		if m.LocationType == "" {
			m.LocationType = "<none>"
		}
	}

	mods, _ := decl.Get("modifiers")
	for _, modDecl := range mods.Items() {
		mod, err := parseModifierDecl(modDecl)
		if err != nil {
			return m, err
		}
		m.Modifiers = append(m.Modifiers, mod)
	}
	return m, nil
}

func parseModifierDecl(decl *value.Value) (Modifier, error) {
	typeV, _ := decl.Get("type")
	typ, _ := typeV.AsString()
	args, ok := decl.Get("arguments")
	if !ok {
		args = value.NewObject()
	}

	switch typ {
	case "set":
		data, ok := args.Get("data")
		if !ok {
			return nil, fmt.Errorf("set modifier needs data")
		}
		opts := struct {
			Merge bool `mapstructure:"merge"`
			Add   bool `mapstructure:"add"`
		}{Add: true}
		if err := args.Bind(&opts); err != nil {
			return nil, err
		}
		return SetModifier{Data: data, SetOptions: value.SetOptions{Merge: opts.Merge, CreateMissing: opts.Add}}, nil
	case "replace":
		var r ReplaceModifier
		if err := args.Bind(&r); err != nil {
			return nil, err
		}
		if r.Select == "" {
			return nil, fmt.Errorf("replace modifier needs select")
		}
		if _, err := regexp.Compile(r.Select); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return unknownModifier{name: typ}, nil
	}
}
