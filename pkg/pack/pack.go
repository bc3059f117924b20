// Package pack holds the declarations a build is driven by: the pack, its
// configs and its run options.
//
// A pack declaration is a JSON, TOML or YAML file in the configs directory.
// Everything loaded from it is read only for the rest of the invocation.
package pack

import (
	"fmt"
	"strings"
)

// Pack is a loaded pack declaration.
type Pack struct {
	// Name is the declaration file name without extension.
	Name string
	// File is the path the declaration was read from.
	File string
	// Directory is the source directory template, e.g. "#packdir/Stay True".
	Directory string
	// NameScheme names build outputs, e.g. "#name v#version - #mcversion".
	NameScheme  string
	Description string
	Configs     []Config
	// InvalidConfigs holds configs that failed to decode. They are left
	// out of Configs so the rest of the pack stays buildable.
	InvalidConfigs []error
	RunOptions     []RunOption
	// BlockFiles are the templates block selectors expand. Empty means the
	// settings default.
	BlockFiles []string
}

// Config is one build variant of a pack.
type Config struct {
	Name       string
	MCVersions []string
	Textures   Textures
	// PackFormat is the explicit pack_format, 0 when it should be derived
	// from the primary version.
	PackFormat         int
	MinifyJSON         bool
	DeleteEmptyFolders bool
	// Patches are patch file names applied in order.
	Patches      []string
	Dependencies []Dependency
}

// Textures controls texture stripping.
type Textures struct {
	Delete bool     `mapstructure:"delete"`
	Ignore []string `mapstructure:"ignore"`
}

// Dependency is a mod the config is built against. Dependencies are
// recorded and reported; fetching them is left to other tools.
type Dependency struct {
	Name    string `mapstructure:"name"`
	Project int    `mapstructure:"project"`
	File    int    `mapstructure:"file"`
}

// PrimaryVersion is the first Minecraft version, or "" when none is set.
func (c Config) PrimaryVersion() string {
	if len(c.MCVersions) == 0 {
		return ""
	}
	return c.MCVersions[0]
}

// ResolvedPackFormat returns the explicit pack format, or the one derived
// from the primary version. ok is false when neither is known.
func (c Config) ResolvedPackFormat() (int, bool) {
	if c.PackFormat > 0 {
		return c.PackFormat, true
	}
	return PackFormatFor(c.PrimaryVersion())
}

// RunOption is a named build profile.
type RunOption struct {
	Name               string
	Configs            Selection
	MinifyJSON         bool
	DeleteEmptyFolders bool
	ZipPack            bool
	// OutDir overrides where builds are placed. Empty keeps the temp dir.
	OutDir string
	// Version is the version label. Empty means ask for one.
	Version  string
	Rerun    bool
	Validate bool
}

// Selection picks configs: every config, one chosen interactively, or a
// list of names. The zero Selection picks every config.
type Selection struct {
	All         bool
	Interactive bool
	Names       []string
}

// ParseSelection reads "*", "?", a comma separated list, or a list.
func ParseSelection(raw interface{}) (Selection, error) {
	switch t := raw.(type) {
	case nil:
		return Selection{All: true}, nil
	case string:
		switch strings.TrimSpace(t) {
		case "*", "":
			return Selection{All: true}, nil
		case "?":
			return Selection{Interactive: true}, nil
		}
		var names []string
		for _, n := range strings.Split(t, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return Selection{Names: names}, nil
	case []string:
		return Selection{Names: t}, nil
	case []interface{}:
		names := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Selection{}, fmt.Errorf("config selection entries must be strings, got %T", item)
			}
			names = append(names, s)
		}
		return Selection{Names: names}, nil
	default:
		return Selection{}, fmt.Errorf("config selection must be \"*\", \"?\" or a list, got %T", raw)
	}
}

func (s Selection) String() string {
	switch {
	case s.All, s.IsZero():
		return "*"
	case s.Interactive:
		return "?"
	default:
		return strings.Join(s.Names, ", ")
	}
}

// IsZero reports whether s was left unset.
func (s Selection) IsZero() bool {
	return !s.All && !s.Interactive && s.Names == nil
}

// Config returns the config called name.
func (p *Pack) Config(name string) (Config, bool) {
	for _, c := range p.Configs {
		if c.Name == name {
			return c, true
		}
	}
	return Config{}, false
}

// ConfigNames lists config names in declaration order.
func (p *Pack) ConfigNames() []string {
	names := make([]string, len(p.Configs))
	for i, c := range p.Configs {
		names[i] = c.Name
	}
	return names
}

// RunOption returns the run option called name.
func (p *Pack) RunOption(name string) (RunOption, bool) {
	for _, r := range p.RunOptions {
		if r.Name == name {
			return r, true
		}
	}
	return RunOption{}, false
}

// RunOptionNames lists run option names in order.
func (p *Pack) RunOptionNames() []string {
	names := make([]string, len(p.RunOptions))
	for i, r := range p.RunOptions {
		names[i] = r.Name
	}
	return names
}

// WithRunOptions returns a copy of p whose run options are defaults
// followed by the pack's own. A pack run option replaces a default with the
// same name in place.
func (p *Pack) WithRunOptions(defaults []RunOption) *Pack {
	out := *p
	out.RunOptions = nil
	own := make(map[string]RunOption, len(p.RunOptions))
	for _, r := range p.RunOptions {
		own[r.Name] = r
	}
	seen := make(map[string]bool)
	for _, d := range defaults {
		if r, ok := own[d.Name]; ok {
			out.RunOptions = append(out.RunOptions, r)
		} else {
			out.RunOptions = append(out.RunOptions, d)
		}
		seen[d.Name] = true
	}
	for _, r := range p.RunOptions {
		if !seen[r.Name] {
			out.RunOptions = append(out.RunOptions, r)
		}
	}
	return &out
}
