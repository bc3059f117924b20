package pack

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// DefaultNameScheme is used when a declaration has no name_scheme.
const DefaultNameScheme = "#name v#version - #mcversion"

// Extensions lists the declaration formats Load understands.
var Extensions = []string{".json", ".toml", ".yaml", ".yml"}

type packDecl struct {
	Directory   string   `mapstructure:"directory"`
	NameScheme  string   `mapstructure:"name_scheme"`
	Description string   `mapstructure:"description"`
	BlockFiles  []string `mapstructure:"block_files"`
}

type configDecl struct {
	MCVersions         []string     `mapstructure:"mc_versions"`
	MCVersion          string       `mapstructure:"mc_version"`
	Textures           Textures     `mapstructure:"textures"`
	PackFormat         int          `mapstructure:"pack_format"`
	MinifyJSON         bool         `mapstructure:"minify_json"`
	DeleteEmptyFolders bool         `mapstructure:"delete_empty_folders"`
	Patches            []string     `mapstructure:"patches"`
	Dependencies       []Dependency `mapstructure:"dependencies"`
}

type runOptionDecl struct {
	Configs            interface{} `mapstructure:"configs"`
	MinifyJSON         bool        `mapstructure:"minify_json"`
	DeleteEmptyFolders bool        `mapstructure:"delete_empty_folders"`
	ZipPack            bool        `mapstructure:"zip_pack"`
	OutDir             string      `mapstructure:"out_dir"`
	Version            string      `mapstructure:"version"`
	Rerun              bool        `mapstructure:"rerun"`
	Validate           bool        `mapstructure:"validate"`
}

// Load reads the pack declaration at file.
func Load(fsys afero.Fs, file string) (*Pack, error) {
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPackNotFound, "cannot read pack declaration").
			WithDetail("path", file)
	}
	ext := strings.ToLower(filepath.Ext(file))
	p, err := Parse(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)), ext, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPackInvalid, "invalid pack declaration").
			WithDetail("path", file)
	}
	p.File = file
	if len(p.InvalidConfigs) > 0 {
		logger := logging.GetLogger("pack.load")
		for _, cerr := range p.InvalidConfigs {
			logger.Error().Err(cerr).
				Str("pack", p.Name).
				Interface("config", errors.GetErrorDetails(cerr)["config"]).
				Msg("Skipping invalid config")
		}
	}
	return p, nil
}

// Parse decodes a declaration whose format is given by ext.
func Parse(name, ext string, data []byte) (*Pack, error) {
	root, err := decode(ext, data)
	if err != nil {
		return nil, err
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("pack declaration must be an object")
	}

	var decl packDecl
	if err := root.Bind(&decl); err != nil {
		return nil, err
	}
	if decl.Directory == "" {
		return nil, fmt.Errorf("pack declaration has no directory")
	}
	if decl.NameScheme == "" {
		decl.NameScheme = DefaultNameScheme
	}

	p := &Pack{
		Name:        name,
		Directory:   decl.Directory,
		NameScheme:  decl.NameScheme,
		Description: decl.Description,
		BlockFiles:  decl.BlockFiles,
	}

	configs, _ := root.Get("configs")
	for _, key := range configs.Keys() {
		c, err := ParseConfig(key, mustGet(configs, key))
		if err != nil {
			p.InvalidConfigs = append(p.InvalidConfigs,
				errors.Wrap(err, errors.ErrConfigInvalid, "invalid config").WithDetail("config", key))
			continue
		}
		p.Configs = append(p.Configs, c)
	}

	runOptions, _ := root.Get("run_options")
	for _, key := range runOptions.Keys() {
		r, err := ParseRunOption(key, mustGet(runOptions, key))
		if err != nil {
			return nil, err
		}
		p.RunOptions = append(p.RunOptions, r)
	}
	return p, nil
}

// ParseConfig decodes one entry of a declaration's configs table.
func ParseConfig(name string, decl *value.Value) (Config, error) {
	var d configDecl
	if err := decl.Bind(&d); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", name, err)
	}
	versions := d.MCVersions
	if len(versions) == 0 && d.MCVersion != "" {
		versions = []string{d.MCVersion}
	}
	return Config{
		Name:               name,
		MCVersions:         versions,
		Textures:           d.Textures,
		PackFormat:         d.PackFormat,
		MinifyJSON:         d.MinifyJSON,
		DeleteEmptyFolders: d.DeleteEmptyFolders,
		Patches:            d.Patches,
		Dependencies:       d.Dependencies,
	}, nil
}

// ParseRunOption decodes a run option table.
func ParseRunOption(name string, decl *value.Value) (RunOption, error) {
	var d runOptionDecl
	if err := decl.Bind(&d); err != nil {
		return RunOption{}, fmt.Errorf("run option %q: %w", name, err)
	}
	sel, err := ParseSelection(d.Configs)
	if err != nil {
		return RunOption{}, fmt.Errorf("run option %q: %w", name, err)
	}
	return RunOption{
		Name:               name,
		Configs:            sel,
		MinifyJSON:         d.MinifyJSON,
		DeleteEmptyFolders: d.DeleteEmptyFolders,
		ZipPack:            d.ZipPack,
		OutDir:             d.OutDir,
		Version:            d.Version,
		Rerun:              d.Rerun,
		Validate:           d.Validate,
	}, nil
}

func mustGet(obj *value.Value, key string) *value.Value {
	v, _ := obj.Get(key)
	return v
}

func decode(ext string, data []byte) (*value.Value, error) {
	switch ext {
	case ".json":
		return value.Parse(data)
	case ".toml":
		var m map[string]interface{}
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
			return nil, err
		}
		return value.FromAny(m), nil
	case ".yaml", ".yml":
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return fromYAML(&doc)
	default:
		return nil, fmt.Errorf("unsupported declaration format %q", ext)
	}
}

// fromYAML keeps mapping order, which plain map decoding would lose.
func fromYAML(n *yaml.Node) (*value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.NewNull(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		obj := value.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := value.NewArray()
		for _, item := range n.Content {
			v, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			arr.Append(v)
		}
		return arr, nil
	case yaml.ScalarNode:
		var x interface{}
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return value.FromAny(x), nil
	default:
		return nil, fmt.Errorf("unsupported yaml node at line %d", n.Line)
	}
}

// normalizeName folds case and treats underscores as spaces, so
// "stay_true" finds "Stay True.json".
func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}

func isDeclaration(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// List returns the pack names declared in dir, sorted.
func List(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := filesystem.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read configs directory").
			WithDetail("path", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isDeclaration(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Find loads the declaration in dir whose name matches name.
func Find(fsys afero.Fs, dir, name string) (*Pack, error) {
	logger := logging.GetLogger("pack.discovery")

	entries, err := filesystem.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read configs directory").
			WithDetail("path", dir)
	}
	want := normalizeName(name)
	for _, e := range entries {
		if e.IsDir() || !isDeclaration(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if normalizeName(base) != want {
			continue
		}
		file := filepath.Join(dir, e.Name())
		logger.Debug().Str("pack", name).Str("file", file).Msg("Found pack declaration")
		return Load(fsys, file)
	}

	available, _ := List(fsys, dir)
	return nil, errors.Newf(errors.ErrPackNotFound, "pack %q not found", name).
		WithDetail("available", available)
}
