package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "RPP_"

// Settings is the loaded, read only configuration of one invocation.
type Settings struct {
	Locations  Locations                         `koanf:"locations"`
	Build      Build                             `koanf:"build"`
	RunOptions map[string]map[string]interface{} `koanf:"run_options"`

	// Source names the settings file that was loaded, "" for defaults only.
	Source string `koanf:"-"`
}

// Locations are unexpanded directory templates.
type Locations struct {
	Minecraft        string `koanf:"minecraft"`
	WorkingDirectory string `koanf:"working_directory"`
	Temp             string `koanf:"temp"`
	Out              string `koanf:"out"`
	Patches          string `koanf:"patches"`
	Configs          string `koanf:"configs"`
}

// Build tunes the build.
type Build struct {
	Workers     int      `koanf:"workers"`
	CopyWorkers int      `koanf:"copy_workers"`
	BlockFiles  []string `koanf:"block_files"`
}

// Options controls where Load looks.
type Options struct {
	// SettingsFile is an explicit settings file. It must exist.
	SettingsFile string
	// SearchDir is checked for rpp.toml. Empty means the current directory.
	SearchDir string
	// SkipEnv ignores RPP_ variables.
	SkipEnv bool
	// DefaultsOnly skips the settings file search.
	DefaultsOnly bool
}

// Load builds Settings from defaults, a settings file and the environment.
func Load(opts Options) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	source, err := settingsFile(opts)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if err := k.Load(file.Provider(source), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load settings from %s", source)
		}
		logger.Debug().Str("path", source).Msg("Loaded settings file")
	}

	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}
	s.Source = source

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the embedded defaults alone.
func Default() *Settings {
	s, err := Load(Options{SkipEnv: true, DefaultsOnly: true})
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return s
}

func settingsFile(opts Options) (string, error) {
	if opts.DefaultsOnly {
		return "", nil
	}
	if opts.SettingsFile != "" {
		if _, err := os.Stat(opts.SettingsFile); err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "settings file not found").
				WithDetail("path", opts.SettingsFile)
		}
		return opts.SettingsFile, nil
	}

	dir := opts.SearchDir
	if dir == "" {
		dir = "."
	}
	candidates := []string{filepath.Join(dir, "rpp.toml")}
	if opts.SearchDir == "" {
		candidates = append(candidates, filepath.Join(xdg.ConfigHome, "rpp", "settings.toml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

func (s *Settings) validate() error {
	if s.Build.Workers < 0 {
		return errors.New(errors.ErrConfigInvalid, "build.workers must not be negative").
			WithDetail("value", s.Build.Workers)
	}
	if s.Build.CopyWorkers < 1 {
		return errors.New(errors.ErrConfigInvalid, "build.copy_workers must be at least 1").
			WithDetail("value", s.Build.CopyWorkers)
	}
	if _, err := s.DefaultRunOptions(); err != nil {
		return err
	}
	return nil
}

// Workers is the config build pool size.
func (s *Settings) Workers() int {
	if s.Build.Workers > 0 {
		return s.Build.Workers
	}
	return runtime.NumCPU()
}

// DefaultRunOptions decodes the run_options tables, sorted by name.
func (s *Settings) DefaultRunOptions() ([]pack.RunOption, error) {
	names := make([]string, 0, len(s.RunOptions))
	for name := range s.RunOptions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]pack.RunOption, 0, len(names))
	for _, name := range names {
		r, err := pack.ParseRunOption(name, value.FromAny(s.RunOptions[name]))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigInvalid, "invalid run option").
				WithDetail("run_option", name)
		}
		out = append(out, r)
	}
	return out, nil
}
