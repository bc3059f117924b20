package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/config"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
)

const (
	// AppDirName is the directory name under the XDG roots.
	AppDirName = "rpp"

	// SettingsFileName is the per user settings file.
	SettingsFileName = "settings.toml"

	// ResourcePacksDir is the pack folder inside the Minecraft directory.
	ResourcePacksDir = "resourcepacks"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Paths holds resolved, absolute locations.
type Paths struct {
	minecraft string
	workdir   string
	temp      string
	out       string
	patches   string
	configs   string
}

// New resolves the location templates in loc.
func New(loc config.Locations) (*Paths, error) {
	p := &Paths{}

	p.minecraft = expandHome(loc.Minecraft)
	if p.minecraft == "" {
		p.minecraft = DefaultMinecraftDir()
	}

	if loc.WorkingDirectory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
		}
		p.workdir = cwd
	} else {
		p.workdir = expandHome(loc.WorkingDirectory)
	}

	var err error
	if p.minecraft, err = filepath.Abs(p.minecraft); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to resolve minecraft directory")
	}
	if p.workdir, err = filepath.Abs(p.workdir); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to resolve working directory")
	}

	for _, f := range []struct {
		dst  *string
		tmpl string
		name string
	}{
		{&p.temp, loc.Temp, "temp"},
		{&p.out, loc.Out, "out"},
		{&p.patches, loc.Patches, "patches"},
		{&p.configs, loc.Configs, "configs"},
	} {
		tmpl := f.tmpl
		if tmpl == "" {
			tmpl = filepath.Join("#workdir", f.name)
		}
		if *f.dst, err = p.Abs(tmpl); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s directory", f.name)
		}
	}
	return p, nil
}

func (p *Paths) Minecraft() string     { return p.minecraft }
func (p *Paths) WorkingDir() string    { return p.workdir }
func (p *Paths) TempDir() string       { return p.temp }
func (p *Paths) OutDir() string        { return p.out }
func (p *Paths) PatchesDir() string    { return p.patches }
func (p *Paths) ConfigsDir() string    { return p.configs }
func (p *Paths) ResourcePacks() string { return filepath.Join(p.minecraft, ResourcePacksDir) }

// Expand replaces #packdir and #workdir and expands a leading ~. The result
// is cleaned but may stay relative.
func (p *Paths) Expand(tmpl string) string {
	if tmpl == "" {
		return ""
	}
	s := strings.ReplaceAll(tmpl, "#packdir", p.ResourcePacks())
	s = strings.ReplaceAll(s, "#workdir", p.workdir)
	return filepath.Clean(expandHome(s))
}

// Abs expands tmpl and resolves relative results against the working
// directory.
func (p *Paths) Abs(tmpl string) (string, error) {
	s := p.Expand(tmpl)
	if s == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}
	if !filepath.IsAbs(s) {
		s = filepath.Join(p.workdir, s)
	}
	return s, nil
}

// NameScheme fills #name, #version and #mcversion. Path separators in the
// result are replaced so it stays a single file name.
func NameScheme(scheme, name, version, mcVersion string) string {
	r := strings.NewReplacer(
		"#name", name,
		"#version", version,
		"#mcversion", mcVersion,
	)
	out := r.Replace(scheme)
	return strings.NewReplacer("/", "-", "\\", "-").Replace(out)
}

// DefaultMinecraftDir is the launcher's default game directory.
func DefaultMinecraftDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = os.Getenv(EnvHome)
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".minecraft")
		}
		return filepath.Join(home, "AppData", "Roaming", ".minecraft")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft")
	default:
		return filepath.Join(home, ".minecraft")
	}
}

// SettingsFile is the per user settings file location.
func SettingsFile() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, SettingsFileName)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}
	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is left alone
	return path
}
