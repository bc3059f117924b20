package patch

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// File is a named, ordered list of patches.
type File struct {
	Name    string
	Patches []Patch
}

// Path returns where the patch file called name lives in dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load reads and parses <dir>/<name>.json. Patch files are read on every
// call so edits are picked up by the next build.
func Load(fsys afero.Fs, dir, name string) (*File, error) {
	p := Path(dir, name)
	if !filesystem.IsFile(fsys, p) {
		return nil, errors.Newf(errors.ErrPatchNotFound, "patch can't be found: %s", p).
			WithDetail("patch_file", name)
	}
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "reading patch %s", p)
	}
	return ParseFile(name, data)
}

// ParseFile parses a patch file document {"patches": [...]}.
func ParseFile(name string, data []byte) (*File, error) {
	doc, err := value.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrJSONParse, "failed to parse patch %s", name)
	}
	list, ok := doc.Get("patches")
	if !ok || !list.IsArray() {
		return nil, errors.Newf(errors.ErrPatchInvalid, "failed to parse patch %s: no patches list", name)
	}

	f := &File{Name: name}
	for i, decl := range list.Items() {
		p, err := Parse(decl)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPatchInvalid, "patch %s [%d]", name, i+1).
				WithDetail("patch_file", name)
		}
		f.Patches = append(f.Patches, p)
	}
	return f, nil
}

// Apply runs the patches in order. The first failure stops the file;
// patches that already ran stay applied.
func (f *File) Apply(env Env) error {
	env.Logger = logging.ForPatchFile(env.Logger, f.Name)
	for i, p := range f.Patches {
		if err := p.Apply(env); err != nil {
			return errors.Wrapf(err, errors.ErrPatchApply, "patch %s [%d/%d] (%s)", f.Name, i+1, len(f.Patches), p.Type()).
				WithDetail("patch_file", f.Name)
		}
		env.Logger.Info().Msgf("Completed patch [%d/%d]", i+1, len(f.Patches))
	}
	return nil
}
