package patch

import (
	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Replace mirrors a directory onto the build root. Files from the directory
// overwrite files at the same relative path.
type Replace struct {
	Directory string `mapstructure:"directory"`
}

func (Replace) Type() string { return TypeReplace }

func (r Replace) Apply(env Env) error {
	dir := env.sourceDir(r.Directory)
	src := filesystem.ReadOnly(env.Source)
	if !filesystem.IsDir(src, dir) {
		return errors.Newf(errors.ErrPatchInvalid, "replace directory %s does not exist", dir).
			WithDetail("directory", dir)
	}

	copied, err := filesystem.CopyTree(env.context(), src, dir, env.Build, ".", env.CopyWorkers)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPatchApply, "replacing files from %s", dir)
	}
	env.Logger.Debug().Str("directory", dir).Int("files", len(copied)).Msg("Replaced files")
	return nil
}

func parseReplace(args *value.Value) (Patch, error) {
	var r Replace
	if err := args.Bind(&r); err != nil {
		return nil, err
	}
	if r.Directory == "" {
		return nil, errors.New(errors.ErrPatchInvalid, "replace patch needs a directory")
	}
	return r, nil
}
