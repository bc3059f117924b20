package patch

import (
	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/selector"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// Remove deletes every path its selector resolves to. Directories go
// recursively; paths that no longer exist are skipped, so running it twice
// is harmless.
type Remove struct {
	Selector selector.Selector
}

func (Remove) Type() string { return TypeRemove }

func (r Remove) Apply(env Env) error {
	paths, err := r.Selector.Resolve(env.selectorEnv())
	if err != nil {
		return errors.Wrap(err, errors.ErrPatchApply, "resolving files to remove")
	}

	var existing []string
	for _, p := range paths {
		if _, err := env.Build.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}

	for i, p := range existing {
		info, err := env.Build.Stat(p)
		if err != nil {
			continue
		}
		kind := "file"
		if info.IsDir() {
			kind = "folder"
			err = env.Build.RemoveAll(p)
		} else {
			err = env.Build.Remove(p)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrPatchApply, "removing %s", p).WithDetail("path", p)
		}
		env.Logger.Debug().Msgf("Removed %s [%d/%d]: %s", kind, i+1, len(existing), p)
	}
	return nil
}

// parseRemove accepts a selector rule as the patch arguments, a rule under
// "selector", or the older inline "files" and "blocks" lists.
func parseRemove(args *value.Value) (Patch, error) {
	if args.Has("type") {
		sel, err := selector.Parse(args)
		if err != nil {
			return nil, err
		}
		return Remove{Selector: sel}, nil
	}
	if rule, ok := args.Get("selector"); ok {
		sel, err := selector.Parse(rule)
		if err != nil {
			return nil, err
		}
		return Remove{Selector: sel}, nil
	}

	var legacy selector.Union
	if files, ok := args.Get("files"); ok {
		legacy.Selectors = append(legacy.Selectors, selector.FileList{Files: files.Strings()})
	}
	if blocks, ok := args.Get("blocks"); ok {
		list, err := selector.ParseBlockList(blocks)
		if err != nil {
			return nil, err
		}
		legacy.Selectors = append(legacy.Selectors, selector.Blocks{Blocks: list})
	}
	switch len(legacy.Selectors) {
	case 0:
		return nil, errors.New(errors.ErrPatchInvalid, "remove patch needs a selector, files or blocks")
	case 1:
		return Remove{Selector: legacy.Selectors[0]}, nil
	default:
		return Remove{Selector: legacy}, nil
	}
}
