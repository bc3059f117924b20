package packer

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/patch"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/paths"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/preprocess"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/validate"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/value"
)

// MetaFile is written at the root of every build.
const MetaFile = "pack.mcmeta"

// buildJob is what every config build of one invocation shares. It is
// read only.
type buildJob struct {
	pack      *pack.Pack
	runOption pack.RunOption
	version   string
	source    string
	buildRoot string
	outDir    string
	packName  string
}

// configPlan fixes where one config builds and what it produces. Plans are
// made for all configs before any of them starts.
type configPlan struct {
	config   pack.Config
	name     string
	buildDir string
	// archive is empty when the run option does not zip.
	archive string
	err     error
}

// plan gives every config its own build directory. Builds in the temp root
// are keyed on the config name; builds in an out_dir override and archives
// use the expanded name scheme, so configs expanding to the same name are
// failed with ErrOutputConflict instead of sharing a tree.
func (p *Packer) plan(job buildJob, configs []pack.Config) []configPlan {
	plans := make([]configPlan, len(configs))
	owners := make(map[string][]int)
	claim := func(i int, target string) {
		key := strings.ToLower(filepath.Clean(target))
		owners[key] = append(owners[key], i)
	}

	for i, c := range configs {
		pl := configPlan{
			config: c,
			name:   paths.NameScheme(job.pack.NameScheme, job.packName, job.version, c.PrimaryVersion()),
		}
		if job.runOption.OutDir != "" {
			pl.buildDir = filepath.Join(job.buildRoot, pl.name)
		} else {
			pl.buildDir = filepath.Join(job.buildRoot, dirName(c.Name))
		}
		claim(i, pl.buildDir)
		if job.runOption.ZipPack {
			pl.archive = filepath.Join(job.outDir, pl.name+".zip")
			claim(i, pl.archive)
		}
		plans[i] = pl
	}

	for target, idx := range owners {
		if len(idx) < 2 {
			continue
		}
		names := make([]string, len(idx))
		for j, i := range idx {
			names[j] = configs[i].Name
		}
		for _, i := range idx {
			if plans[i].err != nil {
				continue
			}
			plans[i].err = errors.Newf(errors.ErrOutputConflict,
				"configs %s would write the same output", strings.Join(names, ", ")).
				WithDetail("path", target).
				WithDetail("configs", names)
		}
	}
	return plans
}

// dirName turns a config name into a single path element.
func dirName(name string) string {
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}

// overlaps reports whether a and b are the same directory or one holds the
// other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (p *Packer) buildConfig(ctx context.Context, job buildJob, pl configPlan) ConfigResult {
	start := time.Now()
	c := pl.config
	logger := logging.ForBuild(p.opts.Logger, job.packName, c.Name)
	res := ConfigResult{Config: c.Name, Name: pl.name, BuildDir: pl.buildDir, Archive: pl.archive}

	err := pl.err
	if err == nil {
		err = p.runSteps(ctx, job, c, &res, logger)
	}
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = errors.Wrapf(err, errors.ErrBuild, "config %s failed", c.Name).
			WithDetail("config", c.Name)
		logger.Error().Err(err).Msg("Build failed")
		return res
	}
	res.Success = true
	logger.Info().
		Str("output", res.Archive).
		Str("fingerprint", formatFingerprint(res.Fingerprint)).
		Dur("duration", res.Duration).
		Msg("Completed pack")
	return res
}

func (p *Packer) runSteps(ctx context.Context, job buildJob, c pack.Config, res *ConfigResult, logger zerolog.Logger) error {
	if err := filesystem.Clear(p.fs, res.BuildDir); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to prepare build directory").
			WithDetail("path", res.BuildDir)
	}
	build := filesystem.Sandbox(p.fs, res.BuildDir)

	logger.Info().Msg("Copying...")
	done := logging.LogOperationStart(logger, "copy")
	copied, err := filesystem.CopyTree(ctx, filesystem.ReadOnly(p.fs), job.source, build, ".", p.opts.CopyWorkers)
	done()
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to copy pack").
			WithDetail("source", job.source)
	}
	res.Copied = len(copied)

	if c.Textures.Delete {
		logger.Info().Msg("Deleting textures...")
		if err := stripTextures(build, c.Textures.Ignore, logger); err != nil {
			return err
		}
	}

	format, ok := c.ResolvedPackFormat()
	if !ok {
		logger.Warn().Str("mc_version", c.PrimaryVersion()).Msg("Unknown pack format")
	}
	res.PackFormat = format
	if err := writeMeta(build, format, job.pack.Description); err != nil {
		return err
	}

	if len(c.Patches) > 0 {
		logger.Info().Msg("Applying patches...")
		res.PatchErrors = p.applyPatches(ctx, job, c, build, logger)
	}

	if _, err := preprocess.Run(build, logger); err != nil {
		return err
	}

	if c.MinifyJSON && job.runOption.MinifyJSON {
		logger.Info().Msg("Minifying json files...")
		if err := minifyJSON(build, logger); err != nil {
			return err
		}
	}

	if c.DeleteEmptyFolders && job.runOption.DeleteEmptyFolders {
		n, err := filesystem.PruneEmptyDirs(build, ".")
		if err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to delete empty folders")
		}
		logger.Debug().Int("removed", n).Msg("Deleted empty folders")
	}

	if job.runOption.Validate {
		v, err := validate.New()
		if err != nil {
			return err
		}
		report, err := v.Validate(build, logger)
		if err != nil {
			return err
		}
		res.Validation = &report
	}

	if res.Fingerprint, err = filesystem.Fingerprint(build, "."); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to fingerprint build")
	}

	if res.Archive != "" {
		done := logging.LogOperationStart(logger, "zip")
		err := filesystem.ZipFile(build, ".", p.fs, res.Archive)
		done()
		if err != nil {
			return errors.Wrap(err, errors.ErrZip, "failed to zip pack").
				WithDetail("path", res.Archive)
		}
	} else {
		res.Archive = res.BuildDir
	}
	return ctx.Err()
}

// stripTextures deletes assets/<namespace>/textures/<folder> unless folder
// is in ignore, compared case insensitively.
func stripTextures(build afero.Fs, ignore []string, logger zerolog.Logger) error {
	keep := make(map[string]bool, len(ignore))
	for _, ig := range ignore {
		keep[strings.ToLower(ig)] = true
	}

	namespaces, err := filesystem.ReadDir(build, "assets")
	if err != nil {
		if filesystem.Exists(build, "assets") {
			return errors.Wrap(err, errors.ErrFileAccess, "failed to read assets")
		}
		return nil
	}
	total := 0
	for _, ns := range namespaces {
		if ns.IsDir() {
			total++
		}
	}
	i := 0
	for _, ns := range namespaces {
		if !ns.IsDir() {
			continue
		}
		i++
		texDir := path.Join("assets", ns.Name(), "textures")
		folders, err := filesystem.ReadDir(build, texDir)
		if err != nil {
			continue
		}
		for _, f := range folders {
			if keep[strings.ToLower(f.Name())] {
				continue
			}
			if err := build.RemoveAll(path.Join(texDir, f.Name())); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "failed to delete textures").
					WithDetail("path", path.Join(texDir, f.Name()))
			}
		}
		logger.Info().Msgf("Deleted texture [%d/%d]: %s", i, total, ns.Name())
	}
	return nil
}

func writeMeta(build afero.Fs, format int, description string) error {
	inner := value.NewObject()
	inner.Set("pack_format", value.NewInt(int64(format)))
	inner.Set("description", value.NewString(description))
	meta := value.NewObject()
	meta.Set("pack", inner)
	if err := afero.WriteFile(build, MetaFile, value.Indent(meta), 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write pack.mcmeta")
	}
	return nil
}

func (p *Packer) applyPatches(ctx context.Context, job buildJob, c pack.Config, build afero.Fs, logger zerolog.Logger) []error {
	blockFiles := job.pack.BlockFiles
	if len(blockFiles) == 0 {
		blockFiles = p.opts.BlockFiles
	}
	env := patch.Env{
		Ctx:         ctx,
		Build:       build,
		Source:      p.fs,
		PatchDir:    p.opts.Locations.PatchesDir(),
		Expand:      p.opts.Locations.Expand,
		BlockFiles:  blockFiles,
		CopyWorkers: p.opts.CopyWorkers,
		Logger:      logger,
	}

	var errs []error
	for _, name := range c.Patches {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		f, err := patch.Load(p.fs, env.PatchDir, name)
		if err != nil {
			logger.Error().Err(err).Str("patch_file", name).Msg("Patch file couldn't be loaded")
			errs = append(errs, err)
			continue
		}
		if err := f.Apply(env); err != nil {
			logger.Error().Err(err).Str("patch_file", name).Msg("Patch file stopped early")
			errs = append(errs, err)
		}
	}
	return errs
}

func minifyJSON(build afero.Fs, logger zerolog.Logger) error {
	files, err := filesystem.Files(build, ".")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to list build files")
	}
	for _, rel := range files {
		if ext := path.Ext(rel); ext != ".json" && ext != ".mcmeta" {
			continue
		}
		name := filesystem.Rel(rel)
		data, err := afero.ReadFile(build, name)
		if err != nil {
			return errors.Wrap(err, errors.ErrFileAccess, "failed to read json file").WithDetail("path", rel)
		}
		v, err := value.Parse(data)
		if err != nil {
			logger.Warn().Str("file", rel).Err(err).Msg("Skipping invalid json")
			continue
		}
		if err := afero.WriteFile(build, name, value.Compact(v), 0644); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to write json file").WithDetail("path", rel)
		}
	}
	return nil
}

func formatFingerprint(f uint64) string {
	return fmt.Sprintf("%016x", f)
}
