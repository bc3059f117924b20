// Package packer builds resource packs.
//
// Build resolves which configs to build, clears the shared temp and output
// directories once, then builds each config in its own private directory.
// A single config is built inline. Several configs run on a worker pool, and
// since each build owns its directory, logger, random generators and schema
// context, nothing is shared between them.
package packer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/paths"
)

// DefaultVersion labels builds when no version is given and nobody can be
// asked.
const DefaultVersion = "DEV"

// Prompter asks the user things. A nil Prompter means non interactive.
type Prompter interface {
	pack.Chooser
	Input(message, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// Locations resolves directories. *paths.Paths implements it.
type Locations interface {
	TempDir() string
	OutDir() string
	PatchesDir() string
	Expand(tmpl string) string
	Abs(tmpl string) (string, error)
}

var _ Locations = (*paths.Paths)(nil)

// Options configure a Packer.
type Options struct {
	// Fs holds sources, patches and outputs. Nil means the OS filesystem.
	Fs        afero.Fs
	Locations Locations
	// Workers bounds parallel config builds. 0 or less means one per CPU
	// as reported by the caller's settings.
	Workers     int
	CopyWorkers int
	// BlockFiles are the block selector templates used when the pack has
	// none of its own.
	BlockFiles []string
	Prompter   Prompter
	Logger     zerolog.Logger
}

// Request is one build invocation.
type Request struct {
	Pack      *pack.Pack
	RunOption pack.RunOption
	// VersionLabel overrides the run option's version.
	VersionLabel string
	// Selection overrides the run option's config selection.
	Selection *pack.Selection
}

// Packer runs builds.
type Packer struct {
	fs   afero.Fs
	opts Options
}

// New returns a Packer.
func New(opts Options) *Packer {
	fsys := opts.Fs
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.CopyWorkers <= 0 {
		opts.CopyWorkers = 1
	}
	return &Packer{fs: fsys, opts: opts}
}

// Build runs one build invocation. The returned error covers problems that
// stop the whole invocation. Per config failures are in Result.
func (p *Packer) Build(ctx context.Context, req Request) (*Result, error) {
	if req.Pack == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no pack given")
	}
	logger := p.opts.Logger.With().Str("pack", req.Pack.Name).Logger()
	start := time.Now()

	sel := req.RunOption.Configs
	if req.Selection != nil {
		sel = *req.Selection
	}
	var chooser pack.Chooser
	if p.opts.Prompter != nil {
		chooser = p.opts.Prompter
	}
	configs, err := req.Pack.SelectConfigs(sel, chooser)
	if err != nil {
		return nil, err
	}

	version, err := p.version(req)
	if err != nil {
		return nil, err
	}

	result := &Result{Pack: req.Pack.Name, RunOption: req.RunOption.Name, Version: version}
	if len(configs) == 0 {
		logger.Warn().Str("selection", sel.String()).Msg("No configs selected")
		return result, nil
	}

	source := p.opts.Locations.Expand(req.Pack.Directory)
	if !filesystem.IsDir(p.fs, source) {
		return nil, errors.New(errors.ErrPackNotFound, "pack directory not found").
			WithDetail("path", source)
	}
	logger.Info().Str("path", source).Msg("Located pack")

	buildRoot := p.opts.Locations.TempDir()
	clearRoot := req.RunOption.OutDir == ""
	if !clearRoot {
		if buildRoot, err = p.opts.Locations.Abs(req.RunOption.OutDir); err != nil {
			return nil, err
		}
	}
	outDir := p.opts.Locations.OutDir()

	job := buildJob{
		pack:      req.Pack,
		runOption: req.RunOption,
		version:   version,
		source:    source,
		buildRoot: buildRoot,
		outDir:    outDir,
		packName:  filepath.Base(source),
	}
	plans := p.plan(job, configs)

	// Everything below is cleared, so none of it may touch the source.
	cleared := []string{outDir}
	if clearRoot {
		cleared = append(cleared, buildRoot)
	}
	for _, pl := range plans {
		cleared = append(cleared, pl.buildDir)
	}
	for _, dir := range cleared {
		if overlaps(dir, source) {
			return nil, errors.New(errors.ErrInvalidInput, "build output overlaps the pack source").
				WithDetail("path", dir).
				WithDetail("source", source)
		}
	}

	if clearRoot {
		logger.Info().Str("path", buildRoot).Msg("Clearing temp")
		if err := filesystem.Clear(p.fs, buildRoot); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "failed to clear temp directory").
				WithDetail("path", buildRoot)
		}
	}
	logger.Info().Str("path", outDir).Msg("Clearing out")
	if err := filesystem.Clear(p.fs, outDir); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "failed to clear out directory").
			WithDetail("path", outDir)
	}

	results := make([]ConfigResult, len(plans))
	if len(plans) == 1 {
		results[0] = p.buildConfig(ctx, job, plans[0])
	} else {
		g := new(errgroup.Group)
		g.SetLimit(p.opts.Workers)
		for i, pl := range plans {
			g.Go(func() error {
				results[i] = p.buildConfig(ctx, job, pl)
				return nil
			})
		}
		_ = g.Wait()
	}
	for _, r := range results {
		result.add(r)
	}
	result.Duration = time.Since(start)

	logger.Info().
		Int("total", result.Total).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Build completed")
	return result, nil
}

// Run builds, then while the run option asks for reruns and the user
// agrees, builds again with the same configs and version.
func (p *Packer) Run(ctx context.Context, req Request) ([]*Result, error) {
	var all []*Result
	for {
		res, err := p.Build(ctx, req)
		if err != nil {
			return all, err
		}
		all = append(all, res)

		if !req.RunOption.Rerun || p.opts.Prompter == nil || ctx.Err() != nil {
			return all, nil
		}
		again, err := p.opts.Prompter.Confirm("Rerun?", true)
		if err != nil {
			return all, errors.Wrap(err, errors.ErrPrompt, "rerun prompt failed")
		}
		if !again {
			return all, nil
		}
		req.Selection = &pack.Selection{Names: res.Names()}
		req.VersionLabel = res.Version
	}
}

func (p *Packer) version(req Request) (string, error) {
	if req.VersionLabel != "" {
		return req.VersionLabel, nil
	}
	if req.RunOption.Version != "" {
		return req.RunOption.Version, nil
	}
	if p.opts.Prompter == nil {
		return DefaultVersion, nil
	}
	v, err := p.opts.Prompter.Input("Resource pack version:", "")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPrompt, "version prompt failed")
	}
	if v == "" {
		v = DefaultVersion
	}
	return v, nil
}
