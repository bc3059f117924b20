package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/packer"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/watch"
)

// DefaultRunOption is used when no run option is given and nobody can be
// asked.
const DefaultRunOption = "build"

type buildFlags struct {
	runOption      string
	configs        []string
	versionLabel   string
	nonInteractive bool
	watch          bool
}

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build [pack]",
		Short: MsgBuildShort,
		Long: `Build the selected configs of a pack.

Without a pack or run option rpp asks for them when stdin is a terminal.
Non interactive runs use the "` + DefaultRunOption + `" run option and the
version "` + packer.DefaultVersion + `" unless told otherwise.

  $ rpp build "Stay True" -r build_single -c 1.20 --version-label 2.1.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.runOption, "run-option", "r", "", "Run option to build with")
	cmd.Flags().StringSliceVarP(&f.configs, "config", "c", nil, "Configs to build, overriding the run option (\"*\" for all)")
	cmd.Flags().StringVar(&f.versionLabel, "version-label", "", "Version substituted for #version")
	cmd.Flags().BoolVar(&f.nonInteractive, "non-interactive", false, "Never prompt")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Rebuild when the pack source or patches change")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app, f buildFlags, args []string) error {
	env, err := a.environment()
	if err != nil {
		return err
	}
	prompt := prompter(f.nonInteractive)

	p, err := choosePack(env, prompt, args)
	if err != nil {
		return err
	}
	defaults, err := env.settings.DefaultRunOptions()
	if err != nil {
		return err
	}
	p = p.WithRunOptions(defaults)

	ro, err := chooseRunOption(p, prompt, f.runOption)
	if err != nil {
		return err
	}

	req := packer.Request{Pack: p, RunOption: ro, VersionLabel: f.versionLabel}
	if len(f.configs) > 0 {
		sel, err := pack.ParseSelection(f.configs)
		if err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "invalid --config")
		}
		req.Selection = &sel
	}

	opts := packer.Options{
		Fs:          env.fs,
		Locations:   env.paths,
		Workers:     env.settings.Workers(),
		CopyWorkers: env.settings.Build.CopyWorkers,
		BlockFiles:  env.settings.Build.BlockFiles,
		Prompter:    prompt,
		Logger:      logging.GetLogger("packer"),
	}
	if f.watch {
		// Reruns come from the watcher instead.
		req.RunOption.Rerun = false
	}

	results, err := packer.New(opts).Run(cmd.Context(), req)
	for _, r := range results {
		writeResult(cmd.OutOrStdout(), r)
	}
	if err != nil {
		return err
	}
	last := results[len(results)-1]

	if f.watch {
		return watchBuild(cmd, env, opts, req, last)
	}
	return resultError(last)
}

// watchBuild rebuilds the configs and version of the last build whenever the
// sources change, until the context is cancelled.
func watchBuild(cmd *cobra.Command, env *environment, opts packer.Options, req packer.Request, last *packer.Result) error {
	opts.Prompter = nil
	pk := packer.New(opts)
	req.Selection = &pack.Selection{Names: last.Names()}
	req.VersionLabel = last.Version

	w, err := watch.New(watch.Config{
		Roots:   []string{env.paths.Expand(req.Pack.Directory), env.paths.PatchesDir()},
		Exclude: []string{env.paths.TempDir(), env.paths.OutDir()},
		Logger:  logging.GetLogger("watch"),
		OnChange: func(ctx context.Context, changed []string) error {
			log.Info().Strs("changed", changed).Msg("Rebuilding")
			res, err := pk.Build(ctx, req)
			if err != nil {
				return err
			}
			writeResult(cmd.OutOrStdout(), res)
			return resultError(res)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), MsgWatching+"\n", len(w.Roots()))
	return w.Run(cmd.Context())
}

func resultError(r *packer.Result) error {
	if r.Failed == 0 || r.Error == nil {
		return nil
	}
	return errors.Wrapf(r.Error, errors.ErrBuild, "%d of %d configs failed", r.Failed, r.Total)
}

func choosePack(env *environment, prompt packer.Prompter, args []string) (*pack.Pack, error) {
	dir := env.paths.ConfigsDir()
	if len(args) == 1 {
		return pack.Find(env.fs, dir, args[0])
	}
	if prompt == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no pack given")
	}
	names, err := pack.List(env.fs, dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Newf(errors.ErrPackNotFound, MsgNoPacksFound, dir)
	}
	name, err := prompt.Choose(MsgChoosePack, names)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPrompt, "pack prompt failed")
	}
	return pack.Find(env.fs, dir, name)
}

func chooseRunOption(p *pack.Pack, prompt packer.Prompter, name string) (pack.RunOption, error) {
	if name == "" && prompt != nil {
		choice, err := prompt.Choose(MsgChooseRunOption, p.RunOptionNames())
		if err != nil {
			return pack.RunOption{}, errors.Wrap(err, errors.ErrPrompt, "run option prompt failed")
		}
		name = choice
	}
	if name == "" {
		name = DefaultRunOption
	}
	ro, ok := p.RunOption(name)
	if !ok {
		return pack.RunOption{}, errors.Newf(errors.ErrRunOptionNotFound, "unknown run option '%s'", name).
			WithDetail("available", p.RunOptionNames())
	}
	return ro, nil
}
