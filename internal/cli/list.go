package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [pack]",
		Short: MsgListShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			dir := env.paths.ConfigsDir()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				p, err := pack.Find(env.fs, dir, args[0])
				if err != nil {
					return err
				}
				defaults, err := env.settings.DefaultRunOptions()
				if err != nil {
					return err
				}
				writePack(out, p.WithRunOptions(defaults))
				return nil
			}

			names, err := pack.List(env.fs, dir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintf(out, MsgNoPacksFound+"\n", dir)
				return nil
			}
			entries := make([]listEntry, 0, len(names))
			for _, name := range names {
				p, err := pack.Find(env.fs, dir, name)
				entries = append(entries, listEntry{name: name, pack: p, err: err})
			}
			writePackList(out, entries)
			return nil
		},
	}
}
