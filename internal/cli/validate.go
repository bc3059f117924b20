package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: MsgValidateShort,
		Long: `Validate an unpacked resource pack directory: blockstates, models and
sounds.json are checked against the built in schema and models are searched
for faces using the #missing texture.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "invalid directory")
			}
			if !filesystem.IsDir(a.fs, dir) {
				return errors.New(errors.ErrFileNotFound, "directory not found").WithDetail("path", dir)
			}

			v, err := validate.New()
			if err != nil {
				return err
			}
			report, err := v.Validate(filesystem.Sandbox(a.fs, dir), logging.GetLogger("validate"))
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return errors.Newf(errors.ErrValidation, "%d problems found", len(report.Findings))
			}
			return nil
		},
	}
}
