// Package cli wires the rpp commands to the packer.
package cli

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/the-pink-hacker/resource-pack-packer/internal/version"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/cobrax/topics"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/config"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/filesystem"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/logging"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/packer"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/paths"
)

//go:embed docs/*.md
var docsFS embed.FS

// app carries the global flags shared by all commands.
type app struct {
	verbosity    int
	settingsFile string
	fs           afero.Fs
}

// environment is everything a command needs after settings are loaded.
type environment struct {
	settings *config.Settings
	paths    *paths.Paths
	fs       afero.Fs
}

func (a *app) environment() (*environment, error) {
	settings, err := config.Load(config.Options{SettingsFile: a.settingsFile})
	if err != nil {
		return nil, err
	}
	p, err := paths.New(settings.Locations)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("settings", settings.Source).
		Str("workdir", p.WorkingDir()).
		Str("minecraft", p.Minecraft()).
		Msg("Environment loaded")
	return &environment{settings: settings, paths: p, fs: a.fs}, nil
}

// prompter returns nil unless stdin is a terminal and prompts are allowed.
func prompter(nonInteractive bool) packer.Prompter {
	if nonInteractive || !isTerminal(os.Stdin.Fd()) {
		return nil
	}
	return terminalPrompter{}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	a := &app{fs: filesystem.NewOS()}

	rootCmd := &cobra.Command{
		Use:     "rpp",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&a.settingsFile, "settings", "", "Settings file (default ./rpp.toml, then "+paths.SettingsFile()+")")

	initTemplateFormatting()
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	if docs, err := newDocsCmd(); err == nil {
		rootCmd.AddCommand(docs)
	} else {
		fmt.Fprintf(os.Stderr, "docs unavailable: %v\n", err)
	}

	return rootCmd
}

func newDocsCmd() (*cobra.Command, error) {
	sub, err := fs.Sub(docsFS, "docs")
	if err != nil {
		return nil, err
	}
	tm, err := topics.Load(sub, topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(isTerminal(os.Stdout.Fd())),
	})
	if err != nil {
		return nil, err
	}
	return tm.NewCommand(), nil
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Long: `Print the default settings with every value commented out.

  $ rpp genconfig > rpp.toml`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateConfigContent())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(rpp completion bash)

Zsh:
  $ rpp completion zsh > "${fpath[1]}/_rpp"

Fish:
  $ rpp completion fish | source

PowerShell:
  PS> rpp completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
