package serverwrap

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/serverwrap/internal/version"
	"github.com/arthur-debert/serverwrap/pkg/launcher"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/paths"
	"github.com/arthur-debert/serverwrap/pkg/ui"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbosity int
	config    string
	dir       string
	output    string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "serverwrap",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", MsgFlagDir)
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newSyncCmd(flags))
	rootCmd.AddCommand(newCacheCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func (f *globalFlags) paths() (*paths.Paths, error) {
	p, err := paths.New(f.dir, f.config)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	return p, nil
}

func (f *globalFlags) format() (ui.Format, error) {
	format, err := ui.ParseFormat(f.output)
	if err != nil {
		return ui.FormatAuto, fmt.Errorf(MsgErrOutputFlag, err)
	}
	return format, nil
}

// launcher builds a launcher whose console status goes to the command's
// stderr.
func (f *globalFlags) launcher(cmd *cobra.Command) (*launcher.Launcher, error) {
	p, err := f.paths()
	if err != nil {
		return nil, err
	}
	format, err := f.format()
	if err != nil {
		return nil, err
	}
	return launcher.New(launcher.Options{
		Paths:  p,
		Output: cmd.ErrOrStderr(),
		Format: format,
	}), nil
}
