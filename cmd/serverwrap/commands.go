package serverwrap

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/serverwrap/internal/version"
	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/ui"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.launcher(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := l.Run(ctx); err != nil {
				if ctx.Err() != nil {
					log.Info().Msg("Interrupted, exiting")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newSyncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.launcher(cmd)
			if err != nil {
				return err
			}

			result, err := l.Sync(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Changes) == 0 {
				_, _ = fmt.Fprintln(out, MsgNoChanges)
				return nil
			}
			_, _ = fmt.Fprintf(out, MsgChangesFormat, len(result.Changes))
			for _, c := range result.Changes {
				_, _ = fmt.Fprintf(out, MsgChangedItem, c.Destination, c.Key)
			}
			return nil
		},
	}
}

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:     "cache",
		Short:   MsgCacheShort,
		GroupID: "core",
	}

	var verify bool
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   MsgCacheListShort,
		Example: MsgCacheListExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.launcher(cmd)
			if err != nil {
				return err
			}
			format, err := flags.format()
			if err != nil {
				return err
			}

			rows, err := l.CacheRows(verify)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return ui.RenderCacheTable(out, format.Resolve(out), rows, verify)
		},
	}
	listCmd.Flags().BoolVar(&verify, "verify", false, MsgFlagVerify)

	cacheCmd.AddCommand(listCmd)
	return cacheCmd
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.paths()
			if err != nil {
				return err
			}
			path := p.ConfigPath()

			if _, err := os.Stat(path); err == nil && !force {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigExists, path)
				return nil
			}
			if err := os.WriteFile(path, config.DefaultContent(), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrConfigLoad, "failed to write %s", path)
			}
			logger := logging.GetLogger("cmd.config")
			logger.Info().Str("path", path).Bool("force", force).Msg("Configuration written")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)

	var (
		format      string
		showSecrets bool
	)
	showCmd := &cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.paths()
			if err != nil {
				return err
			}
			cfg, err := config.Load(p.ConfigPath())
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg, format, showSecrets)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "failed to render configuration")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().StringVar(&format, "format", "toml", MsgFlagFormat)
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, MsgFlagShowSecrets)

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, MsgVersionFormat, version.Version)
			_, _ = fmt.Fprintf(out, MsgVersionCommit, version.Commit)
			_, _ = fmt.Fprintf(out, MsgVersionBuilt, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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
