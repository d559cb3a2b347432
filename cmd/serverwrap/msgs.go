package serverwrap

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Keep a game server's mods in sync and the server running"
	MsgRunShort         = "Synchronize destinations and supervise the server"
	MsgSyncShort        = "Synchronize destinations once without starting the server"
	MsgCacheShort       = "Inspect the artifact cache"
	MsgCacheListShort   = "List cached artifacts"
	MsgConfigShort      = "Manage the configuration file"
	MsgConfigInitShort  = "Write the default configuration file"
	MsgConfigShowShort  = "Print the effective configuration"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"
	MsgSyncExample      = "  serverwrap sync\n  serverwrap -C /srv/minecraft sync -v"
	MsgCacheListExample = "  serverwrap cache list --verify"

	// Status messages
	MsgNoChanges     = "No changes."
	MsgChangedItem   = "  ✓ %s/%s\n"
	MsgChangesFormat = "Updated %d artifact(s):\n"
	MsgConfigWritten = "Wrote default configuration to %s\n"
	MsgConfigExists  = "Configuration %s already exists (use --force to overwrite)\n"
	MsgVersionFormat = "serverwrap version %s\n"
	MsgVersionCommit = "  commit: %s\n"
	MsgVersionBuilt  = "  built:  %s\n"

	// Error messages
	MsgErrInitPaths  = "failed to initialize paths: %w"
	MsgErrOutputFlag = "invalid --output: %w"
	MsgErrNoCommand  = "no command specified"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file (default $SERVERWRAP_CONFIG or config.toml)"
	MsgFlagDir         = "Working directory relative paths resolve against"
	MsgFlagOutput      = "Output format: auto, term or text"
	MsgFlagVerify      = "Read every cached object back and check it against its token"
	MsgFlagForce       = "Overwrite an existing configuration file"
	MsgFlagFormat      = "Output format: toml or yaml"
	MsgFlagShowSecrets = "Print tokens and webhook URLs unmasked"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
