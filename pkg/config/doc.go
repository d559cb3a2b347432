// Package config loads serverwrap's configuration file and the destinations
// declaration.
//
// The configuration is layered with koanf: embedded defaults, then the user's
// config.toml, then SERVERWRAP_* environment variables (a double underscore
// separates levels, so SERVERWRAP_TOKENS__GITHUB sets tokens.github). A missing
// config file is created from the embedded defaults. A file that does not parse
// is an error the caller should treat as fatal.
//
// Both files are re-read at the start of every supervise cycle, so edits take
// effect on the next restart.
package config
