// Package paths provides centralized path handling for serverwrap.
//
// serverwrap runs from the server directory: the configuration file, the
// destinations declaration and relative destination paths all resolve
// against the working directory. The cache root falls back to the XDG cache
// directory when the configuration leaves it empty.
//
// # Environment Variables
//
//   - SERVERWRAP_CONFIG: configuration file (default: ./config.toml)
//
// Every configuration key can also be overridden with SERVERWRAP_<KEY>; see
// pkg/config.
package paths
