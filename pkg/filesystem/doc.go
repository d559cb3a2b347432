// Package filesystem provides implementations of the types.FS interface:
// the OS filesystem used at runtime and an afero-backed one for tests,
// plus the atomic write helpers the cache and destinations build on.
package filesystem
