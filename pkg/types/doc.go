// Package types holds the small interfaces shared across serverwrap packages
// that would otherwise create import cycles.
package types
