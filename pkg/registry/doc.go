// Package registry provides a small generic name-to-value registry used for
// pluggable kinds such as transform operations and trigger types.
package registry
