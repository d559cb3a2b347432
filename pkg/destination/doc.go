// Package destination materializes declared destinations.
//
// Prepare brings every source of a destination up to date in its cache and
// collects the resulting references; a failing source is reported and left
// out. Apply rebuilds the destination directory from those references in a
// staging directory and swaps it into place with renames, so the server never
// sees a half-written directory.
package destination
