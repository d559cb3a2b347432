// Package testutil provides fakes shared by serverwrap tests: an in-memory
// filesystem, a filesystem with injectable rename failures, a manual clock,
// a scripted executor, a recording status notifier and HTTP fakes of the
// GitHub and Modrinth APIs.
//
// Usage guidelines:
//   - Cache tests use NewTestFS; directory renames need the OS filesystem,
//     so destination tests use t.TempDir
//   - Test data is defined inline
package testutil
