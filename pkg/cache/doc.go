// Package cache is a content-addressed artifact store, one per destination.
//
// Each source key owns at most one cached artifact together with the token
// (fingerprint) it was fetched under. Callers ask an Entry whether a freshly
// resolved token is still current with TryUpdate. A match hands back the
// cached Reference without any download; a mismatch hands back a single-use
// Updater that is the only way to replace the artifact. Existing returns
// whatever was last committed, for when no remote candidate resolves.
//
// On disk a store lives under its root:
//
//	index.toml                          key -> token, file name, object path
//	objects/<key>/<token id>/<file>     artifact bytes
//
// Objects are written to a temporary name and renamed into place. The index
// is rewritten atomically by Close, which also removes objects the index no
// longer refers to.
package cache
