// Package sources turns declarative source specs into cached artifacts.
//
// A Spec is one of a closed set of provider variants (GitHub, Modrinth,
// Object). Resolvers dispatch on the variant to the matching provider client
// and Load drives a single source through resolution, the cache, and the
// transform pipeline:
//
//	resolve ──► no candidate ──► cached artifact or ErrMissingArtifact
//	   │
//	   └──► TryUpdate ──► matched ──► cached reference (no download)
//	            │
//	            └──► mismatched ──► fetch ──► verify ──► transform ──► Update
package sources
