// Package transform turns a freshly downloaded file into the file that is
// actually cached. A pipeline is an ordered list of operations, each mapping
// one File to zero or one File; the first operation that yields nothing ends
// the pipeline with no output.
//
// Operations are built from configuration declarations through a registry
// keyed by the declaration's type:
//
//	transform = [
//	    { type = "archive", path = "mods/*.jar" },
//	    { type = "rename", name = "sodium.jar" },
//	]
package transform
