// Package status delivers human-readable progress messages to the server
// operators: a Discord-compatible webhook and the local console.
//
// Callers hand payloads to a Writer, which delivers them in order from a
// background goroutine so a slow channel never stalls the launcher.
package status
