// Package supervisor runs the server process and enforces the restart policy.
//
// One cycle is Supervise followed by Cooldown:
//
//	Idle ─► Running ─► Exited ─┬─► wait (ran shorter than the minimum interval) ─► Idle
//	                           └─► Idle
//
// A run that fails to start or exits with an error is logged and treated like
// a clean exit.
package supervisor
