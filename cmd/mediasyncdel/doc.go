// Package main hosts the mediasyncdel CLI entrypoint and command graph.
//
// The Cobra command tree runs the webhook daemon, controls a running daemon
// through signals, edits the [sync] toggles, inspects the transfer history and
// replays single events through the deletion pipeline. Configuration is
// resolved once per invocation by the shared command context.
package main
