// Package daemon coordinates the long-running mediasyncdel process.
//
// It wires configuration, the transfer history store, the deletion pipeline
// and the webhook server into a single lifecycle with flock-based locking to
// prevent multiple instances. Settings are reloaded from the configuration
// file on request so operator edits take effect without a restart.
package daemon
