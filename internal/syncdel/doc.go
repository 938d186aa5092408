// Package syncdel turns media server deletion notifications into deletion
// intents for the local library.
//
// A webhook payload arrives as a loosely typed RawEvent. Handler.Handle runs it
// through a fixed sequence: the enable toggle, the event type, the virtual item
// flag (presence, then value), field normalization, excluded path prefixes,
// and finally media type dispatch. CheckSafety reports both the virtual flag
// and exclusion verdicts; the handler applies the exclusion only once the
// required fields have been checked. Every stage can end
// processing for the event; only a missing virtual item flag has a lasting
// effect, switching the handler off until an operator re-enables it.
//
// The package performs no I/O of its own. History and source file removal go
// through the Executor interface and notifications through Notifier; the
// settings the pipeline reads come from a SettingsStore.
package syncdel
