// Package systemguard implements the engine's defensive controls inside the
// operations context.
//
// The module owns the global system state machine (active/maintenance/
// emergency plus an independent pause flag), per-actor rate windows, the
// per-actor bid cooldown, and the bidder blacklist. Gated operations in the
// auction engine consume it through the guard ports; its own admin mutations
// are role-gated through access control.
package systemguard
