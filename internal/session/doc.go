// Package session drives a monitoring session: it sends start and replay
// requests and dispatches inbound messages to the entity manager, the event
// log and the weather overlay.
//
// All inbound messages and user actions are handled one at a time by
// [Controller.Run]. Messages are processed in arrival order, which need not
// match simulation time: a replay response can arrive after newer data.
// Reconciliation in the entity manager is keyed on membership, so this can
// show stale entities but never corrupts the registry.
package session
