// Package session implements the experience lifecycle: a time-driven state
// machine moving through IDLE, POSSESSED and COOLDOWN.
//
// The Machine never reads the wall clock directly; it is driven by an
// injected Clock so tests can advance time without sleeping.
package session
