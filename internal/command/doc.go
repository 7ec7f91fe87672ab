// Package command receives operator commands from the rendering engine and
// exposes them to the tick loop as one-shot latches.
//
// The OSC listener runs on its own goroutine and only ever sets latches.
// The tick loop drains each latch with a test-and-clear Check method, so a
// delivered command is applied exactly once.
package command
