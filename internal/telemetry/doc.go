// Package telemetry streams pose, state and parameter messages to the
// rendering engine as OSC datagrams.
//
// Delivery is best effort: there is no acknowledgment, ordering or retry,
// and a failed send only reports the local transport error.
package telemetry
