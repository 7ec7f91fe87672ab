// Package bridge runs the possession installation's session loop.
//
// The orchestrator reads the newest sensor frame every tick, drives the
// IDLE/POSSESSED/COOLDOWN machine, records and replays ghosts, publishes OSC
// telemetry and applies commands latched by the OSC command channel or the
// gRPC control service. Run wires these pieces from the configuration and
// supervises them until shutdown.
package bridge
