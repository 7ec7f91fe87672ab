// Package client implements possession-ctl, the operator tool.
//
// It connects to the bridge control endpoint, queues one command or prints
// the live status as JSON.
package client
