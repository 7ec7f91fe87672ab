// Package source delivers sensor frames from the external vision process to
// the tick loop.
//
// Sources keep only the newest frame. The tick loop polls Latest once per
// tick and never blocks on the network.
package source
