// Package ghost records the live experiencer during a session and replays
// finished sessions as ghosts alongside later ones.
//
// Takes live in memory only. Each ghost occupies a fixed slot so its player
// id stays stable for the rendering engine while it plays.
package ghost
