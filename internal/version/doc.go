// Package version carries the build identity of the bridge binaries.
//
// Version, Commit and BuildTime are stamped through -ldflags at release time.
// The bridge logs them on startup so an installation log can be matched to
// the build that produced it.
package version
