// Package control implements the gRPC transport operators use to steer a
// running bridge.
//
// The service is described by hand on top of the well-known protobuf types
// (StringValue, Empty, Struct), so no generated code is needed. Commands sent
// here land in the same latch set as commands from the rendering engine.
package control
