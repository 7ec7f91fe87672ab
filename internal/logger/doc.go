// Package logger wraps zap for the bridge binaries:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and a runtime debug toggle driven by operator commands,
//   - convenience functions (Info, WarnKV, Errorf, etc.).
//
// Services receive a context and extract the logger from it, so every log
// line carries the name of the component that produced it.
package logger
