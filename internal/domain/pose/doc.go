// Package pose contains the skeletal data model shared by the sensor ingest,
// the telemetry publisher and the session orchestrator.
//
// It defines Landmark and Frame, the adapter that resolves loosely shaped
// landmark entries into Landmark values, and the motion energy computation
// that reduces two consecutive frames to one intensity scalar.
package pose
