// Package common holds helpers shared by the bridge and its operator tool.
//
// It provides a lightweight gRPC client for the control service with call
// timeouts, and a process-table guard that keeps a second bridge from
// fighting over the installation's UDP ports.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
