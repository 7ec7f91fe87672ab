// Package monitor mirrors bridge status to websocket clients for debugging
// an installation from a browser on the local network.
package monitor
