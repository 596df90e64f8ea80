// Package genwire implements a bidirectional JSON-RPC message channel
// between a code-generation plugin and its driving host process,
// communicating over a pair of byte streams (typically pipes).
//
// A Conn parses inbound messages under either of two framing conventions,
// dispatches inbound calls to registered handlers, correlates responses
// with the outbound requests that produced them, and shuts down all
// in-flight work race-free on Close.
package genwire
