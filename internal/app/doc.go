// Package app wires a quantity graph to its surfaces: it builds a page or
// loads a scene, drives the tick loop at a fixed rate, publishes readings
// to the live stream and serves the health check. It is decoupled from any
// specific entrypoint like the CLI.
package app
