// Package binding exposes the latest evaluated value of a quantity to
// consumers that must not touch the store: drawables, text displays and the
// live stream.
//
// A Binding is created once per consumer and refreshed by the tick loop after
// the scheduler finishes. Between refreshes its value is frozen, so every
// consumer reading during a frame sees the same tick. Values are stored
// atomically and may be read from any goroutine.
package binding
