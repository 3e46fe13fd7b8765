// Package stream exposes a running graph over Socket.IO. The server emits a
// "tick" event after every evaluation cycle and queues "set" events from
// clients as graph inputs. The client side backs "phasegrid watch".
package stream
