// Package session manages the live connections to peers and the exchange
// of message frames over them.
//
// Each peer session is a small state machine (idle, connecting, open,
// closed) owned by a single goroutine. Transport callbacks and user sends
// are pushed onto the session's unbounded event queue; the goroutine is the
// only reader and the only writer of the session's state.
//
// Outgoing messages are appended to the message log before any transport
// activity, so a message is recorded as sent even if the peer is never
// reached. There is no timeout and no retry: a session that never opens
// stays connecting until the transport reports a failure or the manager is
// closed.
package session
