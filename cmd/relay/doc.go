// Package main runs the saxiib relay: a rendezvous point that lets peers
// reach each other by id without knowing each other's network address.
//
// HTTP API
//
//	GET /peer?id={peerID}
//	    Upgrade to a WebSocket and register {peerID}. A second registration
//	    for the same id replaces the first.
//
//	GET /healthz
//	    Report liveness with the number of registered peers.
//
// Envelopes
//
// Every WebSocket message is a JSON envelope. "open" asks the relay to start
// a connection to another peer, "ack" confirms it, "data" carries one frame
// and "close" ends the connection with an optional reason. The relay answers
// "open" for an unregistered id with a "close" whose reason is
// "peer unavailable".
//
// Behaviour
//
//   - Nothing is stored. Frames for a peer that is offline are dropped and the
//     sender learns about it through "close".
//   - A lightweight access log records method, path, remote, status and
//     duration for each plain HTTP request.
//   - The default listen address is :8080.
//
// The relay sees frame contents in clear; run it on a network you trust.
package main
