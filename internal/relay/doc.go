// Package relay implements the peer network the session manager runs on.
//
// Two implementations of domain.PeerNetwork are provided:
//
//   - Client connects to a relay Server over a WebSocket and multiplexes any
//     number of logical peer connections on it. Peers are addressed by their
//     identity id, which is also the id the client registers under.
//   - MemoryHub links peers living in one process, for tests and demos.
//
// The Server only forwards frames between peers that are online at the same
// time. It keeps no queue and stores nothing: a frame for a peer that is not
// connected is answered with a close carrying "peer unavailable".
//
// Wire protocol: each WebSocket text message is one JSON envelope
//
//	{"kind":"open|ack|data|close","from":"...","to":"...","conn":"<uuid>","frame":{...},"error":"..."}
//
// The dialling side picks the conn id and sends open; the server stamps from
// with the sender's registered id and routes by to; the accepting side
// answers ack. Either side may send close.
package relay
