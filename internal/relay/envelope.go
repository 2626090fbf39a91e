package relay

import "saxiib/internal/domain"

// Envelope kinds.
const (
	KindOpen  = "open"
	KindAck   = "ack"
	KindData  = "data"
	KindClose = "close"
)

// Envelope is one message on the relay WebSocket.
type Envelope struct {
	Kind  string        `json:"kind"`
	From  domain.PeerID `json:"from,omitempty"`
	To    domain.PeerID `json:"to"`
	Conn  string        `json:"conn"`
	Frame *domain.Frame `json:"frame,omitempty"`
	Error string        `json:"error,omitempty"`
}
