package interfaces

import domaintypes "saxiib/internal/domain/types"

// ConnHandler receives the events of one peer connection. Nil callbacks are
// skipped. Callbacks must not block.
type ConnHandler struct {
	OnOpen  func()
	OnData  func(frame domaintypes.Frame)
	OnClose func(err error)
}

// Open invokes OnOpen if set.
func (h ConnHandler) Open() {
	if h.OnOpen != nil {
		h.OnOpen()
	}
}

// Data invokes OnData if set.
func (h ConnHandler) Data(frame domaintypes.Frame) {
	if h.OnData != nil {
		h.OnData(frame)
	}
}

// Closed invokes OnClose if set. A nil err means an orderly close.
func (h ConnHandler) Closed(err error) {
	if h.OnClose != nil {
		h.OnClose(err)
	}
}

// Conn is one end of a peer connection.
type Conn interface {
	RemoteID() domaintypes.PeerID
	// Send writes one frame. It fails once the connection is closed.
	Send(frame domaintypes.Frame) error
	Close() error
}

// AcceptFunc is called for every inbound connection and returns the handler
// that will receive its events. The network fires OnOpen once the returned
// handler is installed.
type AcceptFunc func(conn Conn) ConnHandler

// PeerNetwork is the transport the session manager runs on. Peers are
// addressed by their PeerID.
type PeerNetwork interface {
	MyAddress() domaintypes.PeerID
	// Connect starts dialling remote and returns at once. The outcome is
	// reported through h: OnOpen on success, OnClose on failure.
	Connect(remote domaintypes.PeerID, h ConnHandler) (Conn, error)
	Accept(fn AcceptFunc)
	Close() error
}
