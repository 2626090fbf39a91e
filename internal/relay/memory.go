package relay

import (
	"errors"
	"sync"

	"saxiib/internal/domain"
)

var (
	errNotOpen  = errors.New("connection not open")
	errConnGone = errors.New("connection closed")
	errNodeGone = errors.New("network closed")
)

// MemoryHub links in-process peers directly.
type MemoryHub struct {
	mu    sync.Mutex
	nodes map[domain.PeerID]*MemoryNode
	dials map[domain.PeerID]int
}

// NewMemoryHub returns an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		nodes: make(map[domain.PeerID]*MemoryNode),
		dials: make(map[domain.PeerID]int),
	}
}

// Join registers a peer under id and returns its network. A previous node
// with the same id is replaced.
func (h *MemoryHub) Join(id domain.PeerID) *MemoryNode {
	n := &MemoryNode{hub: h, id: id, conns: make(map[*memConn]struct{})}
	h.mu.Lock()
	h.nodes[id] = n
	h.mu.Unlock()
	return n
}

// Dials reports how many connection attempts have targeted id.
func (h *MemoryHub) Dials(id domain.PeerID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dials[id]
}

func (h *MemoryHub) lookup(id domain.PeerID) *MemoryNode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nodes[id]
}

func (h *MemoryHub) leave(n *MemoryNode) {
	h.mu.Lock()
	if h.nodes[n.id] == n {
		delete(h.nodes, n.id)
	}
	h.mu.Unlock()
}

// MemoryNode is one peer's view of a MemoryHub.
type MemoryNode struct {
	hub *MemoryHub
	id  domain.PeerID

	mu     sync.Mutex
	accept domain.AcceptFunc
	conns  map[*memConn]struct{}
	closed bool
}

func (n *MemoryNode) MyAddress() domain.PeerID { return n.id }

func (n *MemoryNode) Accept(fn domain.AcceptFunc) {
	n.mu.Lock()
	n.accept = fn
	n.mu.Unlock()
}

// Connect dials remote asynchronously. An absent or non-accepting peer is
// reported through h.OnClose with domain.ErrPeerUnavailable.
func (n *MemoryNode) Connect(remote domain.PeerID, h domain.ConnHandler) (domain.Conn, error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, errNodeGone
	}
	local := &memConn{node: n, remote: remote, handler: h}
	n.conns[local] = struct{}{}
	n.mu.Unlock()

	n.hub.mu.Lock()
	n.hub.dials[remote]++
	n.hub.mu.Unlock()

	go n.dial(local)
	return local, nil
}

func (n *MemoryNode) dial(local *memConn) {
	target := n.hub.lookup(local.remote)
	var accept domain.AcceptFunc
	if target != nil {
		target.mu.Lock()
		if !target.closed {
			accept = target.accept
		}
		target.mu.Unlock()
	}
	if accept == nil {
		local.fail(domain.ErrPeerUnavailable)
		return
	}

	remote := &memConn{node: target, remote: n.id}
	h := accept(remote)
	remote.mu.Lock()
	remote.handler = h
	remote.peer = local
	remote.mu.Unlock()

	target.mu.Lock()
	target.conns[remote] = struct{}{}
	target.mu.Unlock()

	local.mu.Lock()
	if local.closed {
		local.mu.Unlock()
		remote.peerClosed()
		return
	}
	local.peer = remote
	local.mu.Unlock()

	h.Open()
	local.handler.Open()
}

// Close drops every connection of the node and leaves the hub.
func (n *MemoryNode) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	conns := n.conns
	n.conns = make(map[*memConn]struct{})
	n.mu.Unlock()

	n.hub.leave(n)
	for c := range conns {
		_ = c.Close()
	}
	return nil
}

func (n *MemoryNode) forget(c *memConn) {
	n.mu.Lock()
	delete(n.conns, c)
	n.mu.Unlock()
}

type memConn struct {
	node   *MemoryNode
	remote domain.PeerID

	mu      sync.Mutex
	handler domain.ConnHandler
	peer    *memConn
	closed  bool
}

func (c *memConn) RemoteID() domain.PeerID { return c.remote }

func (c *memConn) Send(f domain.Frame) error {
	c.mu.Lock()
	closed, peer := c.closed, c.peer
	c.mu.Unlock()
	switch {
	case closed:
		return errConnGone
	case peer == nil:
		return errNotOpen
	}
	return peer.deliver(f)
}

func (c *memConn) deliver(f domain.Frame) error {
	c.mu.Lock()
	closed, h := c.closed, c.handler
	c.mu.Unlock()
	if closed {
		return errConnGone
	}
	h.Data(f)
	return nil
}

// Close closes both ends. Only the far end is notified.
func (c *memConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	peer := c.peer
	c.mu.Unlock()

	c.node.forget(c)
	if peer != nil {
		peer.peerClosed()
	}
	return nil
}

func (c *memConn) peerClosed() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	h := c.handler
	c.mu.Unlock()

	c.node.forget(c)
	h.Closed(nil)
}

func (c *memConn) fail(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	h := c.handler
	c.mu.Unlock()

	c.node.forget(c)
	h.Closed(err)
}

var (
	_ domain.PeerNetwork = (*MemoryNode)(nil)
	_ domain.Conn        = (*memConn)(nil)
)
