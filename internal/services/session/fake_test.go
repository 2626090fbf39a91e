package session_test

import (
	"errors"
	"sync"

	"saxiib/internal/domain"
)

// fakeNetwork hands out connections that only open, deliver or fail when
// the test says so.
type fakeNetwork struct {
	self domain.PeerID

	mu     sync.Mutex
	accept domain.AcceptFunc
	dials  map[domain.PeerID]int
	conns  []*fakeConn
}

func newFakeNetwork(self domain.PeerID) *fakeNetwork {
	return &fakeNetwork{self: self, dials: make(map[domain.PeerID]int)}
}

func (n *fakeNetwork) MyAddress() domain.PeerID { return n.self }

func (n *fakeNetwork) Accept(fn domain.AcceptFunc) {
	n.mu.Lock()
	n.accept = fn
	n.mu.Unlock()
}

func (n *fakeNetwork) Connect(remote domain.PeerID, h domain.ConnHandler) (domain.Conn, error) {
	c := &fakeConn{remote: remote, h: h}
	n.mu.Lock()
	n.dials[remote]++
	n.conns = append(n.conns, c)
	n.mu.Unlock()
	return c, nil
}

func (n *fakeNetwork) Close() error { return nil }

func (n *fakeNetwork) dialCount(remote domain.PeerID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dials[remote]
}

func (n *fakeNetwork) conn(i int) *fakeConn {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i >= len(n.conns) {
		return nil
	}
	return n.conns[i]
}

// inbound simulates remote dialling us and returns the accepted connection.
func (n *fakeNetwork) inbound(remote domain.PeerID) *fakeConn {
	n.mu.Lock()
	accept := n.accept
	n.mu.Unlock()

	c := &fakeConn{remote: remote}
	h := accept(c)
	c.mu.Lock()
	c.h = h
	c.mu.Unlock()
	h.Open()
	return c
}

type fakeConn struct {
	remote domain.PeerID

	mu     sync.Mutex
	h      domain.ConnHandler
	sent   []domain.Frame
	closed bool
}

func (c *fakeConn) RemoteID() domain.PeerID { return c.remote }

func (c *fakeConn) Send(f domain.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	c.sent = append(c.sent, f)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) handler() domain.ConnHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.h
}

func (c *fakeConn) frames() []domain.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Frame(nil), c.sent...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type notification struct{ name, preview string }

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (r *recordingNotifier) NotifyNewMessage(name, preview string) {
	r.mu.Lock()
	r.calls = append(r.calls, notification{name, preview})
	r.mu.Unlock()
}

func (r *recordingNotifier) snapshot() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.calls...)
}
