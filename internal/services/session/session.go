package session

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// session is one peer connection and the frames waiting for it. Everything
// below queue is owned by the run goroutine.
type session struct {
	m       *Manager
	peer    domain.PeerID
	inbound bool
	queue   *queue
	state   atomic.Int32
	log     *logrus.Entry

	conn    domain.Conn
	pending []domain.Frame
	waiters []chan error
}

// newSession returns an outbound session when conn is nil, or wraps an
// accepted inbound connection.
func newSession(m *Manager, peer domain.PeerID, conn domain.Conn) *session {
	s := &session{
		m:       m,
		peer:    peer,
		inbound: conn != nil,
		queue:   newQueue(),
		conn:    conn,
	}
	dir := "outbound"
	if s.inbound {
		dir = "inbound"
	}
	s.log = m.log.WithFields(logrus.Fields{"peer": peer, "dir": dir})
	s.setState(domain.SessionConnecting)
	return s
}

func (s *session) State() domain.SessionState { return domain.SessionState(s.state.Load()) }

func (s *session) setState(st domain.SessionState) { s.state.Store(int32(st)) }

// handler turns transport callbacks into queued events.
func (s *session) handler() domain.ConnHandler {
	return domain.ConnHandler{
		OnOpen:  func() { s.queue.push(event{kind: evOpen}) },
		OnData:  func(f domain.Frame) { s.queue.push(event{kind: evData, frame: f}) },
		OnClose: func(err error) { s.queue.push(event{kind: evClosed, err: err}) },
	}
}

func (s *session) run(ctx context.Context) {
	defer s.m.wg.Done()

	if !s.inbound {
		s.m.metrics.Connects.Inc()
		s.log.Debug("connecting")
		conn, err := s.m.network.Connect(s.peer, s.handler())
		if err != nil {
			s.close(err)
			return
		}
		s.conn = conn
	}

	for {
		ev, ok := s.queue.pop(ctx)
		if !ok {
			s.close(nil)
			return
		}
		if stop, err := s.handle(ev); stop {
			s.close(err)
			return
		}
	}
}

// handle applies one event. It reports stop when the session must close.
func (s *session) handle(ev event) (bool, error) {
	switch ev.kind {
	case evOpen:
		if s.State() != domain.SessionOpen {
			s.setState(domain.SessionOpen)
			s.log.Info("session open")
		}
		if err := s.flush(); err != nil {
			return true, err
		}
	case evSend:
		s.pending = append(s.pending, ev.frame)
		if s.State() == domain.SessionOpen {
			if err := s.flush(); err != nil {
				return true, err
			}
		}
	case evFlush:
		if len(s.pending) == 0 {
			ev.done <- nil
		} else {
			s.waiters = append(s.waiters, ev.done)
		}
	case evData:
		s.m.receive(s.peer, ev.frame)
	case evClosed:
		return true, ev.err
	}
	return false, nil
}

// flush writes pending frames in order and releases flush waiters once none remain.
func (s *session) flush() error {
	for len(s.pending) > 0 {
		if err := s.conn.Send(s.pending[0]); err != nil {
			return err
		}
		s.pending = s.pending[1:]
	}
	for _, w := range s.waiters {
		w <- nil
	}
	s.waiters = nil
	return nil
}

// close ends the session. Received frames still queued are processed;
// unsent frames are dropped and reported as one connection error.
func (s *session) close(cause error) {
	s.setState(domain.SessionClosed)

	// Detaching and draining under the manager lock guarantees no send can
	// land in the queue after it has been drained.
	m := s.m
	m.mu.Lock()
	primary := m.detachLocked(s)
	var received []domain.Frame
	for _, ev := range s.queue.drain() {
		switch ev.kind {
		case evSend:
			s.pending = append(s.pending, ev.frame)
		case evFlush:
			s.waiters = append(s.waiters, ev.done)
		case evData:
			received = append(received, ev.frame)
		}
	}
	var failure error
	if len(s.pending) > 0 {
		if cause == nil {
			cause = ErrSessionClosed
		}
		failure = &domain.ConnectionError{Peer: s.peer, Err: cause}
	}
	if primary {
		// a failure handed to flush waiters counts as reported
		if len(s.waiters) > 0 {
			m.ended[s.peer] = nil
		} else {
			m.ended[s.peer] = failure
		}
	}
	m.mu.Unlock()

	for _, f := range received {
		m.receive(s.peer, f)
	}

	switch {
	case failure != nil:
		s.log.WithError(cause).WithField("dropped", len(s.pending)).Warn("session closed with unsent frames")
		m.report(failure)
	case cause != nil:
		s.log.WithError(cause).Info("session closed")
	default:
		s.log.Debug("session closed")
	}

	for _, w := range s.waiters {
		w <- failure
	}
	s.waiters = nil
	s.pending = nil
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.log.WithError(err).Debug("close connection")
		}
	}
}
