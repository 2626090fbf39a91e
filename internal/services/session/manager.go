package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

const previewRunes = 64

var (
	// ErrEmptyContent is returned when sending an empty message.
	ErrEmptyContent = errors.New("message content must not be empty")
	// ErrNoRecipient is returned when sending without a recipient.
	ErrNoRecipient = errors.New("recipient must not be empty")
	// ErrNotMedia is returned by SendMedia for the text kind.
	ErrNotMedia = errors.New("not a media kind")
	// ErrManagerClosed is returned once Close has been called.
	ErrManagerClosed = errors.New("session manager closed")
	// ErrSessionClosed is the cause reported for frames still queued when a
	// session ends without a transport error.
	ErrSessionClosed = errors.New("session closed before queued frames were written")
)

// ContactLookup resolves display names for notifications.
type ContactLookup interface {
	Get(id domain.PeerID) (domain.Contact, bool)
}

// Manager owns every peer session of the local identity.
type Manager struct {
	self     domain.PeerID
	network  domain.PeerNetwork
	messages domain.MessageLog
	contacts ContactLookup
	notifier domain.Notifier
	clock    clock.Clock
	metrics  *Metrics
	log      *logrus.Entry
	onError  func(error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[domain.PeerID]*session
	side     map[*session]struct{}
	ended    map[domain.PeerID]error
	closed   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithContacts sets the directory used to name senders in notifications.
func WithContacts(c ContactLookup) Option { return func(m *Manager) { m.contacts = c } }

// WithNotifier sets the sink for received-message notifications.
func WithNotifier(n domain.Notifier) Option { return func(m *Manager) { m.notifier = n } }

// WithClock sets the time source for message timestamps.
func WithClock(c clock.Clock) Option { return func(m *Manager) { m.clock = c } }

// WithMetrics sets the counters updated by the manager.
func WithMetrics(mt *Metrics) Option { return func(m *Manager) { m.metrics = mt } }

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option { return func(m *Manager) { m.log = l } }

// WithErrorHandler receives storage and connection errors that happen off
// the caller's goroutine.
func WithErrorHandler(fn func(error)) Option { return func(m *Manager) { m.onError = fn } }

// New returns a manager running on network and recording into messages.
// It starts accepting inbound connections immediately.
func New(network domain.PeerNetwork, messages domain.MessageLog, opts ...Option) *Manager {
	m := &Manager{
		self:     network.MyAddress(),
		network:  network,
		messages: messages,
		clock:    clock.New(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		sessions: make(map[domain.PeerID]*session),
		side:     make(map[*session]struct{}),
		ended:    make(map[domain.PeerID]error),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	m.log = m.log.WithFields(logrus.Fields{"component": "session", "self": m.self})
	m.ctx, m.cancel = context.WithCancel(context.Background())
	network.Accept(m.accept)
	return m
}

// Self returns the local peer id.
func (m *Manager) Self() domain.PeerID { return m.self }

// Send records a text message to recipient as sent and queues it for delivery.
// The returned message is already in the log when Send returns, whether or
// not the peer is ever reached.
func (m *Manager) Send(ctx context.Context, content string, recipient domain.PeerID) (domain.Message, error) {
	if content == "" {
		return domain.Message{}, ErrEmptyContent
	}
	return m.send(ctx, recipient, domain.KindText, domain.Frame{Type: domain.FrameMessage, Content: content})
}

// SendMedia inlines data as a data URI and sends it like Send.
func (m *Manager) SendMedia(ctx context.Context, data []byte, kind domain.MessageKind, recipient domain.PeerID) (domain.Message, error) {
	if !kind.IsMedia() {
		return domain.Message{}, ErrNotMedia
	}
	uri, err := EncodeDataURI(data)
	if err != nil {
		return domain.Message{}, err
	}
	return m.send(ctx, recipient, kind, domain.Frame{Type: domain.FrameMedia, MediaType: kind, Content: uri})
}

func (m *Manager) send(ctx context.Context, recipient domain.PeerID, kind domain.MessageKind, frame domain.Frame) (domain.Message, error) {
	if recipient == "" {
		return domain.Message{}, ErrNoRecipient
	}
	if m.isClosed() {
		return domain.Message{}, ErrManagerClosed
	}
	msg, err := m.newMessage(m.self, recipient, frame.Content, kind, domain.StatusSent)
	if err != nil {
		return domain.Message{}, err
	}
	if err := m.messages.Append(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	m.metrics.message(domain.StatusSent, kind)
	m.log.WithFields(logrus.Fields{"peer": recipient, "id": msg.ID, "type": kind}).Debug("message queued")

	if err := m.dispatch(recipient, frame); err != nil {
		return msg, &domain.ConnectionError{Peer: recipient, Err: err}
	}
	return msg, nil
}

// dispatch hands frame to the live session for peer, starting one if none
// exists. Holding m.mu makes the lookup-or-create atomic, so concurrent
// sends to a new peer share one connection attempt.
func (m *Manager) dispatch(peer domain.PeerID, frame domain.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	s, ok := m.sessions[peer]
	if !ok {
		s = newSession(m, peer, nil)
		m.sessions[peer] = s
		delete(m.ended, peer)
		m.wg.Add(1)
		go s.run(m.ctx)
	}
	s.queue.push(event{kind: evSend, frame: frame})
	return nil
}

// Flush waits until every frame queued for peer so far has been written to
// the transport, the session fails or ctx is done. With no live session it
// returns the failure of the last session to peer, if any, once.
func (m *Manager) Flush(ctx context.Context, peer domain.PeerID) error {
	m.mu.Lock()
	s, ok := m.sessions[peer]
	if !ok {
		err := m.ended[peer]
		if err != nil {
			m.ended[peer] = nil
		}
		m.mu.Unlock()
		return err
	}
	done := make(chan error, 1)
	s.queue.push(event{kind: evFlush, done: done})
	m.mu.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports the state of the session with peer. A peer that was never
// contacted is idle.
func (m *Manager) State(peer domain.PeerID) domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[peer]; ok {
		return s.State()
	}
	if _, ok := m.ended[peer]; ok {
		return domain.SessionClosed
	}
	return domain.SessionIdle
}

// Close stops every session and waits for them to finish. Frames not yet
// written are dropped. The network itself is left open.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.log.Debug("session manager closed")
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// accept adopts an inbound connection as the peer's session, or keeps it as
// a receive-only side session when one is already live.
func (m *Manager) accept(conn domain.Conn) domain.ConnHandler {
	peer := conn.RemoteID()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return domain.ConnHandler{}
	}
	s := newSession(m, peer, conn)
	if _, live := m.sessions[peer]; live {
		m.side[s] = struct{}{}
	} else {
		m.sessions[peer] = s
		delete(m.ended, peer)
	}
	m.wg.Add(1)
	go s.run(m.ctx)
	m.mu.Unlock()

	m.log.WithField("peer", peer).Debug("accepted connection")
	return s.handler()
}

// detachLocked removes s from the manager. A side session of the same peer,
// if any, is promoted to be its live session. It reports whether s was the
// peer's live session and none replaced it. Callers hold m.mu.
func (m *Manager) detachLocked(s *session) bool {
	delete(m.side, s)
	if m.sessions[s.peer] != s {
		return false
	}
	delete(m.sessions, s.peer)
	for other := range m.side {
		if other.peer == s.peer {
			delete(m.side, other)
			m.sessions[s.peer] = other
			return false
		}
	}
	return true
}

// receive turns an inbound frame into a logged message and a notification.
func (m *Manager) receive(peer domain.PeerID, frame domain.Frame) {
	kind, ok := inboundKind(frame)
	if !ok {
		m.metrics.Dropped.Inc()
		m.log.WithFields(logrus.Fields{"peer": peer, "type": frame.Type}).Debug("dropping frame")
		return
	}
	msg, err := m.newMessage(peer, m.self, frame.Content, kind, domain.StatusReceived)
	if err != nil {
		m.log.WithError(err).Error("allocate message id")
		return
	}
	if err := m.messages.Append(context.Background(), msg); err != nil {
		m.log.WithError(err).WithField("peer", peer).Error("store received message")
		m.report(err)
		return
	}
	m.metrics.message(domain.StatusReceived, kind)
	m.log.WithFields(logrus.Fields{"peer": peer, "id": msg.ID, "type": kind}).Debug("message received")
	if m.notifier != nil {
		m.notifier.NotifyNewMessage(m.displayName(peer), preview(msg))
	}
}

func inboundKind(f domain.Frame) (domain.MessageKind, bool) {
	if f.Content == "" {
		return "", false
	}
	switch f.Type {
	case domain.FrameMessage:
		return domain.KindText, true
	case domain.FrameMedia:
		if f.MediaType.IsMedia() && strings.HasPrefix(f.Content, "data:") {
			return f.MediaType, true
		}
	}
	return "", false
}

func (m *Manager) displayName(peer domain.PeerID) string {
	if m.contacts != nil {
		if c, ok := m.contacts.Get(peer); ok && c.DisplayName != "" {
			return c.DisplayName
		}
	}
	return string(peer)
}

func preview(msg domain.Message) string {
	if msg.Kind.IsMedia() {
		return "[" + string(msg.Kind) + "]"
	}
	if utf8.RuneCountInString(msg.Content) <= previewRunes {
		return msg.Content
	}
	runes := []rune(msg.Content)
	return string(runes[:previewRunes]) + "…"
}

func (m *Manager) newMessage(from, to domain.PeerID, content string, kind domain.MessageKind, status domain.MessageStatus) (domain.Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         id.String(),
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		Timestamp:  m.clock.Now().UTC(),
		Status:     status,
		Kind:       kind,
	}, nil
}

func (m *Manager) report(err error) {
	if m.onError != nil {
		m.onError(err)
	}
}
