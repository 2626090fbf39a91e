package message

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// StorageKey is the key the history is persisted under.
const StorageKey = "messages"

var (
	// ErrDuplicateMessage is returned when appending an id already in the log.
	ErrDuplicateMessage = errors.New("duplicate message id")
	// ErrInvalidMessage is returned for messages missing an id, kind or status.
	ErrInvalidMessage = errors.New("invalid message")
)

// Log is the ordered history of all messages.
type Log struct {
	kv  domain.KV
	log *logrus.Entry

	mu       sync.RWMutex
	messages []domain.Message
	ids      map[string]struct{}
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option { return func(m *Log) { m.log = l } }

// New returns an empty log persisting through kv. Call LoadAll to read the
// stored history.
func New(kv domain.KV, opts ...Option) *Log {
	l := &Log{
		kv:  kv,
		log: logrus.NewEntry(logrus.StandardLogger()),
		ids: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.WithField("component", "message-log")
	return l
}

// LoadAll replaces the in-memory history with the stored one.
func (l *Log) LoadAll(ctx context.Context) error {
	b, ok, err := l.kv.Get(ctx, StorageKey)
	if err != nil {
		return err
	}
	var loaded []domain.Message
	if ok {
		if loaded, err = decodeHistory(b); err != nil {
			return &domain.StorageError{Op: "decode", Key: StorageKey, Err: err}
		}
	}
	ids := make(map[string]struct{}, len(loaded))
	kept := loaded[:0]
	for _, m := range loaded {
		if _, dup := ids[m.ID]; dup {
			l.log.WithField("id", m.ID).Warn("dropping duplicate stored message")
			continue
		}
		ids[m.ID] = struct{}{}
		kept = append(kept, m)
	}
	sortByTime(kept)

	l.mu.Lock()
	l.messages = kept
	l.ids = ids
	l.mu.Unlock()
	l.log.WithField("count", len(kept)).Debug("history loaded")
	return nil
}

// Append persists m and then adds it to the in-memory history.
func (l *Log) Append(ctx context.Context, m domain.Message) error {
	if m.ID == "" || !m.Kind.Valid() || !m.Status.Valid() {
		return fmt.Errorf("%w: id=%q type=%q status=%q", ErrInvalidMessage, m.ID, m.Kind, m.Status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.ids[m.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateMessage, m.ID)
	}
	next := insertSorted(slices.Clone(l.messages), m)
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, StorageKey, b); err != nil {
		return err
	}
	l.messages = next
	l.ids[m.ID] = struct{}{}
	l.log.WithFields(logrus.Fields{
		"id":     m.ID,
		"status": m.Status,
		"type":   m.Kind,
	}).Debug("message appended")
	return nil
}

// List returns the whole history in ascending timestamp order.
func (l *Log) List() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.messages)
}

// ListFor returns the messages exchanged with peer in ascending timestamp order.
func (l *Log) ListFor(peer domain.PeerID) []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Message
	for _, m := range l.messages {
		if m.Involves(peer) {
			out = append(out, m)
		}
	}
	return out
}

// insertSorted places m after every message with an equal or earlier timestamp.
func insertSorted(list []domain.Message, m domain.Message) []domain.Message {
	i := sort.Search(len(list), func(i int) bool { return list[i].Timestamp.After(m.Timestamp) })
	return slices.Insert(list, i, m)
}

func sortByTime(list []domain.Message) {
	slices.SortStableFunc(list, func(a, b domain.Message) int { return a.Timestamp.Compare(b.Timestamp) })
}

// storedMessage mirrors domain.Message with a raw timestamp so both encodings load.
type storedMessage struct {
	ID         string               `json:"id"`
	SenderID   domain.PeerID        `json:"senderId"`
	ReceiverID domain.PeerID        `json:"receiverId"`
	Content    string               `json:"content"`
	Timestamp  json.RawMessage      `json:"timestamp"`
	Status     domain.MessageStatus `json:"status"`
	Kind       domain.MessageKind   `json:"type"`
}

func decodeHistory(b []byte) ([]domain.Message, error) {
	var raw []storedMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(raw))
	for i, r := range raw {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("message %d (%s): %w", i, r.ID, err)
		}
		kind := r.Kind
		if kind == "" {
			kind = domain.KindText
		}
		out = append(out, domain.Message{
			ID:         r.ID,
			SenderID:   r.SenderID,
			ReceiverID: r.ReceiverID,
			Content:    r.Content,
			Timestamp:  ts,
			Status:     r.Status,
			Kind:       kind,
		})
	}
	return out, nil
}

// parseTimestamp accepts an RFC 3339 string or a number of unix milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, errors.New("missing timestamp")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, err
	}
	if ms, err := n.Int64(); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(int64(f * 1000)).UTC(), nil
}

var _ domain.MessageLog = (*Log)(nil)
