package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// StorageKey is the key the contact set is persisted under.
const StorageKey = "contacts"

// ErrInvalidContact is returned when upserting a contact without an id.
var ErrInvalidContact = errors.New("contact id must not be empty")

// Directory is the set of known contacts keyed by id.
type Directory struct {
	kv    domain.KV
	clock clock.Clock
	log   *logrus.Entry

	mu       sync.RWMutex
	contacts map[domain.PeerID]domain.Contact
}

// Option configures a Directory.
type Option func(*Directory)

// WithClock sets the time source stamped on newly added contacts.
func WithClock(c clock.Clock) Option { return func(d *Directory) { d.clock = c } }

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option { return func(d *Directory) { d.log = l } }

// New returns an empty directory persisting through kv. Call Load to read
// the stored set.
func New(kv domain.KV, opts ...Option) *Directory {
	d := &Directory{
		kv:       kv,
		clock:    clock.New(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		contacts: make(map[domain.PeerID]domain.Contact),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithField("component", "contacts")
	return d
}

// Load replaces the in-memory view with the stored set. A missing record
// yields an empty directory; a later entry with a repeated id wins.
func (d *Directory) Load(ctx context.Context) error {
	b, ok, err := d.kv.Get(ctx, StorageKey)
	if err != nil {
		return err
	}
	next := make(map[domain.PeerID]domain.Contact)
	if ok {
		var list []domain.Contact
		if err := json.Unmarshal(b, &list); err != nil {
			return &domain.StorageError{Op: "decode", Key: StorageKey, Err: err}
		}
		for _, c := range list {
			if c.ID == "" {
				continue
			}
			next[c.ID] = c
		}
	}

	d.mu.Lock()
	d.contacts = next
	d.mu.Unlock()
	d.log.WithField("count", len(next)).Debug("contacts loaded")
	return nil
}

// List returns all contacts ordered by display name, then id.
func (d *Directory) List() []domain.Contact {
	d.mu.RLock()
	out := slices.Collect(maps.Values(d.contacts))
	d.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Contact) int {
		if c := strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// Get returns the contact with id.
func (d *Directory) Get(id domain.PeerID) (domain.Contact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.contacts[id]
	return c, ok
}

// Upsert inserts c or overwrites the contact with the same id. The original
// AddedAt is kept when c does not carry one.
func (d *Directory) Upsert(ctx context.Context, c domain.Contact) error {
	if c.ID == "" {
		return ErrInvalidContact
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if c.AddedAt.IsZero() {
		if prev, ok := d.contacts[c.ID]; ok && !prev.AddedAt.IsZero() {
			c.AddedAt = prev.AddedAt
		} else {
			c.AddedAt = d.clock.Now().UTC()
		}
	}
	next := maps.Clone(d.contacts)
	next[c.ID] = c
	if err := d.persist(ctx, next); err != nil {
		return err
	}
	d.contacts = next
	d.log.WithField("contact", c.ID).Info("contact saved")
	return nil
}

// Delete removes the contact with id. Deleting an unknown id is a no-op.
func (d *Directory) Delete(ctx context.Context, id domain.PeerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.contacts[id]; !ok {
		return nil
	}
	next := maps.Clone(d.contacts)
	delete(next, id)
	if err := d.persist(ctx, next); err != nil {
		return err
	}
	d.contacts = next
	d.log.WithField("contact", id).Info("contact deleted")
	return nil
}

// persist writes set as a JSON array sorted by id. Callers hold d.mu.
func (d *Directory) persist(ctx context.Context, set map[domain.PeerID]domain.Contact) error {
	list := slices.SortedFunc(maps.Values(set), func(a, b domain.Contact) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	if list == nil {
		list = []domain.Contact{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return d.kv.Set(ctx, StorageKey, b)
}

var _ domain.ContactDirectory = (*Directory)(nil)
