package identity

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"saxiib/internal/card"
	"saxiib/internal/crypto"
	"saxiib/internal/domain"
)

// StorageKey is the key the identity is persisted under.
const StorageKey = "identity"

const (
	idPrefix      = "user_"
	idSuffixLen   = 9
	namePrefix    = "User_"
	namePrefixLen = 8
	base36        = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ErrEmptyDisplayName is returned when renaming to a blank name.
var ErrEmptyDisplayName = errors.New("display name must not be empty")

// Service owns the local identity.
type Service struct {
	kv     domain.KV
	clock  clock.Clock
	random io.Reader
	log    *logrus.Entry

	mu     sync.Mutex
	cached *domain.Identity
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for new identity ids.
func WithClock(c clock.Clock) Option { return func(s *Service) { s.clock = c } }

// WithRandom sets the entropy source for keys and id suffixes.
func WithRandom(r io.Reader) Option { return func(s *Service) { s.random = r } }

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option { return func(s *Service) { s.log = l } }

// New returns an identity service persisting through kv.
func New(kv domain.KV, opts ...Option) *Service {
	s := &Service{
		kv:     kv,
		clock:  clock.New(),
		random: rand.Reader,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "identity")
	return s
}

// GetOrCreateIdentity returns the stored identity, creating and persisting a
// new one on first use.
func (s *Service) GetOrCreateIdentity(ctx context.Context) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, found, err := s.current(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	if found {
		return id, nil
	}

	id, err = s.generate()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("generate identity: %w", err)
	}
	if err := s.save(ctx, id); err != nil {
		return domain.Identity{}, err
	}
	s.log.WithFields(logrus.Fields{
		"id":          id.ID,
		"fingerprint": crypto.FingerprintText(id.PublicKey),
	}).Info("created identity")
	return id, nil
}

// Identity returns the stored identity without creating one.
func (s *Service) Identity(ctx context.Context) (domain.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

// UpdateDisplayName renames the local identity and refreshes its card. It
// reports false and changes nothing when no identity exists yet.
func (s *Service) UpdateDisplayName(ctx context.Context, name string) (domain.Identity, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Identity{}, false, ErrEmptyDisplayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, found, err := s.current(ctx)
	if err != nil || !found {
		return domain.Identity{}, false, err
	}
	id.DisplayName = name
	if id.Card, err = card.Encode(id.ContactCard()); err != nil {
		return domain.Identity{}, false, err
	}
	if err := s.save(ctx, id); err != nil {
		return domain.Identity{}, false, err
	}
	s.log.WithField("name", name).Info("display name updated")
	return id, true, nil
}

// Fingerprint returns a short fingerprint of the identity's public key.
func (s *Service) Fingerprint(ctx context.Context) (domain.Fingerprint, error) {
	id, err := s.GetOrCreateIdentity(ctx)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.FingerprintText(id.PublicKey)), nil
}

// current returns the cached identity, loading it from storage on first use.
// Callers hold s.mu.
func (s *Service) current(ctx context.Context) (domain.Identity, bool, error) {
	if s.cached != nil {
		return *s.cached, true, nil
	}
	b, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil || !ok {
		return domain.Identity{}, false, err
	}
	var id domain.Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return domain.Identity{}, false, &domain.StorageError{Op: "decode", Key: StorageKey, Err: err}
	}
	if err := crypto.CheckKeyPair(id.PublicKey, id.SecretKey); err != nil {
		return domain.Identity{}, false, &domain.StorageError{Op: "decode", Key: StorageKey, Err: err}
	}
	if id.Card == "" {
		if id.Card, err = card.Encode(id.ContactCard()); err != nil {
			return domain.Identity{}, false, &domain.StorageError{Op: "decode", Key: StorageKey, Err: err}
		}
	}
	s.cached = &id
	return id, true, nil
}

func (s *Service) save(ctx context.Context, id domain.Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, StorageKey, b); err != nil {
		return err
	}
	s.cached = &id
	return nil
}

func (s *Service) generate() (domain.Identity, error) {
	kp, err := crypto.GenerateKeyPair(s.random)
	if err != nil {
		return domain.Identity{}, err
	}
	defer kp.Wipe()

	suffix, err := randomBase36(s.random, idSuffixLen)
	if err != nil {
		return domain.Identity{}, err
	}
	peerID := fmt.Sprintf("%s%d_%s", idPrefix, s.clock.Now().UnixMilli(), suffix)

	id := domain.Identity{
		ID:          domain.PeerID(peerID),
		DisplayName: namePrefix + peerID[:namePrefixLen],
		PublicKey:   crypto.B64(kp.Public[:]),
		SecretKey:   crypto.B64(kp.Secret[:]),
	}
	if id.Card, err = card.Encode(id.ContactCard()); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

func randomBase36(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return string(buf), nil
}

var _ domain.IdentityService = (*Service)(nil)
