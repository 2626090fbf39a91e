package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"saxiib/internal/card"
	"saxiib/internal/domain"
	"saxiib/internal/relay"
	"saxiib/internal/services/contacts"
	"saxiib/internal/services/identity"
	"saxiib/internal/services/message"
	"saxiib/internal/services/session"
	"saxiib/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   Config
	Log      *logrus.Entry
	KV       domain.KV
	Identity *identity.Service
	Contacts *contacts.Directory
	Messages *message.Log
	Renderer *card.Renderer
	Registry *prometheus.Registry

	network  domain.PeerNetwork
	sessions *session.Manager
}

// NewWire opens storage, builds the offline services and loads the contact
// directory and message history.
func NewWire(ctx context.Context, cfg Config, logger *logrus.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	log := logrus.NewEntry(logger)

	kv, err := store.Open(cfg.Store, cfg.DataDir(), store.WithBadgerLogger(log.WithField("component", "badger")))
	if err != nil {
		return nil, err
	}
	if cfg.Passphrase != "" {
		kv = store.NewSealedKV(kv, cfg.Passphrase, []string{identity.StorageKey})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	w := &Wire{
		Config:   cfg,
		Log:      log,
		KV:       kv,
		Identity: identity.New(kv, identity.WithLogger(log)),
		Contacts: contacts.New(kv, contacts.WithLogger(log)),
		Messages: message.New(kv, message.WithLogger(log)),
		Renderer: card.NewRenderer(card.DefaultStyle),
		Registry: reg,
	}
	if err := w.Contacts.Load(ctx); err != nil {
		return nil, multierr.Append(err, kv.Close())
	}
	if err := w.Messages.LoadAll(ctx); err != nil {
		return nil, multierr.Append(err, kv.Close())
	}
	return w, nil
}

// Online connects to the relay as the local identity and starts the session
// manager. Calling it again returns the running manager.
func (w *Wire) Online(ctx context.Context, notifier domain.Notifier) (*session.Manager, error) {
	if w.sessions != nil {
		return w.sessions, nil
	}
	id, err := w.Identity.GetOrCreateIdentity(ctx)
	if err != nil {
		return nil, err
	}
	network, err := relay.Dial(ctx, w.Config.RelayURL, id.ID, w.Log)
	if err != nil {
		return nil, err
	}
	return w.attach(network, notifier), nil
}

// OnlineVia starts the session manager on an already connected network.
func (w *Wire) OnlineVia(network domain.PeerNetwork, notifier domain.Notifier) *session.Manager {
	if w.sessions != nil {
		return w.sessions
	}
	return w.attach(network, notifier)
}

func (w *Wire) attach(network domain.PeerNetwork, notifier domain.Notifier) *session.Manager {
	opts := []session.Option{
		session.WithContacts(w.Contacts),
		session.WithMetrics(session.NewMetrics(w.Registry)),
		session.WithLogger(w.Log),
		session.WithErrorHandler(func(err error) {
			w.Log.WithError(err).Warn("background failure")
		}),
	}
	if notifier != nil {
		opts = append(opts, session.WithNotifier(notifier))
	}
	w.network = network
	w.sessions = session.New(network, w.Messages, opts...)
	return w.sessions
}

// Close stops the session manager, the network and the storage backend.
func (w *Wire) Close() error {
	var err error
	if w.sessions != nil {
		err = multierr.Append(err, w.sessions.Close())
	}
	if w.network != nil {
		err = multierr.Append(err, w.network.Close())
	}
	if cerr := w.KV.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("close store: %w", cerr))
	}
	return err
}
