package interfaces

import (
	"context"

	domaintypes "saxiib/internal/domain/types"
)

// IdentityService creates, retrieves and edits the local identity.
type IdentityService interface {
	GetOrCreateIdentity(ctx context.Context) (domaintypes.Identity, error)
	UpdateDisplayName(ctx context.Context, name string) (domaintypes.Identity, bool, error)
}

// ContactDirectory is the local set of known peers keyed by id.
type ContactDirectory interface {
	Load(ctx context.Context) error
	List() []domaintypes.Contact
	Get(id domaintypes.PeerID) (domaintypes.Contact, bool)
	Upsert(ctx context.Context, c domaintypes.Contact) error
	Delete(ctx context.Context, id domaintypes.PeerID) error
}

// MessageLog is the durable, ordered history of sent and received messages.
type MessageLog interface {
	LoadAll(ctx context.Context) error
	Append(ctx context.Context, m domaintypes.Message) error
	List() []domaintypes.Message
	ListFor(peer domaintypes.PeerID) []domaintypes.Message
}

// Notifier surfaces a newly received message to the user.
type Notifier interface {
	NotifyNewMessage(displayName, preview string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(displayName, preview string)

// NotifyNewMessage calls f.
func (f NotifierFunc) NotifyNewMessage(displayName, preview string) { f(displayName, preview) }
