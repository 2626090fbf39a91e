package types

import "time"

// ContactCard is the public triple exchanged between users, typically as a QR code.
type ContactCard struct {
	ID          PeerID `json:"id"`
	DisplayName string `json:"name"`
	PublicKey   string `json:"publicKey"`
}

// Contact is a remote peer known to the local user.
type Contact struct {
	ID          PeerID    `json:"id"`
	DisplayName string    `json:"name"`
	PublicKey   string    `json:"publicKey"`
	AddedAt     time.Time `json:"addedAt,omitempty"`
}

// Card returns the contact's public triple.
func (c Contact) Card() ContactCard {
	return ContactCard{ID: c.ID, DisplayName: c.DisplayName, PublicKey: c.PublicKey}
}
