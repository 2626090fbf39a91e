package types

// Identity is the local user's profile and long-term key pair.
//
// Card caches the encoded contact card for the public triple; it is kept
// consistent with ID, DisplayName and PublicKey whenever the identity is saved.
type Identity struct {
	ID          PeerID `json:"id"`
	DisplayName string `json:"name"`
	PublicKey   string `json:"publicKey"`
	SecretKey   string `json:"secretKey"`
	Card        string `json:"card"`
}

// ContactCard returns the public part of the identity.
func (i Identity) ContactCard() ContactCard {
	return ContactCard{ID: i.ID, DisplayName: i.DisplayName, PublicKey: i.PublicKey}
}
