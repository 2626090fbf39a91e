package types

import "time"

// MessageKind is the payload type of a message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindVideo MessageKind = "video"
	KindVoice MessageKind = "voice"
)

// Valid reports whether k is one of the known kinds.
func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo, KindVoice:
		return true
	}
	return false
}

// IsMedia reports whether k carries an inline data URI rather than text.
func (k MessageKind) IsMedia() bool {
	return k == KindImage || k == KindVideo || k == KindVoice
}

// MessageStatus records the direction of a message relative to the local user.
type MessageStatus string

const (
	StatusSent     MessageStatus = "sent"
	StatusReceived MessageStatus = "received"
)

// Valid reports whether s is sent or received.
func (s MessageStatus) Valid() bool { return s == StatusSent || s == StatusReceived }

// Message is one entry of the local conversation history.
//
// For media kinds Content is a data URI. Sent messages have SenderID equal to
// the local identity; received messages have ReceiverID equal to it.
type Message struct {
	ID         string        `json:"id"`
	SenderID   PeerID        `json:"senderId"`
	ReceiverID PeerID        `json:"receiverId"`
	Content    string        `json:"content"`
	Timestamp  time.Time     `json:"timestamp"`
	Status     MessageStatus `json:"status"`
	Kind       MessageKind   `json:"type"`
}

// Peer returns the other party of m as seen from self.
func (m Message) Peer(self PeerID) PeerID {
	if m.SenderID == self {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether peer is the sender or the receiver of m.
func (m Message) Involves(peer PeerID) bool {
	return m.SenderID == peer || m.ReceiverID == peer
}
