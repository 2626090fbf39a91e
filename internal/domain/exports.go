package domain

import (
	interfaces "saxiib/internal/domain/interfaces"
	types "saxiib/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	PeerID        = types.PeerID
	Fingerprint   = types.Fingerprint
	Identity      = types.Identity
	ContactCard   = types.ContactCard
	Contact       = types.Contact
	Message       = types.Message
	MessageKind   = types.MessageKind
	MessageStatus = types.MessageStatus
	Frame         = types.Frame
	FrameType     = types.FrameType
	SessionState  = types.SessionState
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KV               = interfaces.KV
	Conn             = interfaces.Conn
	ConnHandler      = interfaces.ConnHandler
	AcceptFunc       = interfaces.AcceptFunc
	PeerNetwork      = interfaces.PeerNetwork
	IdentityService  = interfaces.IdentityService
	ContactDirectory = interfaces.ContactDirectory
	MessageLog       = interfaces.MessageLog
	Notifier         = interfaces.Notifier
	NotifierFunc     = interfaces.NotifierFunc
)

const (
	KindText  = types.KindText
	KindImage = types.KindImage
	KindVideo = types.KindVideo
	KindVoice = types.KindVoice

	StatusSent     = types.StatusSent
	StatusReceived = types.StatusReceived

	FrameMessage = types.FrameMessage
	FrameMedia   = types.FrameMedia

	SessionIdle       = types.SessionIdle
	SessionConnecting = types.SessionConnecting
	SessionOpen       = types.SessionOpen
	SessionClosed     = types.SessionClosed
)
