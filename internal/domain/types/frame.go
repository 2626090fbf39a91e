package types

// FrameType tags a frame sent over a peer connection.
type FrameType string

const (
	FrameMessage FrameType = "message"
	FrameMedia   FrameType = "media"
)

// Frame is the unit of data exchanged on a peer connection.
//
// Text frames carry the message in Content. Media frames carry a data URI in
// Content and the media kind in MediaType.
type Frame struct {
	Type      FrameType   `json:"type"`
	MediaType MessageKind `json:"mediaType,omitempty"`
	Content   string      `json:"content"`
}
