package domain

import (
	"errors"
	"fmt"
)

// DecodeKind classifies why contact-card text was rejected.
type DecodeKind int

const (
	// MalformedPayload means the text is not a structured document.
	MalformedPayload DecodeKind = iota + 1
	// InvalidFormat means the document parsed but lacks a required field.
	InvalidFormat
)

var (
	ErrMalformedPayload = errors.New("malformed contact payload")
	ErrInvalidFormat    = errors.New("invalid contact format")
	ErrPeerUnavailable  = errors.New("peer unavailable")
)

// DecodeError is returned for scanned or pasted text that is not a contact card.
type DecodeError struct {
	Kind  DecodeKind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Kind == InvalidFormat && e.Field != "":
		return fmt.Sprintf("%v: missing %q", ErrInvalidFormat, e.Field)
	case e.Kind == InvalidFormat:
		return ErrInvalidFormat.Error()
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", ErrMalformedPayload, e.Err)
	}
	return ErrMalformedPayload.Error()
}

// Is lets errors.Is match the kind sentinels.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrMalformedPayload:
		return e.Kind == MalformedPayload
	case ErrInvalidFormat:
		return e.Kind == InvalidFormat
	}
	return false
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError reports a failed read or write of the local store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConnectionError reports a peer connection that failed to open or broke.
type ConnectionError struct {
	Peer PeerID
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.Peer, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CaptureError reports that the code-scan capability could not start or broke.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("capture failed: %v", e.Err) }

func (e *CaptureError) Unwrap() error { return e.Err }
