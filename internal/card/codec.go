package card

import (
	"encoding/json"
	"fmt"

	"saxiib/internal/domain"
)

const (
	fieldID        = "id"
	fieldName      = "name"
	fieldPublicKey = "publicKey"
)

// Encode returns the text form of c. All three fields must be non-empty.
func Encode(c domain.ContactCard) (string, error) {
	if err := Validate(c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode card: %w", err)
	}
	return string(b), nil
}

// Validate reports the first missing field of c as an InvalidFormat error.
func Validate(c domain.ContactCard) error {
	switch {
	case c.ID == "":
		return &domain.DecodeError{Kind: domain.InvalidFormat, Field: fieldID}
	case c.DisplayName == "":
		return &domain.DecodeError{Kind: domain.InvalidFormat, Field: fieldName}
	case c.PublicKey == "":
		return &domain.DecodeError{Kind: domain.InvalidFormat, Field: fieldPublicKey}
	}
	return nil
}

// Decode parses scanned or pasted text into a contact. Text that is not a
// JSON object fails with ErrMalformedPayload; an object missing a field or
// carrying an empty or non-string value fails with ErrInvalidFormat.
func Decode(text string) (domain.Contact, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.Contact{}, &domain.DecodeError{Kind: domain.MalformedPayload, Err: err}
	}
	if raw == nil {
		return domain.Contact{}, &domain.DecodeError{Kind: domain.MalformedPayload}
	}

	var out [3]string
	for i, field := range []string{fieldID, fieldName, fieldPublicKey} {
		s, ok := raw[field].(string)
		if !ok || s == "" {
			return domain.Contact{}, &domain.DecodeError{Kind: domain.InvalidFormat, Field: field}
		}
		out[i] = s
	}
	return domain.Contact{
		ID:          domain.PeerID(out[0]),
		DisplayName: out[1],
		PublicKey:   out[2],
	}, nil
}
