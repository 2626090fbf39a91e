package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"saxiib/internal/util/memzero"
)

// KeySize is the length of X25519 public and secret keys.
const KeySize = 32

var errKeyMismatch = errors.New("secret key does not match public key")

// KeyPair is a long-term X25519 key pair usable with nacl/box.
type KeyPair struct {
	Public [KeySize]byte
	Secret [KeySize]byte
}

// GenerateKeyPair returns a fresh key pair read from rnd, or crypto/rand when rnd is nil.
func GenerateKeyPair(rnd io.Reader) (KeyPair, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	pub, sec, err := box.GenerateKey(rnd)
	if err != nil {
		return KeyPair{}, err
	}
	kp := KeyPair{Public: *pub, Secret: *sec}
	memzero.Zero(sec[:])
	return kp, nil
}

// PublicFromSecret derives the X25519 public key for secret.
func PublicFromSecret(secret [KeySize]byte) ([KeySize]byte, error) {
	var pub [KeySize]byte
	pb, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// CheckKeyPair verifies that the text-encoded secret belongs to the text-encoded public key.
func CheckKeyPair(publicKey, secretKey string) error {
	pub, err := DecodeKey(publicKey)
	if err != nil {
		return err
	}
	sec, err := DecodeKey(secretKey)
	if err != nil {
		return err
	}
	defer memzero.Zero(sec[:])
	derived, err := PublicFromSecret(sec)
	if err != nil {
		return err
	}
	if derived != pub {
		return errKeyMismatch
	}
	return nil
}

// Wipe zeroes the secret half of k.
func (k *KeyPair) Wipe() { memzero.Zero(k.Secret[:]) }
