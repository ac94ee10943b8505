package encoding

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Signer authenticates protocol frames with a truncated HMAC-SHA256.
//
// Frames stay readable; the signature only proves they were produced by a
// holder of the key. A nil *Signer signs nothing and accepts everything,
// which is the default unscoped behavior.
type Signer struct {
	key []byte
}

// NewSigner creates a signer. Keys shorter than 32 bytes are stretched
// with SHA-256. An empty key returns nil (signing disabled).
func NewSigner(key []byte) *Signer {
	if len(key) == 0 {
		return nil
	}
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}
	return &Signer{key: key}
}

// Enabled reports whether the signer holds a key.
func (s *Signer) Enabled() bool {
	return s != nil
}

// Sign returns the base64url signature of data, or "" when disabled.
func (s *Signer) Sign(data []byte) string {
	if s == nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(s.mac(data))
}

// Verify checks sig against data. A disabled signer accepts any input.
func (s *Signer) Verify(data []byte, sig string) error {
	if s == nil {
		return nil
	}
	if sig == "" {
		return ErrInvalidFormat
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return ErrInvalidFormat
	}
	if !hmac.Equal(got, s.mac(data)) {
		return ErrSignatureInvalid
	}
	return nil
}

// mac returns the first 16 bytes (128 bits) of HMAC-SHA256(data).
func (s *Signer) mac(data []byte) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write(data)
	return m.Sum(nil)[:16]
}
