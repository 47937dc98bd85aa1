package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"github.com/teamhub/gatekeeper/internal/core/domain"
)

const (
	saltBytes = 16
	keyBytes  = 32
)

// Hasher derives and verifies stretched password hashes. The digest is
// selected by name at construction so a misconfigured primitive fails once,
// at startup, rather than on every login.
type Hasher struct {
	name       string
	digest     func() hash.Hash
	iterations int
}

// NewHasher builds a Hasher for the named digest ("sha256" or "sha512") and
// the configured iteration count. Returns domain.ErrHashingUnavailable for
// an unrecognized digest name.
func NewHasher(digest string, iterations int) (*Hasher, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("hash iterations must be >= 1, got %d", iterations)
	}
	h, err := digestFunc(digest)
	if err != nil {
		return nil, err
	}
	return &Hasher{name: digest, digest: h, iterations: iterations}, nil
}

func digestFunc(name string) (func() hash.Hash, error) {
	switch name {
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("digest %q: %w", name, domain.ErrHashingUnavailable)
	}
}

// Iterations returns the configured iteration count used for new hashes.
func (h *Hasher) Iterations() int {
	return h.iterations
}

// Derive stretches password with salt over the given iteration count and
// returns the hex-encoded result. Deterministic for identical inputs.
func (h *Hasher) Derive(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, h.digest)
	return hex.EncodeToString(key)
}

// Verify recomputes the hash for password and compares it to storedHash in
// constant time. Returns false on any mismatch, including a storedHash that
// is not valid hex.
func (h *Hasher) Verify(password, storedHash, salt string, iterations int) bool {
	stored, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, h.digest)
	return subtle.ConstantTimeCompare(derived, stored) == 1
}

// VerifyUser verifies password against a stored credential record using the
// digest, salt and iteration count the record was hashed under, so records
// survive a configured-digest change. An empty recorded digest falls back to
// the configured one; an unrecognized recorded digest surfaces
// ErrHashingUnavailable.
func (h *Hasher) VerifyUser(password string, user *domain.User) (bool, error) {
	name := user.Digest
	if name == "" {
		name = h.name
	}
	fn, err := digestFunc(name)
	if err != nil {
		return false, err
	}
	stored, err := hex.DecodeString(user.PasswordHash)
	if err != nil {
		return false, nil
	}
	derived := pbkdf2.Key([]byte(password), []byte(user.Salt), user.Iterations, keyBytes, fn)
	return subtle.ConstantTimeCompare(derived, stored) == 1, nil
}

// NewSalt returns a fresh random salt, hex-encoded.
func (h *Hasher) NewSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EncryptCredential hashes the credential's plaintext password in place,
// generating a fresh salt and recording the iteration count and digest it
// was stretched with. A credential already marked Hashed passes through untouched, so an
// update path that round-trips a stored hash cannot stretch it again.
func (h *Hasher) EncryptCredential(cred *domain.Credential) error {
	if cred.Hashed {
		return nil
	}
	salt, err := h.NewSalt()
	if err != nil {
		return err
	}
	cred.Salt = salt
	cred.Iterations = h.iterations
	cred.Digest = h.name
	cred.Password = h.Derive(cred.Password, salt, h.iterations)
	cred.Hashed = true
	return nil
}
