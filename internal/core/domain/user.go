package domain

import "time"

// User models an account held in the credential store. UserKey is the opaque
// login identifier (an email address in practice); PasswordHash, Salt,
// Iterations and Digest together describe the stored stretched credential.
// Iterations and Digest are recorded per user because the configured values
// may change over time and old records keep the ones they were hashed with.
type User struct {
	ID           string    `json:"id"`
	UserKey      string    `json:"user_key"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Iterations   int       `json:"-"`
	Digest       string    `json:"-"`
	LocaleKey    string    `json:"locale_key,omitempty"`
	Admin        bool      `json:"admin,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credential is the write-side projection of a user. Password holds plaintext
// only until the hash is derived; Hashed marks that Password already carries
// the derived hash so update paths never stretch a stored hash a second time.
// The flag lives on this projection, not on User, so it can never round-trip
// into the store.
type Credential struct {
	UserKey   string
	Name      string
	Password  string
	LocaleKey string
	Admin     bool

	Hashed     bool
	Salt       string
	Iterations int
	Digest     string
}
