// Package hasher turns plaintext passwords into fixed-width, comparable
// digests using Argon2id keyed with a process-wide salt.
package hasher

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

// ErrEmptySalt is returned by New when no salt is configured.
var ErrEmptySalt = errors.New("password salt is empty")

// Params are the Argon2id cost parameters. Digests produced with different
// parameters never match each other.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams is used unless overridden with WithParams.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

type Option func(*Hasher)

// WithParams overrides the Argon2id parameters. Zero fields keep defaults.
func WithParams(p Params) Option {
	return func(h *Hasher) {
		if p.Time != 0 {
			h.params.Time = p.Time
		}
		if p.Memory != 0 {
			h.params.Memory = p.Memory
		}
		if p.Threads != 0 {
			h.params.Threads = p.Threads
		}
		if p.KeyLen != 0 {
			h.params.KeyLen = p.KeyLen
		}
	}
}

// Hasher is safe for concurrent use.
type Hasher struct {
	salt   []byte
	params Params
}

func New(salt string, opts ...Option) (*Hasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	h := &Hasher{salt: []byte(salt), params: DefaultParams}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Hash returns the lowercase hex digest of plaintext. The result is always
// 2*KeyLen characters long.
func (h *Hasher) Hash(plaintext string) string {
	key := argon2.IDKey([]byte(plaintext), h.salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return hex.EncodeToString(key)
}

// Matches reports whether digest is the digest of plaintext. The comparison
// runs in constant time with respect to the digest contents.
func (h *Hasher) Matches(plaintext, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(plaintext)), []byte(digest)) == 1
}

// DigestLen is the width of every digest produced by h.
func (h *Hasher) DigestLen() int {
	return int(h.params.KeyLen) * 2
}
