// Package idempotency derives the Idempotency-Key header value attached to
// outgoing replies so a redelivered reply for the same submission is
// collapsed by the origin instance.
package idempotency

import (
	"encoding/base64"

	"golang.org/x/crypto/sha3"
)

// DefaultLength is the number of characters kept from the digest.
const DefaultLength = 32

// Digest maps arbitrary text to a printable digest.
type Digest func(text string) string

// SHA3Base64 hashes text with SHA3-224 and encodes it as standard base64.
func SHA3Base64(text string) string {
	sum := sha3.Sum224([]byte(text))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Deriver turns an (account handle, status id) pair into a short key.
type Deriver struct {
	digest Digest
	length int
}

// NewDeriver returns a Deriver using digest. A nil digest selects SHA3Base64
// and a non-positive length selects DefaultLength.
func NewDeriver(digest Digest, length int) *Deriver {
	if digest == nil {
		digest = SHA3Base64
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Deriver{digest: digest, length: length}
}

// Derive returns the key for handle and statusID. The tab separator keeps
// ("ab", "c") and ("a", "bc") apart.
func (d *Deriver) Derive(handle, statusID string) string {
	key := d.digest(handle + "\t" + statusID)
	if len(key) > d.length {
		key = key[:d.length]
	}
	return key
}
