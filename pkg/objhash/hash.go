// Package objhash provides the content-hashing and compression
// primitives shared by every object Gato persists: Blake3 digests for
// identity and integrity, Zstd for at-rest compression.
package objhash

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte Blake3 digest. It addresses every persistent
// object in the store and doubles as an integrity tag.
type Hash [32]byte

// Zero reports whether h is the all-zero hash, used to represent an
// absent reference (e.g. a commit with no parent).
func (h Hash) Zero() bool {
	return h == Hash{}
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Sum computes the Blake3 digest of data using the library's default,
// unkeyed context. Gato hashes every object's canonical payload this
// way; there is no per-domain keying, unlike schemes that separate
// chunk/file/container hash spaces.
func Sum(data []byte) Hash {
	sum := blake3.Sum256(data)
	return Hash(sum)
}

// ParseHash decodes a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("parse hash %q: got %d bytes, want %d", s, len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}
