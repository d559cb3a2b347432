package hashutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// Content hash algorithms understood by Sum.
const (
	SHA256 = "sha256"
	SHA512 = "sha512"
)

func newHash(algorithm string) (hash.Hash, bool) {
	switch strings.ToLower(algorithm) {
	case SHA256:
		return sha256.New(), true
	case SHA512:
		return sha512.New(), true
	default:
		return nil, false
	}
}

// IsContentAlgorithm reports whether algorithm names a content hash whose
// digest can be recomputed from the bytes alone.
func IsContentAlgorithm(algorithm string) bool {
	_, ok := newHash(algorithm)
	return ok
}

// Sum returns the lowercase hex digest of data.
func Sum(algorithm string, data []byte) (string, error) {
	h, ok := newHash(algorithm)
	if !ok {
		return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether data hashes to the expected hex digest. Case is ignored.
func Verify(algorithm, expected string, data []byte) (bool, error) {
	got, err := Sum(algorithm, data)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(got, expected), nil
}

// ParsePrefixed splits an "algorithm:hex" digest such as "sha256:ab12".
func ParsePrefixed(digest string) (algorithm, value string, ok bool) {
	algorithm, value, ok = strings.Cut(digest, ":")
	if !ok || algorithm == "" || value == "" {
		return "", "", false
	}
	return strings.ToLower(algorithm), value, true
}
