package cache

import (
	"strings"

	"github.com/arthur-debert/serverwrap/pkg/internal/hashutil"
)

// Token fingerprints a remote artifact. Value is only comparable between
// tokens of the same Algorithm.
type Token struct {
	Algorithm string
	Value     string
}

// SHA512 returns a token for a hex SHA-512 digest.
func SHA512(hexDigest string) Token {
	return Token{Algorithm: hashutil.SHA512, Value: strings.ToLower(hexDigest)}
}

// SHA256 returns a token for a hex SHA-256 digest.
func SHA256(hexDigest string) Token {
	return Token{Algorithm: hashutil.SHA256, Value: strings.ToLower(hexDigest)}
}

// Equal reports whether both tokens use the same algorithm and value.
// Algorithms compare case-insensitively.
func (t Token) Equal(other Token) bool {
	return strings.EqualFold(t.Algorithm, other.Algorithm) && t.Value == other.Value
}

// IsZero reports whether the token carries no fingerprint.
func (t Token) IsZero() bool {
	return t.Algorithm == "" && t.Value == ""
}

// IsContentHash reports whether the token is a digest of the artifact bytes,
// so downloads can be verified against it.
func (t Token) IsContentHash() bool {
	return hashutil.IsContentAlgorithm(t.Algorithm)
}

func (t Token) String() string {
	return strings.ToLower(t.Algorithm) + ":" + t.Value
}

// id is a short, filesystem-safe directory name derived from the token.
func (t Token) id() string {
	sum, _ := hashutil.Sum(hashutil.SHA256, []byte(t.String()))
	return sum[:16]
}
