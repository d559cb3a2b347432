package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		algorithm string
		want      string
	}{
		{SHA256, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{SHA512, "9b71d224bd62f3785d96d46ad3ea3d73319bfbc2890caadae2dff72519673ca72323c3d99ba5c11d7c7acc6e14b8c5da0c4663475c2e5c3adef46f73bcdec043"},
		{"SHA256", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			got, err := Sum(tt.algorithm, []byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSumUnsupported(t *testing.T) {
	_, err := Sum("etag", []byte("hello"))
	assert.Error(t, err)
	assert.False(t, IsContentAlgorithm("etag"))
	assert.True(t, IsContentAlgorithm(SHA512))
}

func TestVerify(t *testing.T) {
	ok, err := Verify(SHA256, "2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(SHA256, "00", []byte("hello"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParsePrefixed(t *testing.T) {
	alg, val, ok := ParsePrefixed("SHA256:abcd")
	require.True(t, ok)
	assert.Equal(t, "sha256", alg)
	assert.Equal(t, "abcd", val)

	for _, bad := range []string{"", "abcd", ":abcd", "sha256:"} {
		_, _, ok := ParsePrefixed(bad)
		assert.False(t, ok, bad)
	}
}
