package pkce_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tidewave/pkce"
)

func TestNewChallenge(t *testing.T) {
	t.Parallel()

	c, err := pkce.NewChallenge()
	require.NoError(t, err)

	assert.Len(t, c.Verifier, 43)
	assert.Len(t, c.ClientUniqueKey, 16)

	sum := sha256.Sum256([]byte(c.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), c.CodeChallenge)

	c2, err := pkce.NewChallenge()
	require.NoError(t, err)
	assert.NotEqual(t, c.Verifier, c2.Verifier)
}
