package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Challenge holds the S256 code verifier/challenge pair for a single PKCE
// authorization attempt, plus the per-client key the authorize endpoint wants.
type Challenge struct {
	Verifier        string
	CodeChallenge   string
	ClientUniqueKey string
}

const Method = "S256"

func NewChallenge() (*Challenge, error) {
	verifierBytes := make([]byte, 32)
	if _, err := rand.Read(verifierBytes); nil != err {
		return nil, fmt.Errorf("failed to generate code verifier: %v", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	keyBytes := make([]byte, 8)
	if _, err := rand.Read(keyBytes); nil != err {
		return nil, fmt.Errorf("failed to generate client unique key: %v", err)
	}

	return &Challenge{
		Verifier:        verifier,
		CodeChallenge:   challenge,
		ClientUniqueKey: hex.EncodeToString(keyBytes),
	}, nil
}
