package token

import (
	"crypto/rand"
	"errors"

	"github.com/jxskiss/base62"

	"github.com/faithinsite/core/internal/errs"
)

// VerificationTokenBytes is the entropy fed into a verification token.
// 24 random bytes encode to roughly 32 base62 characters, which fits in
// a single TXT record string.
const VerificationTokenBytes = 24

var ErrGenerateToken = errors.New("failed to generate token")

// NewVerificationToken returns a crypto-random opaque token encoded as base62.
func NewVerificationToken() (string, error) {
	buf := make([]byte, VerificationTokenBytes)

	_, err := rand.Read(buf)
	if err != nil {
		return "", errs.Wrap(ErrGenerateToken, err)
	}

	return base62.EncodeToString(buf), nil
}
