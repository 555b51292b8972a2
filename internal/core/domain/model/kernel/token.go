package kernel

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"lastmile/internal/pkg/errs"
)

// tokenBytes gives 192 bits of entropy, 32 characters once encoded.
const tokenBytes = 24

// ErrTokenIsEmpty is returned when a blank token is parsed.
var ErrTokenIsEmpty = errs.NewValueIsRequiredError("token")

// Token is an opaque URL-safe credential. Customers reach their order through
// an access token and drivers reach their route through a driver token, so
// tokens are never rotated once issued.
type Token string

// NewToken draws a fresh random token.
func NewToken() Token {
	buf := make([]byte, tokenBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf)
	return Token(base64.RawURLEncoding.EncodeToString(buf))
}

// TokenFromString accepts a token received from a URL path.
func TokenFromString(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrTokenIsEmpty
	}
	if strings.ContainsAny(s, "/?#") {
		return "", errs.NewValueIsInvalidErrorWithCause("token", errors.New("token contains reserved characters"))
	}
	return Token(s), nil
}

func (t Token) String() string {
	return string(t)
}

// Prefix returns the first n characters, used to label an order in ledger
// entries without disclosing the whole credential.
func (t Token) Prefix(n int) string {
	if n >= len(t) {
		return string(t)
	}
	return string(t[:n])
}

// IsEmpty reports whether the token is blank.
func (t Token) IsEmpty() bool {
	return t == ""
}
