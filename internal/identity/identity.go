// Package identity verifies identity-provider tokens presented to the
// sync endpoint. Tokens are PASETO v4.local, encrypted with a symmetric
// key shared with the provider.
package identity

import (
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
)

const (
	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// Claims are the identity assertions carried in a provider token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type Claims struct {
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
}

// Config configures the verifier.
type Config struct {
	KeyHex   string // Shared symmetric key, 64 hex characters
	Issuer   string // Required iss claim
	Audience string // Required aud claim
}

// Verifier verifies provider tokens.
type Verifier struct {
	symmetricKey paseto.V4SymmetricKey
	issuer       string
	audience     string
}

// NewVerifier creates a verifier from the shared provider key.
// Configuration problems are reported as provider misconfiguration so
// callers can distinguish them from bad tokens.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, domainerrors.ProviderMisconfigured("identity issuer and audience must be set")
	}

	if len(cfg.KeyHex) != keyHexSize {
		return nil, domainerrors.ProviderMisconfigured(
			fmt.Sprintf("identity key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(cfg.KeyHex)))
	}

	keyBytes, err := hex.DecodeString(cfg.KeyHex)
	if err != nil {
		return nil, domainerrors.ProviderMisconfigured("identity key is not valid hex").WithCause(err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, domainerrors.ProviderMisconfigured("identity key rejected").WithCause(err)
	}

	return &Verifier{
		symmetricKey: key,
		issuer:       cfg.Issuer,
		audience:     cfg.Audience,
	}, nil
}

// Verify verifies and parses a provider token.
// Returns the claims if valid, or an error if they're invalid or expired.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()

	parser.AddRule(paseto.ForAudience(v.audience))
	parser.AddRule(paseto.IssuedBy(v.issuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(v.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid token").WithCause(err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, domainerrors.Unauthorized("unreadable token claims").WithCause(err)
	}

	if claims.Subject == "" {
		return nil, domainerrors.Unauthorized("token has no subject")
	}

	return &claims, nil
}

// Issue creates a provider token for the given claims, valid for ttl.
// Used by the seed tool and local development where this server doubles
// as its own identity provider.
func (v *Verifier) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(v.issuer)
	token.SetAudience(v.audience)
	token.SetSubject(claims.Subject)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", claims.Email)
	if claims.Name != "" {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set("name", claims.Name)
	}
	if claims.Picture != "" {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set("picture", claims.Picture)
	}
	if claims.Provider != "" {
		//nolint:errcheck // Token.Set only errors on invalid types, which we control
		_ = token.Set("provider", claims.Provider)
	}

	return token.V4Encrypt(v.symmetricKey, nil), nil
}
