package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrInvalid    = errors.New("jwtx: invalid token")
)

// GenerateKey returns a fresh Ed25519 keypair for token signing. The
// gateway runs with an ephemeral key by default; restarting invalidates
// outstanding access tokens, which refresh recovers from.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: key generation: %w", err)
	}
	return pub, priv, nil
}

// Signer signs session claims with a single Ed25519 key.
type Signer struct {
	kid string
	key ed25519.PrivateKey
}

// NewSigner wraps an Ed25519 private key. kid is embedded in the token
// header so a verifier can reject tokens from a previous key generation.
func NewSigner(kid string, key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	return &Signer{kid: kid, key: key}, nil
}

func (s *Signer) KID() string { return s.kid }

// Sign turns claims into a compact signed JWT string.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Verifier validates gateway-issued tokens against a single public key.
type Verifier struct {
	kid    string
	pub    ed25519.PublicKey
	issuer string
	leeway time.Duration
}

// NewVerifier builds a Verifier expecting tokens signed with kid and issued
// by issuer. A small leeway absorbs clock skew between gateway replicas.
func NewVerifier(kid string, pub ed25519.PublicKey, issuer string) (*Verifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return &Verifier{kid: kid, pub: pub, issuer: issuer, leeway: 30 * time.Second}, nil
}

// Verify parses and validates token, returning its claims on success.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, ErrInvalid
		}
		kid, _ := t.Header["kid"].(string)
		if kid != v.kid {
			return nil, ErrUnknownKID
		}
		return v.pub, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithLeeway(v.leeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
	)
	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	case errors.Is(err, ErrUnknownKID):
		return Claims{}, ErrUnknownKID
	default:
		return Claims{}, ErrInvalid
	}
}
