package jwtx_test

import (
	"testing"
	"time"

	"github.com/fixplanhq/fixplan/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "fixplan-session"

func newPair(t *testing.T, kid string) (*jwtx.Signer, *jwtx.Verifier) {
	t.Helper()

	pub, priv, err := jwtx.GenerateKey()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner(kid, priv)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier(kid, pub, testIssuer)
	require.NoError(t, err)
	return signer, verifier
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t, "key-1")

	now := time.Now()
	claims := jwtx.NewSessionClaims(
		"user-1", "sess-1", "tenant-1", "tech@example.com", true,
		15*time.Minute, testIssuer, now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "sess-1", got.SID)
	require.Equal(t, "tenant-1", got.TID)
	require.Equal(t, "tech@example.com", got.Email)
	require.True(t, got.EmailVerified)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer, verifier := newPair(t, "key-1")

	issued := time.Now().Add(-time.Hour)
	claims := jwtx.NewSessionClaims(
		"user-1", "sess-1", "tenant-1", "tech@example.com", true,
		time.Minute, testIssuer, issued,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsWrongKID(t *testing.T) {
	t.Parallel()

	signer, _ := newPair(t, "key-old")
	_, verifier := newPair(t, "key-new")

	claims := jwtx.NewSessionClaims(
		"user-1", "sess-1", "tenant-1", "tech@example.com", true,
		time.Minute, testIssuer, time.Now(),
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, verifier := newPair(t, "key-1")

	_, err := verifier.Verify("not.a.jwt")
	require.Error(t, err)
}
