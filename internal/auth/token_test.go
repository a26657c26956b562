package auth

import (
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueVerify(t *testing.T) {
	tm := NewTokenManager("super-secret", DefaultTokenTTL)

	for _, id := range []int64{1, 7, 123456789} {
		tok, exp, err := tm.Issue(id)
		require.NoError(t, err)
		require.NotEmpty(t, tok)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

		got, err := tm.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestTokenManager_Payload(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManager("secret", DefaultTokenTTL)
	tm.now = fixedClock(issued)

	tok, _, err := tm.Issue(42)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, issued, claims.IssuedAt.Time.UTC())
	assert.Equal(t, issued.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestTokenManager_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tm := NewTokenManager("secret", DefaultTokenTTL)
	tm.now = fixedClock(issued)

	tok, _, err := tm.Issue(5)
	require.NoError(t, err)

	tm.now = fixedClock(issued.Add(23 * time.Hour))
	got, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	tm.now = fixedClock(issued.Add(24*time.Hour + time.Second))
	_, err = tm.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tok, _, err := NewTokenManager("right-secret", time.Hour).Issue(3)
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	tm := NewTokenManager("k", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	tm := NewTokenManager("k", time.Hour)
	for _, tok := range []string{none, hs512} {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenManager_RejectsBadSubjectOrMissingExpiry(t *testing.T) {
	now := time.Now()
	sign := func(c jwt.RegisteredClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}
	exp := jwt.NewNumericDate(now.Add(time.Hour))

	tokens := []string{
		sign(jwt.RegisteredClaims{Subject: "john", ExpiresAt: exp}),
		sign(jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}),
		sign(jwt.RegisteredClaims{Subject: strconv.Itoa(-4), ExpiresAt: exp}),
		sign(jwt.RegisteredClaims{Subject: "9"}),
	}

	tm := NewTokenManager("k", time.Hour)
	for _, tok := range tokens {
		_, err := tm.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
