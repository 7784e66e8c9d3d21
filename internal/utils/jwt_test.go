package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
    tok, err := NewAccessToken("secret", 42, "CREATOR", true, 14)
    require.NoError(t, err)
    require.NotEmpty(t, tok.Token)
    assert.WithinDuration(t, time.Now().UTC().Add(14*24*time.Hour), tok.Exp, time.Minute)

    parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte("secret"), nil
    })
    require.NoError(t, err)
    claims, ok := parsed.Claims.(jwt.MapClaims)
    require.True(t, ok)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "CREATOR", claims["role"])
    assert.Equal(t, true, claims["admin"])
}

func TestAccessTokenWrongSecret(t *testing.T) {
    tok, err := NewAccessToken("secret", 1, "BRAND", false, 1)
    require.NoError(t, err)
    _, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte("other"), nil
    })
    assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
    a, err := NewRefreshToken(30)
    require.NoError(t, err)
    b, err := NewRefreshToken(30)
    require.NoError(t, err)
    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), a.Exp, time.Minute)
}

func TestHashRefreshRawDeterministic(t *testing.T) {
    assert.Equal(t, HashRefreshRaw("abc"), HashRefreshRaw("abc"))
    assert.NotEqual(t, HashRefreshRaw("abc"), HashRefreshRaw("abd"))
    assert.Len(t, HashRefreshRaw("abc"), 64)
}

func TestRandomHex(t *testing.T) {
    s, err := RandomHex(32)
    require.NoError(t, err)
    assert.Len(t, s, 64)
}
