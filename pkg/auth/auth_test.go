package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := auth.NewIssuer("secret")

	token, err := issuer.Issue("jane@example.com")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(4*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewIssuer("secret").WithClock(func() time.Time { return start })

	token, err := issuer.Issue("jane@example.com")
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return start.Add(4*time.Hour - time.Second) })
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return start.Add(4*time.Hour + time.Second) })
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	token, err := auth.NewIssuer("one").Issue("jane@example.com")
	require.NoError(t, err)

	_, err = auth.NewIssuer("two").Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.NewIssuer("one").Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, auth.CheckPassword(hash, "s3cret!"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("", "s3cret!"))
}

func TestGoogleVerifierReadsProfileClaims(t *testing.T) {
	var gotAudience string
	v := auth.NewGoogleVerifier("client-123").WithValidator(func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		return &idtoken.Payload{
			Subject: "google-sub",
			Claims: map[string]interface{}{
				"email":       "g@example.com",
				"given_name":  "Grace",
				"family_name": "Hopper",
			},
		}, nil
	})

	id, err := v.Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "client-123", gotAudience)
	assert.Equal(t, &auth.GoogleIdentity{Subject: "google-sub", Email: "g@example.com", GivenName: "Grace", FamilyName: "Hopper"}, id)
}

func TestGoogleVerifierFailures(t *testing.T) {
	failing := auth.NewGoogleVerifier("client-123").WithValidator(func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("bad signature")
	})
	_, err := failing.Verify(context.Background(), "id-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = failing.Verify(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.NewGoogleVerifier("").Verify(context.Background(), "id-token")
	assert.Error(t, err)
}
