package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the subset of a verified Google ID token we rely on.
type GoogleIdentity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// IDTokenVerifier validates a third-party identity token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

// GoogleVerifier checks ID tokens against Google's public keys for one
// OAuth client ID.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier returns a verifier for tokens issued to clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

// WithValidator swaps the payload validator, for tests.
func (g *GoogleVerifier) WithValidator(fn func(ctx context.Context, token, audience string) (*idtoken.Payload, error)) *GoogleVerifier {
	g.validate = fn
	return g
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if g.clientID == "" {
		return nil, errors.New("auth: google client id is not configured")
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	payload, err := g.validate(ctx, token, g.clientID)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	id := &GoogleIdentity{
		Subject:    payload.Subject,
		Email:      claimString(payload.Claims, "email"),
		GivenName:  claimString(payload.Claims, "given_name"),
		FamilyName: claimString(payload.Claims, "family_name"),
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", ErrInvalidToken)
	}
	return id, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
