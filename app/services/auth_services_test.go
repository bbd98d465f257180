package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

type fakeGoogle struct {
	id  *auth.GoogleIdentity
	err error
}

func (f fakeGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return f.id, f.err
}

func newAuth(s *repotest.Stores, deps services.AuthDeps) *services.AuthService {
	deps.Users = s.Users
	if deps.Tokens == nil {
		deps.Tokens = newIssuer()
	}
	return services.NewAuthService(services.NewStrategies(deps))
}

func TestSignupHashesPasswordAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	svc := newAuth(s, services.AuthDeps{})

	res, err := svc.Signup(ctx, services.SignupInput{
		Email: "ana@example.com", Password: "secret", FirstName: "Ana", LastName: "Lee",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret", res.User.Password)
	assert.True(t, auth.CheckPassword(res.User.Password, "secret"))

	claims, err := newIssuer().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	_, err = svc.Signup(ctx, services.SignupInput{Email: "ana@example.com", Password: "x", FirstName: "A", LastName: "B"})
	requireKind(t, err, apperr.KindBadRequest, "Email is already registered")
}

func TestSigninDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	seedUser(t, s, "ana@example.com", "secret", models.RoleUser)
	svc := newAuth(s, services.AuthDeps{})

	res, err := svc.Signin(ctx, services.SigninInput{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, errWrongPassword := svc.Signin(ctx, services.SigninInput{Email: "ana@example.com", Password: "nope"})
	_, errUnknownEmail := svc.Signin(ctx, services.SigninInput{Email: "bob@example.com", Password: "secret"})
	requireKind(t, errWrongPassword, apperr.KindUnauthorized, "Email or password is incorrect")
	requireKind(t, errUnknownEmail, apperr.KindUnauthorized, "Email or password is incorrect")
}

func TestGoogleSigninFindsOrCreates(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	svc := newAuth(s, services.AuthDeps{Google: fakeGoogle{id: &auth.GoogleIdentity{
		Subject: "123", Email: "gina@example.com", GivenName: "Gina", FamilyName: "Park",
	}}})

	first, err := svc.SigninWithGoogle(ctx, services.GoogleSigninInput{IDToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, "Gina", first.User.FirstName)
	assert.Equal(t, "Park", first.User.LastName)
	assert.Empty(t, first.User.Password)

	second, err := svc.SigninWithGoogle(ctx, services.GoogleSigninInput{IDToken: "token"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestGoogleSigninRejectsInvalidToken(t *testing.T) {
	s := repotest.New()
	svc := newAuth(s, services.AuthDeps{Google: fakeGoogle{err: errors.Join(auth.ErrInvalidToken, errors.New("bad audience"))}})

	_, err := svc.SigninWithGoogle(context.Background(), services.GoogleSigninInput{IDToken: "forged"})
	requireKind(t, err, apperr.KindUnauthorized, "Invalid Google token")
}

func TestAuthenticateResolvesPrincipal(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	u := seedUser(t, s, "admin@example.com", "secret", models.RoleAdmin)
	svc := newAuth(s, services.AuthDeps{})

	token, err := newIssuer().Issue(u.Email)
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), p.ID)
	assert.Equal(t, models.RoleAdmin, p.Role)

	current, err := services.CurrentUser(p)
	require.NoError(t, err)
	assert.Equal(t, u.Email, current.Email)

	_, err = svc.Authenticate(ctx, "garbage")
	requireKind(t, err, apperr.KindUnauthorized, "Invalid or expired token")

	orphan, err := newIssuer().Issue("ghost@example.com")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, orphan)
	requireKind(t, err, apperr.KindUnauthorized, "Invalid or expired token")
}

func TestAuthenticateEnforcesActiveBans(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := repotest.New()
	u := seedUser(t, s, "ana@example.com", "secret", models.RoleUser)
	_, err := s.Users.SetBan(ctx, u.ID.Hex(), models.Ban{Reason: "spam", Created: now, Expired: now.Add(48 * time.Hour)})
	require.NoError(t, err)

	token, err := newIssuer().Issue(u.Email)
	require.NoError(t, err)

	lenient := newAuth(s, services.AuthDeps{Now: func() time.Time { return now }})
	_, err = lenient.Authenticate(ctx, token)
	require.NoError(t, err, "bans are informational unless enforced")

	strict := newAuth(s, services.AuthDeps{EnforceBans: true, Now: func() time.Time { return now }})
	_, err = strict.Authenticate(ctx, token)
	requireKind(t, err, apperr.KindForbidden, "Your account is banned until 2024-05-03T12:00:00Z")

	later := newAuth(s, services.AuthDeps{EnforceBans: true, Now: func() time.Time { return now.Add(72 * time.Hour) }})
	_, err = later.Authenticate(ctx, token)
	require.NoError(t, err, "expired bans no longer apply")
}

func TestSignupRejectsPasswordBeyondBcryptLimit(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	svc := newAuth(s, services.AuthDeps{})

	// 36 two-byte runes: within the character limit, over bcrypt's 72 bytes.
	long := strings.Repeat("é", 36) + "x"
	assert.Empty(t, validate.Struct(services.SignupInput{
		Email: "ana@example.com", Password: long, FirstName: "Ana", LastName: "Lee",
	}))

	_, err := svc.Signup(ctx, services.SignupInput{
		Email: "ana@example.com", Password: long, FirstName: "Ana", LastName: "Lee",
	})
	requireKind(t, err, apperr.KindBadRequest, "password must not exceed 72 bytes")

	_, err = s.Users.FindByEmail(ctx, "ana@example.com")
	assert.Error(t, err)

	errs := validate.Struct(services.SignupInput{
		Email: "ana@example.com", Password: strings.Repeat("a", 80), FirstName: "Ana", LastName: "Lee",
	})
	assert.Equal(t, "password must not exceed 72 characters", errs["password"])
}
