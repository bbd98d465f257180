package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
)

// Strategy names.
const (
	StrategySignup = "signup"
	StrategyLogin  = "login"
	StrategyGoogle = "google-id-token"
	StrategyJWT    = "jwt"
)

const (
	msgBadCredentials = "Email or password is incorrect"
	msgInvalidToken   = "Invalid or expired token"
)

// Credentials carries whatever a strategy needs; each reads its own fields.
type Credentials struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Address   string
	// Token is a Google ID token for google-id-token and a bearer token for jwt.
	Token string
}

// AuthResult is what every strategy yields. Token is empty for jwt.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

// Strategy authenticates one kind of credential.
type Strategy func(ctx context.Context, c Credentials) (*AuthResult, error)

// Strategies is the registry of authentication strategies, built once at
// startup and injected into the auth service.
type Strategies map[string]Strategy

// AuthDeps are the collaborators the built-in strategies need.
type AuthDeps struct {
	Users  repositories.UserStore
	Tokens *auth.Issuer
	Google auth.IDTokenVerifier
	// EnforceBans makes the jwt strategy refuse users with an active ban.
	EnforceBans bool
	Now         func() time.Time
}

// NewStrategies registers signup, login, google-id-token and jwt.
func NewStrategies(d AuthDeps) Strategies {
	if d.Now == nil {
		d.Now = time.Now
	}
	return Strategies{
		StrategySignup: d.signup,
		StrategyLogin:  d.login,
		StrategyGoogle: d.google,
		StrategyJWT:    d.bearer,
	}
}

// Run executes the named strategy and counts the outcome.
func (s Strategies) Run(ctx context.Context, name string, c Credentials) (*AuthResult, error) {
	strategy, ok := s[name]
	if !ok {
		return nil, apperr.Internal("Internal Server Error", fmt.Errorf("auth strategy %q is not registered", name))
	}
	res, err := strategy(ctx, c)
	metrics.RecordAuth(name, err)
	return res, err
}

func (d AuthDeps) issue(u *models.User) (*AuthResult, error) {
	token, err := d.Tokens.Issue(u.Email)
	if err != nil {
		return nil, apperr.Internal("Internal Server Error", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (d AuthDeps) signup(ctx context.Context, c Credentials) (*AuthResult, error) {
	hash, err := hashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:     strings.TrimSpace(c.Email),
		Password:  hash,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Address:   c.Address,
		Role:      models.RoleUser,
	}
	if err := d.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.BadRequest("Email is already registered")
		}
		return nil, apperr.Internal("Internal Server Error", err)
	}
	return d.issue(u)
}

// login reports an unknown email and a wrong password identically.
func (d AuthDeps) login(ctx context.Context, c Credentials) (*AuthResult, error) {
	u, err := d.Users.FindByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, apperr.Internal("Internal Server Error", err)
	}
	if !auth.CheckPassword(u.Password, c.Password) {
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	return d.issue(u)
}

// google finds or creates the account behind a verified Google ID token.
func (d AuthDeps) google(ctx context.Context, c Credentials) (*AuthResult, error) {
	if d.Google == nil {
		return nil, apperr.Internal("Internal Server Error", errors.New("google sign-in is not configured"))
	}
	id, err := d.Google.Verify(ctx, c.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, apperr.Unauthorized("Invalid Google token")
		}
		return nil, apperr.Internal("Internal Server Error", err)
	}

	u, err := d.Users.FindByEmail(ctx, id.Email)
	switch {
	case err == nil:
		return d.issue(u)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, apperr.Internal("Internal Server Error", err)
	}

	u = &models.User{
		Email:     id.Email,
		FirstName: id.GivenName,
		LastName:  id.FamilyName,
		Role:      models.RoleUser,
	}
	if err := d.Users.Create(ctx, u); err != nil {
		// Lost a race with a concurrent first sign-in.
		if errors.Is(err, repositories.ErrDuplicate) {
			if u, err = d.Users.FindByEmail(ctx, id.Email); err == nil {
				return d.issue(u)
			}
		}
		return nil, apperr.Internal("Internal Server Error", err)
	}
	logger.WithCtx(ctx).Info("user created from google sign-in", "user_id", u.ID.Hex())
	return d.issue(u)
}

func (d AuthDeps) bearer(ctx context.Context, c Credentials) (*AuthResult, error) {
	claims, err := d.Tokens.Verify(c.Token)
	if err != nil {
		return nil, apperr.Unauthorized(msgInvalidToken)
	}
	u, err := d.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.Unauthorized(msgInvalidToken)
		}
		return nil, apperr.Internal("Internal Server Error", err)
	}
	if d.EnforceBans && u.Ban.Active(d.Now()) {
		return nil, apperr.Forbidden(fmt.Sprintf("Your account is banned until %s", u.Ban.Expired.UTC().Format(time.RFC3339)))
	}
	return &AuthResult{User: u}, nil
}

// hashPassword maps an over-long password to BadRequest; validation counts
// characters while bcrypt limits bytes.
func hashPassword(plain string) (string, error) {
	hash, err := auth.HashPassword(plain)
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", apperr.BadRequest(fmt.Sprintf("password must not exceed %d bytes", auth.MaxPasswordBytes))
	case err != nil:
		return "", apperr.Internal("Internal Server Error", err)
	}
	return hash, nil
}

// ─── Service ─────────────────────────────────────────────────────────────────

type SignupInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address"`
}

type SigninInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type GoogleSigninInput struct {
	IDToken string `json:"id_token" validate:"required"`
}

// AuthService is the entry point controllers and the Authenticate middleware use.
type AuthService struct {
	strategies Strategies
}

func NewAuthService(s Strategies) *AuthService {
	return &AuthService{strategies: s}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	return s.strategies.Run(ctx, StrategySignup, Credentials{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address:   in.Address,
	})
}

func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	return s.strategies.Run(ctx, StrategyLogin, Credentials{Email: in.Email, Password: in.Password})
}

func (s *AuthService) SigninWithGoogle(ctx context.Context, in GoogleSigninInput) (*AuthResult, error) {
	return s.strategies.Run(ctx, StrategyGoogle, Credentials{Token: in.IDToken})
}

// Authenticate implements middleware.Authenticator with the jwt strategy.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*middleware.Principal, error) {
	res, err := s.strategies.Run(ctx, StrategyJWT, Credentials{Token: token})
	if err != nil {
		return nil, err
	}
	u := res.User
	return &middleware.Principal{ID: u.ID.Hex(), Email: u.Email, Role: u.Role, User: u}, nil
}

// CurrentUser returns the account attached by Authenticate.
func CurrentUser(p *middleware.Principal) (*models.User, error) {
	if p == nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	u, ok := p.User.(*models.User)
	if !ok {
		return nil, apperr.Internal("Internal Server Error", errors.New("principal carries no user record"))
	}
	return u, nil
}
