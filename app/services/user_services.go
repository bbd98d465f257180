package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

const (
	banDay = 24 * time.Hour
	// maxBanDays keeps created + days within time.Duration range.
	maxBanDays = 36500
)

type UserListInput struct {
	Page        int
	RowsPerPage int
	Sort        string
	FirstName   string
	LastName    string
	Email       string
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// ProfileInput is a partial profile update; omitted fields are kept.
type ProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1"`
	Email     *string `json:"email" validate:"omitnil,email"`
	Address   *string `json:"address"`
}

type BanInput struct {
	UserID string   `json:"userId" validate:"required,objectid"`
	Reason string   `json:"reason"`
	Days   *float64 `json:"days" validate:"required,gt=0,max=36500"`
}

type UserService struct {
	users  repositories.UserStore
	tokens *auth.Issuer
	events *event.Bus
	now    func() time.Time
}

func NewUserService(users repositories.UserStore, tokens *auth.Issuer, events *event.Bus) *UserService {
	return &UserService{users: users, tokens: tokens, events: events, now: time.Now}
}

// WithClock replaces the time source used for bans, for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

func (s *UserService) List(ctx context.Context, in UserListInput) (orm.Page[models.User], error) {
	page, err := s.users.List(ctx, repositories.UserFilter{
		ListParams: repositories.ListParams{Page: in.Page, PerPage: in.RowsPerPage, Sort: in.Sort},
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
	})
	if err != nil {
		return page, apperr.Internal("Internal Server Error", err)
	}
	if len(page.Items) == 0 {
		return page, apperr.NotFound("Users not found")
	}
	return page, nil
}

// ChangePassword verifies the old password, stores the new hash and returns
// a fresh token.
func (s *UserService) ChangePassword(ctx context.Context, u *models.User, in ChangePasswordInput) (string, error) {
	if in.NewPassword == in.OldPassword {
		return "", apperr.BadRequest("New password must be different from old password")
	}
	if !auth.CheckPassword(u.Password, in.OldPassword) {
		return "", apperr.BadRequest("Invalid Request")
	}

	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return "", err
	}
	if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.BadRequest("Invalid Request")
		}
		return "", apperr.Internal("Internal Server Error", err)
	}
	return s.token(u.Email)
}

// UpdateProfile applies in and returns the updated user with a token for its
// (possibly new) email.
func (s *UserService) UpdateProfile(ctx context.Context, u *models.User, in ProfileInput) (*AuthResult, error) {
	updated, err := s.users.UpdateProfile(ctx, u.ID, repositories.ProfileUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Address:   in.Address,
	})
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, apperr.BadRequest("Email is already registered")
	case errors.Is(err, repositories.ErrNotFound):
		return nil, apperr.NotFound("User not found")
	case err != nil:
		return nil, apperr.Internal("Internal Server Error", err)
	}

	token, err := s.token(updated.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: updated, Token: token}, nil
}

// Ban suspends a user for in.Days days from now. An existing ban is replaced.
func (s *UserService) Ban(ctx context.Context, in BanInput) (*models.Ban, error) {
	if in.Days == nil || !(*in.Days > 0 && *in.Days <= maxBanDays) {
		return nil, apperr.BadRequest(fmt.Sprintf("days must be greater than 0 and not greater than %d", maxBanDays))
	}
	now := s.now().UTC()
	ban := models.Ban{
		Reason:  in.Reason,
		Created: now,
		Expired: now.Add(time.Duration(*in.Days * float64(banDay))),
	}
	if _, err := s.users.SetBan(ctx, in.UserID, ban); err != nil {
		return nil, userError(err)
	}
	s.events.FireAsync(ctx, EventUserBanned, BanEvent{UserID: in.UserID, Ban: &ban})
	return &ban, nil
}

// Unban removes the ban field entirely.
func (s *UserService) Unban(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.ClearBan(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}
	s.events.FireAsync(ctx, EventUserUnbanned, BanEvent{UserID: userID})
	return u, nil
}

// SweepExpiredBans lifts every ban that has run out and reports how many.
func (s *UserService) SweepExpiredBans(ctx context.Context) (int64, error) {
	n, err := s.users.ClearExpiredBans(ctx, s.now().UTC())
	if err != nil {
		return 0, apperr.Internal("Internal Server Error", err)
	}
	return n, nil
}

func (s *UserService) token(email string) (string, error) {
	t, err := s.tokens.Issue(email)
	if err != nil {
		return "", apperr.Internal("Internal Server Error", err)
	}
	return t, nil
}

func userError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal("Internal Server Error", err)
}
