package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Ban is an admin-imposed suspension. It is informational unless
// ENFORCE_BANS is on.
type Ban struct {
	Reason  string    `bson:"reason" json:"reason"`
	Created time.Time `bson:"created" json:"created"`
	Expired time.Time `bson:"expired" json:"expired"`
}

// Active reports whether the ban has not yet expired at now.
func (b *Ban) Active(now time.Time) bool {
	return b != nil && now.Before(b.Expired)
}

// User is an account. Password holds the bcrypt hash and is empty for
// accounts created through Google sign-in.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Ban       *Ban               `bson:"ban,omitempty" json:"ban,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSummary is the slice of a user embedded in order responses.
type UserSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
}

// Summary projects u for embedding.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Address: u.Address}
}
