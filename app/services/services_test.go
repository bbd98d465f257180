package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/event"
)

const testSecret = "test-secret"

func newIssuer() *auth.Issuer { return auth.NewIssuer(testSecret) }

// capture subscribes to name and returns a channel of fired events.
func capture(bus *event.Bus, name string) <-chan event.Event {
	ch := make(chan event.Event, 8)
	bus.Listen(name, func(_ context.Context, e event.Event) error {
		ch <- e
		return nil
	})
	return ch
}

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("event was not fired")
		return event.Event{}
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), err.Error())
	if msg != "" {
		require.Equal(t, msg, apperr.Message(err))
	}
}

func seedUser(t *testing.T, s *repotest.Stores, email, password, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, Password: hash, FirstName: "Test", LastName: "User", Role: role}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}
