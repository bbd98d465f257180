package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindBadRequest:   http.StatusBadRequest,
		apperr.KindUnauthorized: http.StatusUnauthorized,
		apperr.KindForbidden:    http.StatusForbidden,
		apperr.KindNotFound:     http.StatusNotFound,
		apperr.KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOfFollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("loading order: %w", apperr.NotFound("Order not found"))

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "Order not found", apperr.Message(err))
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("socket closed")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Internal Server Error", apperr.Message(err))
	assert.False(t, apperr.Is(nil, apperr.KindInternal))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Internal("Could not save order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not save order: connection refused", err.Error())
	assert.Equal(t, "Could not save order", apperr.Message(err))
}
