package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/bind"
)

type banInput struct {
	UserID string   `json:"userId" validate:"required"`
	Days   *float64 `json:"days"   validate:"required,gt=0"`
}

func TestJSONDecodesAndValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"u1","days":1.5}`))
	var in banInput

	errs, err := bind.JSON(req, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1.5, *in.Days)
}

func TestJSONValidationErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userId":"u1","days":0}`))
	var in banInput

	errs, err := bind.JSON(req, &in)
	require.NoError(t, err)
	assert.Equal(t, "days must be greater than 0", errs["days"])
}

func TestJSONMalformed(t *testing.T) {
	for _, body := range []string{"", "{", `{"days":"x"}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var in banInput
		_, err := bind.JSON(req, &in)
		assert.Error(t, err, body)
	}
}
