package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/rbac"
)

func TestHasRole(t *testing.T) {
	cases := []struct {
		name      string
		principal *middleware.Principal
		want      int
		reached   bool
	}{
		{"admin allowed", &middleware.Principal{Role: "Admin"}, http.StatusOK, true},
		{"user forbidden", &middleware.Principal{Role: "User"}, http.StatusForbidden, false},
		{"anonymous", nil, http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			h := rbac.HasRole("Admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/ban_user", nil)
			if tc.principal != nil {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), tc.principal))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.reached, reached, "handler must not run after a refusal")
		})
	}
}
