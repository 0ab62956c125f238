package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campushq/forumdigest/internal/pkg/jwt"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

type stubVerifier struct {
	claims jwt.Claims
	err    error
}

func (s stubVerifier) Generate(int64, string) (string, error) { return "", nil }

func (s stubVerifier) Verify(string) (jwt.Claims, error) { return s.claims, s.err }

func TestMiddlewareAuthentication(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetAuth(r.Context()) == nil {
			http.Error(w, "no claims", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("AcceptsBearerHeader", func(t *testing.T) {
		mw := middlewareAuthentication(stubVerifier{claims: jwt.Claims{UserID: 7}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/digest/preferences", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AcceptsTokenQueryParameter", func(t *testing.T) {
		mw := middlewareAuthentication(stubVerifier{claims: jwt.Claims{UserID: 7}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/digest/preferences?token=deep-link", nil)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("RejectsMissingCredentials", func(t *testing.T) {
		mw := middlewareAuthentication(stubVerifier{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/digest/preferences", nil)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("SkipsPublicEndpoints", func(t *testing.T) {
		public := map[string]map[string]struct{}{
			http.MethodGet: {"/health": {}},
		}
		mw := middlewareAuthentication(stubVerifier{}, public)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		ok := false
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok = true
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rec, req)

		require.True(t, ok)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
