package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWrapOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := middleware.Wrap(http.NotFoundHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestLoggingRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := middleware.Logging(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
}

func TestCors(t *testing.T) {
	t.Parallel()

	h := middleware.Cors("https://play.example")(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodOptions, "/game", nil)
	req.Header.Set("Origin", "https://play.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://play.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionAuth(t *testing.T) {
	t.Parallel()

	tokens := config.NewSessionTokensWithSecret([]byte(strings.Repeat("k", 32)), time.Hour)
	router := mux.NewRouter()
	sub := router.PathPrefix("/game/{id}").Subrouter()
	sub.Use(mux.MiddlewareFunc(middleware.SessionAuth(discard, tokens)))
	sub.Methods(http.MethodPost).Path("/move").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.SessionClaims(r.Context())
		require.True(t, ok)
		w.Write([]byte(claims.ID))
	})

	token, err := tokens.Sign(7)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"valid", "/game/7/move", "Bearer " + token, http.StatusOK},
		{"query token", "/game/7/move?token=" + token, "", http.StatusOK},
		{"other session", "/game/8/move", "Bearer " + token, http.StatusUnauthorized},
		{"missing", "/game/7/move", "", http.StatusUnauthorized},
		{"garbage", "/game/7/move", "Bearer nope", http.StatusUnauthorized},
		{"bad id", "/game/x/move", "Bearer " + token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
