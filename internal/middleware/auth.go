package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper-autoplay/internal/config"
)

var ErrInvalidToken = errors.New("missing or invalid session token")

func SessionClaims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(ctxSessionClaims).(*config.SessionClaims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	// browsers cannot set headers on a websocket handshake
	return r.URL.Query().Get("token")
}

// SessionAuth lets a request through only with a token issued for the
// session named by the {id} route variable.
func SessionAuth(log *slog.Logger, tokens *config.SessionTokens) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
			if err != nil {
				http.Error(w, "invalid session id", http.StatusBadRequest)
				return
			}
			claims, err := tokens.Parse(bearerToken(r))
			if err == nil && claims.SessionID != id {
				err = config.ErrSessionMismatch
			}
			if err != nil {
				log.Debug("rejected session token",
					slog.Int64("sessionId", id), slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"` + ErrInvalidToken.Error() + `"}`))
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
