package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Middleware rejects requests without a valid bearer token and stores the
// user id in the request context.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				unauthorized(w, ErrMissingToken.Error())
				return
			}
			id, err := tokens.Verify(tokenString)
			if err != nil {
				slog.DebugContext(r.Context(), "Rejected token", "error", err)
				unauthorized(w, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
