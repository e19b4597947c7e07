package http

import (
	"net/http"
	"strings"

	"cinescore/pkg/model"
)

// authedHandler is a handler that runs with a resolved caller
// identity. The guard resolves the identity before the handler body
// runs; handlers never look it up themselves.
type authedHandler func(w http.ResponseWriter, req *http.Request, userId model.UserId)

const bearerPrefix = "Bearer "

// authorized wraps a handler with the bearer-token guard.
func (h *Handler) authorized(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			h.respondMsg(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}
		userId, err := h.authCtrl.Authenticate(req.Context(), strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			h.respondMsg(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, req, userId)
	}
}

// limited applies the inbound rate limiter when one is configured.
func (h *Handler) limited(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, req *http.Request) {
		if h.limiter.Limit() {
			h.respondError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, req)
	}
}

// cors allows browser clients from any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
