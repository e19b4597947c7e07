package http

import (
	"errors"
	"net/http"

	"cinescore/internal/controller/auth"
	"cinescore/pkg/model"

	"go.uber.org/zap"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /auth/register requests.
func (h *Handler) Register(w http.ResponseWriter, req *http.Request) {
	h.registerMetrics.Calls.Inc(1)
	var body credentialsRequest
	if err := h.decodeBody(req, &body); err != nil {
		h.registerMetrics.InvalidArgumentErrors.Inc(1)
		h.respondMsg(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	_, err := h.authCtrl.Register(req.Context(), body.Email, body.Password)
	if errors.Is(err, auth.ErrUserExists) {
		h.registerMetrics.ConflictErrors.Inc(1)
		h.respondMsg(w, http.StatusBadRequest, "User already exists")
		return
	} else if err != nil {
		h.registerMetrics.InternalErrors.Inc(1)
		h.logger.Error("Failed to register user", zap.Error(err))
		h.respondMsg(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	h.registerMetrics.Successes.Inc(1)
	h.respondMsg(w, http.StatusCreated, "User created successfully")
}

// Login handles POST /auth/login requests.
func (h *Handler) Login(w http.ResponseWriter, req *http.Request) {
	h.loginMetrics.Calls.Inc(1)
	var body credentialsRequest
	if err := h.decodeBody(req, &body); err != nil {
		h.loginMetrics.InvalidArgumentErrors.Inc(1)
		h.respondMsg(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	token, err := h.authCtrl.Login(req.Context(), body.Email, body.Password)
	if errors.Is(err, auth.ErrBadCredentials) {
		h.loginMetrics.UnauthorizedErrors.Inc(1)
		h.respondMsg(w, http.StatusUnauthorized, "Bad email or password")
		return
	} else if err != nil {
		h.loginMetrics.InternalErrors.Inc(1)
		h.logger.Error("Failed to log user in", zap.Error(err))
		h.respondMsg(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	h.loginMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// Protected handles GET /auth/protected requests. The guard already
// validated the token; here the subject must still exist.
func (h *Handler) Protected(w http.ResponseWriter, req *http.Request, userId model.UserId) {
	h.protectedMetrics.Calls.Inc(1)
	u, err := h.authCtrl.Whoami(req.Context(), userId)
	if errors.Is(err, auth.ErrUserNotFound) {
		h.protectedMetrics.NotFoundErrors.Inc(1)
		h.respondMsg(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		h.protectedMetrics.InternalErrors.Inc(1)
		h.logger.Error("Failed to resolve user", zap.Error(err))
		h.respondMsg(w, http.StatusInternalServerError, "Failed to resolve user")
		return
	}
	h.protectedMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, map[string]string{"logged_in_as": u.Email})
}
