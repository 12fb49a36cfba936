package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
	}
}

type TokenRequest struct {
	APIKey string `json:"api_key"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueToken handles POST /auth/token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.service.IssueToken(req.APIKey)
	if err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) {
			h.WriteError(w, appErr.StatusCode, appErr.Message)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.service.TokenDuration().Seconds()),
	})
}

// AuthMiddleware rejects requests without a valid bearer token.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		subject, err := h.service.ValidateToken(token)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), subject)))
	})
}
