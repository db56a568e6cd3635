package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yeungho415/recipe/internal/domain"
)

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// authenticateRequest validates the Authorization header and returns the
// authenticated user.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// clientIP picks the most trustworthy client address from proxy headers.
// Used only as a rate limit key, so an empty fallback is acceptable.
func clientIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		// First IP in the chain is the client.
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return strings.TrimSpace(xForwardedFor)
	}
	if xRealIP != "" {
		return xRealIP
	}
	return "unknown"
}

// writeJSON writes a JSON response for raw chi handlers that bypass huma.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError writes a domain error as JSON for raw chi handlers.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	apiErr := toAPIError(err)
	if apiErr == nil {
		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			apiErr = &APIError{
				status:  statusErr.GetStatus(),
				Code:    statusToCode(statusErr.GetStatus()),
				Message: statusErr.Error(),
			}
			s.writeJSON(w, apiErr.status, apiErr)
			return
		}
		s.logger.Error("Unhandled error", "error", err)
		apiErr = &APIError{
			status:  http.StatusInternalServerError,
			Code:    statusToCode(http.StatusInternalServerError),
			Message: "Internal server error",
		}
	}
	s.writeJSON(w, apiErr.status, apiErr)
}
