package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yeungho415/recipe/internal/domain"
	"github.com/yeungho415/recipe/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/user/create",
		Summary:       "Create user",
		Description:   "Registers a new user account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "createToken",
		Method:      http.MethodPost,
		Path:        "/api/user/token",
		Summary:     "Create token",
		Description: "Exchanges credentials for an access and refresh token pair",
		Tags:        []string{"Users"},
	}, s.handleCreateToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshToken",
		Method:      http.MethodPost,
		Path:        "/api/user/token/refresh",
		Summary:     "Refresh token",
		Description: "Rotates a refresh token and issues a new token pair",
		Tags:        []string{"Users"},
	}, s.handleRefreshToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/user/logout",
		Summary:     "Logout",
		Description: "Revokes the session, invalidating its refresh token",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/user/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/user/me",
		Summary:     "Update current user",
		Description: "Applies a partial update to the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID    string `json:"id" doc:"User ID"`
	Email string `json:"email" doc:"Email address"`
	Name  string `json:"name" doc:"Display name"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// CreateUserRequest is the request body for registration.
type CreateUserRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password, at least 5 characters"`
	Name     string `json:"name,omitempty" doc:"Display name"`
}

// CreateUserInput wraps the registration request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// TokenResponse contains an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token" doc:"PASETO access token"`
	RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
	TokenType    string `json:"token_type" doc:"Always Bearer"`
	ExpiresIn    int    `json:"expires_in" doc:"Seconds until the access token expires"`
	SessionID    string `json:"session_id" doc:"Session ID, needed for logout"`
}

func newTokenResponse(sr *service.SessionResponse) TokenResponse {
	return TokenResponse{
		AccessToken:  sr.AccessToken,
		RefreshToken: sr.RefreshToken,
		TokenType:    sr.TokenType,
		ExpiresIn:    sr.ExpiresIn,
		SessionID:    sr.SessionID,
	}
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

// CreateTokenRequest is the request body for the token endpoint.
type CreateTokenRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// CreateTokenInput wraps the token request with proxy headers for Huma.
type CreateTokenInput struct {
	Body          CreateTokenRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshTokenRequest is the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token to rotate"`
}

// RefreshTokenInput wraps the refresh request for Huma.
type RefreshTokenInput struct {
	Body RefreshTokenRequest
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" doc:"Session ID to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Authorization string `header:"Authorization"`
	Body          LogoutRequest
}

// GetCurrentUserInput contains parameters for reading the profile.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateUserRequest is the request body for a profile update.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" doc:"New email address"`
	Password *string `json:"password,omitempty" doc:"New password"`
	Name     *string `json:"name,omitempty" doc:"New display name"`
}

// UpdateUserInput wraps the profile update request for Huma.
type UpdateUserInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateUserRequest
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.User.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleCreateToken(ctx context.Context, input *CreateTokenInput) (*TokenOutput, error) {
	ip := clientIP(input.XForwardedFor, input.XRealIP)
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("Rate limit exceeded on token endpoint", "ip", ip)
		return nil, huma.Error429TooManyRequests("Too many login attempts. Please try again later.")
	}

	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: newTokenResponse(&resp.SessionResponse)}, nil
}

func (s *Server) handleRefreshToken(ctx context.Context, input *RefreshTokenInput) (*TokenOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: newTokenResponse(&resp.SessionResponse)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, user.ID, input.Body.SessionID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Logged out"}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.User.UpdateProfile(ctx, user.ID, service.UpdateProfileRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: newUserResponse(updated)}, nil
}
