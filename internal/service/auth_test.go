package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeungho415/recipe/internal/auth"
	domainerrors "github.com/yeungho415/recipe/internal/errors"
	"github.com/yeungho415/recipe/internal/media/images"
	"github.com/yeungho415/recipe/internal/search"
	"github.com/yeungho415/recipe/internal/store/sqlite"
)

// testServices bundles the service layer wired against temporary storage.
type testServices struct {
	Store      *sqlite.Store
	Users      *UserService
	Auth       *AuthService
	Sessions   *SessionService
	Recipes    *RecipeService
	Tags       *TagService
	Ingredient *IngredientService
	Images     *images.Storage
	Search     *search.RecipeIndex
}

// setupTestServices creates the full service stack in a temp directory.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := sqlite.Open(tmpDir+"/test.db", logger)
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(hex.EncodeToString(authKey), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	imageStorage, err := images.NewStorage(tmpDir)
	require.NoError(t, err)

	searchIndex, err := search.NewRecipeIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, logger)

	env := &testServices{
		Store:      s,
		Users:      NewUserService(s, logger),
		Auth:       NewAuthService(s, tokenService, sessionService, logger),
		Sessions:   sessionService,
		Recipes:    NewRecipeService(s, imageStorage, searchIndex, logger),
		Tags:       NewTagService(s, searchIndex, logger),
		Ingredient: NewIngredientService(s, searchIndex, logger),
		Images:     imageStorage,
		Search:     searchIndex,
	}

	t.Cleanup(func() {
		_ = searchIndex.Close()
		_ = s.Close()
	})

	return env
}

func TestUserService_Register(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	user, err := env.Users.Register(ctx, RegisterRequest{
		Email:    "cook@Example.COM",
		Password: "secret123",
		Name:     "Cook",
	})
	require.NoError(t, err)

	// Domain part is lowercased, local part preserved
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, "Cook", user.Name)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestUserService_RegisterSuperuser(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	user, err := env.Users.RegisterSuperuser(ctx, RegisterRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		Name:     "Admin",
	})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.CanManageUsers())

	// Flags survive a round trip through the store
	stored, err := env.Users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsStaff)
	assert.True(t, stored.IsSuperuser)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	req := RegisterRequest{Email: "cook@example.com", Password: "secret123"}
	_, err := env.Users.Register(ctx, req)
	require.NoError(t, err)

	_, err = env.Users.Register(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserService_Register_Validation(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "secret123"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "pw"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Users.Register(ctx, tc.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Greater(t, resp.ExpiresIn, 0)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "cook@example.com", resp.User.Email)
}

func TestAuthService_Login_CaseInsensitiveEmail(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = env.Auth.Login(ctx, LoginRequest{Email: "COOK@EXAMPLE.COM", Password: "secret123"})
	assert.NoError(t, err)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	env := setupTestServices(t)

	_, err := env.Auth.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	login, err := env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := env.Auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, login.SessionID, refreshed.SessionID)

	// Old refresh token is dead after rotation
	_, err = env.Auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_Logout(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	user, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	login, err := env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, env.Auth.Logout(ctx, user.ID, login.SessionID))

	_, err = env.Auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_Logout_ForeignSession(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	_, err := env.Users.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	bob, err := env.Users.Register(ctx, RegisterRequest{Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	aliceLogin, err := env.Auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Bob cannot revoke Alice's session
	err = env.Auth.Logout(ctx, bob.ID, aliceLogin.SessionID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Alice's refresh token still works
	_, err = env.Auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: aliceLogin.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	registered, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	login, err := env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "secret123"})
	require.NoError(t, err)

	user, claims, err := env.Auth.VerifyAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, registered.ID, claims.UserID)

	_, _, err = env.Auth.VerifyAccessToken(ctx, "garbage")
	assert.Error(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	user, err := env.Users.Register(ctx, RegisterRequest{Email: "cook@example.com", Password: "secret123", Name: "Cook"})
	require.NoError(t, err)

	newName := "Chef"
	newPassword := "evenmoresecret"
	updated, err := env.Users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Name:     &newName,
		Password: &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chef", updated.Name)
	assert.Equal(t, "cook@example.com", updated.Email)

	// Old password no longer works, new one does
	_, err = env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	_, err = env.Auth.Login(ctx, LoginRequest{Email: "cook@example.com", Password: newPassword})
	assert.NoError(t, err)
}
