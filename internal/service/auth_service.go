package service

import (
	"context"
	"fmt"
	"strings"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// AuthService handles registration, login and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, *auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with a hashed password and issues tokens.
// Username and email uniqueness is enforced by the store's unique indexes;
// a violation surfaces as a DuplicateKey error from the repository.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, *auth.TokenPair, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login verifies credentials and issues tokens. Unknown email and wrong
// password produce the same error so the response reveals neither.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *auth.TokenPair, error) {
	user, err := s.users.FindCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewNotAuthorized("Invalid credentials", nil)
		}
		return nil, nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperror.NewNotAuthorized("Invalid credentials", nil)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	return user, tokens, nil
}

// Refresh validates a refresh token against the store and issues a new
// access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenUse != auth.TokenUseRefresh || claims.ID == "" {
		return "", apperror.NewInvalidToken(nil)
	}

	userID, email, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || userID != claims.UserID || email != claims.Email {
		return "", apperror.NewInvalidToken(err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", apperror.NewInvalidToken(err)
	}
	accessToken, err := s.jwtService.IssueAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.Verify(refreshToken)
	if err != nil {
		return err
	}
	if claims.TokenUse != auth.TokenUseRefresh || claims.ID == "" {
		return apperror.NewInvalidToken(nil)
	}
	return s.tokenStore.DeleteRefreshToken(ctx, claims.ID)
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*auth.TokenPair, error) {
	accessToken, err := s.jwtService.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, s.jwtService.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &auth.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
