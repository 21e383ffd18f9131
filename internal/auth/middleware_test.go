package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogapi/internal/apperror"
	"blogapi/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindCredentialsByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestContext(authorization string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestTokenMiddleware_RejectsBadCredentials(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)
	expired := NewJWTService("test-secret", -time.Minute, 24*time.Hour)
	otherSecret := NewJWTService("other-secret", time.Hour, 24*time.Hour)

	user := &model.User{ID: uuid.New(), Email: "test@example.com"}
	expiredToken, err := expired.IssueAccessToken(user)
	require.NoError(t, err)
	foreignToken, err := otherSecret.IssueAccessToken(user)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "missing header", authorization: ""},
		{name: "malformed scheme", authorization: "Token abc"},
		{name: "not a token", authorization: "Bearer garbage"},
		{name: "expired token", authorization: "Bearer " + expiredToken},
		{name: "wrong secret", authorization: "Bearer " + foreignToken},
	}

	mw := TokenMiddleware(svc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(tt.authorization)
			err := mw(okHandler)(c)

			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.NotAuthorized, appErr.Type)
			assert.Equal(t, MsgNotAuthorized, appErr.Message)
		})
	}
}

func TestTokenMiddleware_RejectsRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}

	_, refreshToken, err := svc.IssueRefreshToken(user)
	require.NoError(t, err)

	c := newTestContext("Bearer " + refreshToken)
	err = TokenMiddleware(svc)(okHandler)(c)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.NotAuthorized, appErr.Type)
	assert.Equal(t, MsgNotAuthorized, appErr.Message)
}

func TestTokenMiddleware_AcceptsValidToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}
	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	c := newTestContext("Bearer " + token)
	err = TokenMiddleware(svc)(okHandler)(c)
	assert.NoError(t, err)

	claims, ok := c.Get(claimsContextKey).(*Claims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoadUser(t *testing.T) {
	userID := uuid.New()
	stored := &model.User{ID: userID, Username: "testuser", Email: "test@example.com", Role: model.RoleUser}

	tests := []struct {
		name        string
		setupMock   func(*MockUserRepository)
		wantMessage string
	}{
		{
			name: "user found",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(stored, nil)
			},
		},
		{
			name: "user missing",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(nil, apperror.NewNotFound("user not found"))
			},
			wantMessage: MsgUserNotFound,
		},
		{
			name: "storage failure fails closed",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(nil, apperror.NewInternal("database error", errors.New("boom")))
			},
			wantMessage: MsgNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			c := newTestContext("")
			c.Set(claimsContextKey, &Claims{UserID: userID, Email: stored.Email})

			err := LoadUser(mockRepo)(okHandler)(c)
			if tt.wantMessage == "" {
				assert.NoError(t, err)
				current, ok := CurrentUser(c)
				require.True(t, ok)
				assert.Equal(t, stored.Username, current.Username)
			} else {
				appErr, ok := apperror.FromError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.NotAuthorized, appErr.Type)
				assert.Equal(t, tt.wantMessage, appErr.Message)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestLoadUser_NoClaims(t *testing.T) {
	c := newTestContext("")
	err := LoadUser(new(MockUserRepository))(okHandler)(c)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.NotAuthorized, appErr.Type)
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles(model.RoleAdmin)

	c := newTestContext("")
	c.Set(userContextKey, &model.User{ID: uuid.New(), Role: model.RoleUser})
	err := mw(okHandler)(c)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.Forbidden, appErr.Type)
	assert.Equal(t, "Role 'user' is not authorized to access this route", appErr.Message)

	c = newTestContext("")
	c.Set(userContextKey, &model.User{ID: uuid.New(), Role: model.RoleAdmin})
	assert.NoError(t, mw(okHandler)(c))
}
