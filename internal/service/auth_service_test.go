package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
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

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			// The store assigns the id on insert.
			args.Get(1).(*model.User).ID = uuid.New()
		}).
		Return(nil)
	mockStore.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "test@example.com", mock.Anything).Return(nil)

	svc := NewAuthService(mockRepo, newTestJWTService(), mockStore)
	user, tokens, err := svc.Register(context.Background(), "  testuser ", "Test@Example.COM", "password123")

	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, auth.CheckPassword("password123", user.PasswordHash))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(apperror.NewDuplicateKey("email", nil))

	svc := NewAuthService(mockRepo, newTestJWTService(), new(MockTokenStore))
	_, _, err := svc.Register(context.Background(), "testuser", "test@example.com", "password123")

	assert.True(t, apperror.IsDuplicateKey(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	stored := &model.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockUserRepository, *MockTokenStore)
		wantErr   bool
	}{
		{
			name:     "successful login",
			email:    "Test@Example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mStore *MockTokenStore) {
				mRepo.On("FindCredentialsByEmail", mock.Anything, "test@example.com").Return(stored, nil)
				mStore.On("StoreRefreshToken", mock.Anything, mock.Anything, stored.ID, stored.Email, mock.Anything).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mStore *MockTokenStore) {
				mRepo.On("FindCredentialsByEmail", mock.Anything, "nobody@example.com").
					Return(nil, apperror.NewNotFound("user not found"))
			},
			wantErr: true,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(mRepo *MockUserRepository, mStore *MockTokenStore) {
				mRepo.On("FindCredentialsByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockStore)

			svc := NewAuthService(mockRepo, newTestJWTService(), mockStore)
			user, tokens, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr {
				require.Error(t, err)
				// Unknown email and wrong password are indistinguishable.
				appErr, ok := apperror.FromError(err)
				require.True(t, ok)
				assert.Equal(t, apperror.NotAuthorized, appErr.Type)
				assert.Equal(t, "Invalid credentials", appErr.Message)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored.Email, user.Email)
				assert.Empty(t, user.PasswordHash)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
			mockStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := newTestJWTService()
	user := &model.User{ID: uuid.New(), Username: "testuser", Email: "test@example.com", Role: model.RoleUser}

	tokenID, refreshToken, err := jwtService.IssueRefreshToken(user)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)
	mockStore.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, user.Email, nil)
	mockRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	svc := NewAuthService(mockRepo, jwtService, mockStore)
	accessToken, err := svc.Refresh(context.Background(), refreshToken)

	require.NoError(t, err)
	claims, err := jwtService.Verify(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	jwtService := newTestJWTService()
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}

	accessToken, err := jwtService.IssueAccessToken(user)
	require.NoError(t, err)

	svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
	_, err = svc.Refresh(context.Background(), accessToken)

	assert.True(t, apperror.IsType(err, apperror.InvalidToken))
}

func TestAuthService_Refresh_Revoked(t *testing.T) {
	jwtService := newTestJWTService()
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}

	tokenID, refreshToken, err := jwtService.IssueRefreshToken(user)
	require.NoError(t, err)

	mockStore := new(MockTokenStore)
	mockStore.On("GetRefreshToken", mock.Anything, tokenID).
		Return(uuid.Nil, "", auth.ErrRefreshTokenNotFound)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore)
	_, err = svc.Refresh(context.Background(), refreshToken)

	assert.True(t, apperror.IsType(err, apperror.InvalidToken))
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := newTestJWTService()
	user := &model.User{ID: uuid.New(), Email: "test@example.com"}

	tokenID, refreshToken, err := jwtService.IssueRefreshToken(user)
	require.NoError(t, err)

	mockStore := new(MockTokenStore)
	mockStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore)
	assert.NoError(t, svc.Logout(context.Background(), refreshToken))
	mockStore.AssertExpectations(t)
}
