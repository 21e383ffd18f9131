package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"blogapi/internal/apperror"
	"blogapi/internal/model"
)

// ErrInvalidSubject is returned when a token is requested for a user
// without an id or email.
var ErrInvalidSubject = errors.New("token subject must have a non-empty id and email")

// Token-use claim values. Access and refresh tokens are minted by the same
// service but are not interchangeable: the bearer gate only accepts access
// tokens, and the refresh flow only accepts refresh tokens.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims represents the payload of an issued token.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	TokenUse string    `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenPair bundles the tokens returned by register and login.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTService mints and validates signed, time-limited identity tokens.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a JWT service signing with the given secret.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL returns the configured refresh-token lifetime.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken mints an access token carrying the user's id and email.
func (s *JWTService) IssueAccessToken(user *model.User) (string, error) {
	return s.issue(user, "", TokenUseAccess, s.accessTTL)
}

// IssueRefreshToken mints a refresh token. The token id (JTI) is returned
// separately so the caller can persist it for revocation.
func (s *JWTService) IssueRefreshToken(user *model.User) (tokenID, token string, err error) {
	tokenID = uuid.New().String()
	token, err = s.issue(user, tokenID, TokenUseRefresh, s.refreshTTL)
	return tokenID, token, err
}

func (s *JWTService) issue(user *model.User, tokenID, tokenUse string, ttl time.Duration) (string, error) {
	if user == nil || user.ID == uuid.Nil || user.Email == "" {
		return "", ErrInvalidSubject
	}

	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		TokenUse: tokenUse,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token string and returns its claims. Failures are
// reported through the closed error taxonomy: expiry yields ExpiredToken,
// everything else (malformed, wrong signature, wrong algorithm) yields a
// single InvalidToken kind so callers cannot probe the failure cause.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewExpiredToken(err)
		}
		return nil, apperror.NewInvalidToken(err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, apperror.NewInvalidToken(nil)
	}
	return claims, nil
}
