// file: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"letsconnect/internal/cache"
	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// tokenClaims are the claims carried by access and refresh tokens
type tokenClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// cachedPrincipal is what Authenticate keeps in the cache per user
type cachedPrincipal struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Banned bool   `json:"banned"`
}

// authService implements AuthService with HMAC-signed JWTs
type authService struct {
	users  repositories.UserRepository
	cache  cache.Cache
	logger *zap.Logger
	config config.AuthConfig
	now    func() time.Time
}

// NewAuthService creates a new auth service. cache may be nil.
func NewAuthService(
	users repositories.UserRepository,
	c cache.Cache,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthService {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		cache:  c,
		logger: logger,
		config: cfg,
		now:    time.Now,
	}
}

// ===============================
// REGISTRATION AND LOGIN
// ===============================

// Register creates an account with a bcrypt-hashed password
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("Failed to create account")
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.ToLower(req.Username),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Gender:       req.Gender,
		Role:         engagement.RoleUser,
		ShowPoints:   true,
		ShowBadges:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("User Already Exists", "USER_EXISTS")
		}
		return nil, failure(s.logger, "create account", err, "User", "")
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a token pair
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewUnauthorizedError("Invalid Credentials")
		}
		return nil, failure(s.logger, "log in", err, "User", "")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID))
		return nil, NewUnauthorizedError("Invalid Credentials")
	}
	if user.IsBanned {
		return nil, NewForbiddenError("Your Account Has Been Banned")
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	user.PasswordHash = ""
	return &AuthResponse{User: user, TokenPair: pair}, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *authService) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	claims, err := s.parse(req.RefreshToken, s.config.RefreshSecret, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewUnauthorizedError("User Not Found")
		}
		return nil, failure(s.logger, "refresh token", err, "User", claims.Subject)
	}
	if user.IsBanned {
		return nil, NewForbiddenError("Your Account Has Been Banned")
	}
	return s.issue(user)
}

// ===============================
// TOKEN VERIFICATION
// ===============================

// Authenticate resolves an access token to the caller's principal. The role
// and ban state come from the user record, cached for PrincipalTTL.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (engagement.Principal, error) {
	claims, err := s.parse(accessToken, s.config.AccessSecret, tokenTypeAccess)
	if err != nil {
		return engagement.Principal{}, err
	}

	cp, err := s.principal(ctx, claims.Subject)
	if err != nil {
		return engagement.Principal{}, err
	}
	if cp.Banned {
		return engagement.Principal{}, NewForbiddenError("Your Account Has Been Banned")
	}
	return engagement.Principal{ID: cp.ID, Role: cp.Role}, nil
}

// InvalidatePrincipal drops the cached principal so role or ban changes apply at once
func (s *authService) InvalidatePrincipal(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, principalKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate cached principal", zap.String("user_id", userID), zap.Error(err))
	}
}

func principalKey(userID string) string {
	return "auth:principal:" + userID
}

func (s *authService) principal(ctx context.Context, userID string) (*cachedPrincipal, error) {
	var cp cachedPrincipal
	if s.cache != nil {
		ok, err := cache.GetJSON(ctx, s.cache, principalKey(userID), &cp)
		if err != nil {
			s.logger.Warn("Principal cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		if ok {
			return &cp, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewUnauthorizedError("User Not Found")
		}
		return nil, failure(s.logger, "authenticate", err, "User", userID)
	}
	cp = cachedPrincipal{ID: user.ID, Role: user.Role, Banned: user.IsBanned}

	if s.cache != nil && s.config.PrincipalTTL > 0 {
		if err := cache.SetJSON(ctx, s.cache, principalKey(userID), cp, s.config.PrincipalTTL); err != nil {
			s.logger.Warn("Principal cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return &cp, nil
}

func (s *authService) parse(raw, secret, wantType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewUnauthorizedError("Token Expired")
		}
		return nil, NewUnauthorizedError("Invalid Token")
	}
	if claims.TokenType != wantType || claims.Subject == "" {
		return nil, NewUnauthorizedError("Invalid Token")
	}
	return claims, nil
}

// ===============================
// TOKEN ISSUANCE
// ===============================

func (s *authService) sign(userID, tokenType, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *authService) issue(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user.ID, tokenTypeAccess, s.config.AccessSecret, s.config.AccessExpiry)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, NewInternalError("Failed to issue token")
	}
	refresh, err := s.sign(user.ID, tokenTypeRefresh, s.config.RefreshSecret, s.config.RefreshExpiry)
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, NewInternalError("Failed to issue token")
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.config.AccessExpiry.Seconds()),
		RefreshExpiresIn: int64(s.config.RefreshExpiry.Seconds()),
	}, nil
}

