package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-auth-service/internal/model"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// TokenConfig is the process-wide signing configuration. It is read once at
// startup and never mutated.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type userFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      userFinder
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig, users userFinder) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token signing secret is required")
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token signing algorithm %q", cfg.Algorithm)
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		users:      users,
		now:        time.Now,
	}, nil
}

func (s *TokenService) IssueAccessToken(username string) (string, error) {
	return s.sign(username, model.TokenKindAccess, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(username string) (string, error) {
	return s.sign(username, model.TokenKindRefresh, s.refreshTTL)
}

func (s *TokenService) IssuePair(username string) (model.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(username)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.IssueRefreshToken(username)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Decode verifies signature and expiry. It does not look at the token kind.
func (s *TokenService) Decode(tokenString string) (*model.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &model.TokenClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, model.ErrTokenExpired
	}
	if err != nil {
		return nil, model.ErrTokenInvalid
	}

	if claims.Username == "" || claims.Type == "" {
		return nil, model.ErrTokenInvalid.WithDetails("missing required claims")
	}

	return claims, nil
}

// Refresh mints a new access token for a valid refresh token. The refresh
// token itself is handed back unchanged, so it stays usable until it expires.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.Decode(refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	if claims.Type != model.TokenKindRefresh {
		return model.TokenPair{}, model.ErrWrongTokenType
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.WarnContext(ctx, "refresh: user lookup failed", "error", err)
		}
		return model.TokenPair{}, model.ErrInvalidRefreshToken
	}

	accessToken, err := s.IssueAccessToken(user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *TokenService) sign(username string, kind model.TokenKind, ttl time.Duration) (string, error) {
	claims := model.TokenClaims{
		Username: username,
		Type:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", kind, err)
	}

	return signed, nil
}
