package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"

	"github.com/golang-jwt/jwt/v5"
)

const kindRefresh = "refresh"

// Principal is the caller identified by an access token.
type Principal struct {
	UserID int64
	Role   domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type tokenRepo interface {
	Create(ctx context.Context, token tokenrepo.Token) error
	Get(ctx context.Context, token string) (*tokenrepo.Token, error)
	Delete(ctx context.Context, token string) error
}

// tokenManager signs short lived JWT access tokens and stores opaque refresh tokens.
type tokenManager struct {
	repo       tokenRepo
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func newTokenManager(repo tokenRepo, secret, issuer string, accessTTL, refreshTTL time.Duration) *tokenManager {
	return &tokenManager{
		repo:       repo,
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *tokenManager) IssueAccess(u domain.User) (string, error) {
	now := m.now()
	c := claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *tokenManager) ParseAccess(token string) (Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: id, Role: domain.Role(c.Role)}, nil
}

func (m *tokenManager) IssueRefresh(ctx context.Context, userID int64) (string, error) {
	expiresAt := m.now().Add(m.refreshTTL)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			UserID:    userID,
			Kind:      kindRefresh,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

// ConsumeRefresh deletes a valid refresh token and returns its user. Tokens are single use.
func (m *tokenManager) ConsumeRefresh(ctx context.Context, token string) (int64, error) {
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}
	if err := m.repo.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if meta.Kind != kindRefresh || m.now().After(meta.ExpiresAt) {
		return 0, ErrInvalidToken
	}
	return meta.UserID, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
