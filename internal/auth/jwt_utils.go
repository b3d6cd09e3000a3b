package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	UserID    uint   `json:"userId"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair creates a fresh access and refresh token for the user.
func (m *TokenManager) IssuePair(userID uint, role string) (*TokenPair, error) {
	now := m.now()
	access, err := m.sign(userID, role, TokenAccess, now, now.Add(m.accessTTL))
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, role, TokenRefresh, now, now.Add(m.refreshTTL))
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: now.Add(m.accessTTL)}, nil
}

func (m *TokenManager) sign(userID uint, role, typ string, issued, expires time.Time) (string, error) {
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ParseAccess validates an access token.
func (m *TokenManager) ParseAccess(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenAccess)
}

// ParseRefresh validates a refresh token.
func (m *TokenManager) ParseRefresh(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenRefresh)
}

func (m *TokenManager) parse(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != typ {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}
