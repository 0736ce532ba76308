// Package jwt issues and verifies the HS256 access tokens the API hands out
// at login. The user's role travels inside the token so the middleware can
// gate admin routes without a database lookup.
package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/djdeepak14/laundry-backend/internal/domain"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// signing method, wrong issuer, expired, malformed.
var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "laundry-backend"

type Claims struct {
	UserID int64           `json:"uid"`
	Role   domain.UserRole `json:"role"`
	jwtlib.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// GenerateToken signs an access token for the user.
func (s *Service) GenerateToken(userID int64, role domain.UserRole) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken parses and verifies a token. The signing method is pinned to
// HS256 so an attacker cannot downgrade the algorithm, and the issuer must
// match what this service signs.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwtlib.ParseWithClaims(tokenStr, &claims,
		func(t *jwtlib.Token) (any, error) { return s.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
