package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"example.com/lara-pickles/app/internal/domain/access"
)

var ErrInvalidToken = errors.New("invalid identity token")

// JWTService verifies the HS256 tokens issued by the identity provider. It can
// also mint them, which the dev CLI and the tests use.
type JWTService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

func NewJWTService(secret, issuer string, expiration time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: expiration,
	}
}

type jwtClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (s *JWTService) GenerateToken(id *access.Identity) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Role:  string(id.Role),
		Email: id.Email,
		Phone: id.Phone,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken returns the identity carried by a valid token. A role claim the
// shop does not know is downgraded to anonymous rather than rejected.
func (s *JWTService) ParseToken(token string) (*access.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	role, err := access.ParseRole(claims.Role)
	if err != nil {
		role = access.RoleAnonymous
	}

	return &access.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Phone:   claims.Phone,
		Name:    claims.Name,
		Role:    role,
	}, nil
}
