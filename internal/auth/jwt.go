package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinJWTSecretLength is the shortest accepted HS256 secret.
const MinJWTSecretLength = 32

// JWTAuthenticator authenticates HS256 bearer tokens.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewJWTAuthenticator creates a JWT authenticator. When issuer is non-empty
// tokens must carry a matching iss claim. Tokens must always carry exp.
func NewJWTAuthenticator(secret, issuer string) (*JWTAuthenticator, error) {
	if len(secret) < MinJWTSecretLength {
		return nil, fmt.Errorf("jwt auth: secret must be at least %d characters", MinJWTSecretLength)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &JWTAuthenticator{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Authenticate validates the bearer token in the Authorization header.
// Requests with no header or a non-bearer scheme are unauthenticated so that
// a MultiAuthenticator can try the next method.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrUnauthenticated
	}

	claims := jwt.MapClaims{}
	token, err := a.parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(_ *jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &AuthInfo{
		Method:  AuthMethodJWT,
		Subject: subject,
		Claims:  claims,
	}, nil
}

// Method returns the authentication method type.
func (a *JWTAuthenticator) Method() AuthMethod {
	return AuthMethodJWT
}

// Issue signs a token for subject that expires after ttl.
func (a *JWTAuthenticator) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if a.issuer != "" {
		claims.Issuer = a.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
