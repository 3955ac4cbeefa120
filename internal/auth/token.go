package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicore/clinic-backend/pkg/config"
	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// Authority issues and validates the stateless bearer tokens used by
// every authenticated endpoint. Tokens are HMAC-signed with a
// process-wide secret and carry (subject, role, expiry); there is no
// server-side token registry and no revocation.
type Authority struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	directory interfaces.DirectoryStore
	logger    *logger.Logger
}

// tokenClaims represents the signed claim set
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthority creates a new token authority
func NewAuthority(cfg *config.JWTConfig, directory interfaces.DirectoryStore, log *logger.Logger) *Authority {
	return &Authority{
		secret:    []byte(cfg.SecretKey),
		ttl:       time.Duration(cfg.TokenTTLDays) * 24 * time.Hour,
		issuer:    cfg.Issuer,
		directory: directory,
		logger:    log,
	}
}

// Issue creates a signed token for the subject under the given role.
// Expiry is issuance time plus the fixed TTL policy.
func (a *Authority) Issue(subject string, role types.Role) (*types.AuthToken, error) {
	now := time.Now()
	expiresAt := now.Add(a.ttl)

	claims := &tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &types.AuthToken{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies the token signature and expiry, checks the carried
// role against the role the endpoint demands, and resolves the subject
// through the directory. On success it returns the subject identifier.
func (a *Authority) Validate(ctx context.Context, tokenString string, expected types.Role) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", types.NewAuthenticationError(types.ErrCodeTokenExpired, "token expired")
		}
		return "", types.NewAuthenticationError(types.ErrCodeTokenMalformed, "invalid token")
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", types.NewAuthenticationError(types.ErrCodeTokenMalformed, "invalid token claims")
	}

	if types.Role(claims.Role) != expected {
		return "", types.NewAuthenticationError(types.ErrCodeRoleMismatch, "token role does not match endpoint role")
	}

	if err := a.resolveSubject(ctx, claims.Subject, expected); err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// resolveSubject checks that the account behind the token still exists
// for the claimed role.
func (a *Authority) resolveSubject(ctx context.Context, subject string, role types.Role) error {
	var err error

	switch role {
	case types.RoleAdmin:
		_, err = a.directory.GetAdminByUsername(ctx, subject)
	case types.RoleDoctor:
		_, err = a.directory.GetDoctorByEmail(ctx, subject)
	case types.RolePatient:
		_, err = a.directory.GetPatientByEmail(ctx, subject)
	default:
		return types.NewAuthenticationError(types.ErrCodeRoleMismatch, "unrecognized role")
	}

	if err != nil {
		a.logger.WithSubject(subject).Warn("Token subject no longer resolvable")
		return types.NewAuthenticationError(types.ErrCodeUnknownSubject, "account not found for token subject")
	}

	return nil
}
