package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// MockTokenAuthority is a mock implementation of interfaces.TokenAuthority
type MockTokenAuthority struct {
	mock.Mock
}

func (m *MockTokenAuthority) Issue(subject string, role types.Role) (*types.AuthToken, error) {
	args := m.Called(subject, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthToken), args.Error(1)
}

func (m *MockTokenAuthority) Validate(ctx context.Context, tokenString string, expected types.Role) (string, error) {
	args := m.Called(ctx, tokenString, expected)
	return args.String(0), args.Error(1)
}

func TestAuthorize_DelegatesToAuthority(t *testing.T) {
	authority := &MockTokenAuthority{}
	gate := NewGate(authority, logger.New("debug"))

	authority.On("Validate", mock.Anything, "token-abc", types.RoleDoctor).
		Return("doc@example.com", nil)

	subject, err := gate.Authorize(context.Background(), "token-abc", types.RoleDoctor)
	assert.NoError(t, err)
	assert.Equal(t, "doc@example.com", subject)
	authority.AssertExpectations(t)
}

func TestAuthorize_PropagatesAuthError(t *testing.T) {
	authority := &MockTokenAuthority{}
	gate := NewGate(authority, logger.New("debug"))

	authority.On("Validate", mock.Anything, "bad-token", types.RolePatient).
		Return("", types.NewAuthenticationError(types.ErrCodeTokenExpired, "token expired"))

	_, err := gate.Authorize(context.Background(), "bad-token", types.RolePatient)
	assert.Equal(t, types.ErrCodeTokenExpired, types.CodeOf(err))
}

func TestAuthorizeOwnership(t *testing.T) {
	gate := NewGate(&MockTokenAuthority{}, logger.New("debug"))

	assert.NoError(t, gate.AuthorizeOwnership("patient-1", "patient-1"))

	err := gate.AuthorizeOwnership("patient-1", "patient-2")
	assert.Equal(t, types.ErrCodeForbidden, types.CodeOf(err))
}

func TestPasswordManager_HashAndVerify(t *testing.T) {
	pm := NewPasswordManager()

	hash, err := pm.HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	ok, err := pm.VerifyPassword(hash, "s3cret-pass")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = pm.VerifyPassword(hash, "wrong-pass")
	assert.NoError(t, err)
	assert.False(t, ok)
}
