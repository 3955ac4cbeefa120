package auth

import (
	"context"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// Gate enforces role and ownership checks for every mutating request.
// Endpoints pass the role their operation demands; mutations on owned
// resources additionally pass through AuthorizeOwnership.
type Gate struct {
	authority interfaces.TokenAuthority
	logger    *logger.Logger
}

// NewGate creates a new authorization gate
func NewGate(authority interfaces.TokenAuthority, log *logger.Logger) *Gate {
	return &Gate{
		authority: authority,
		logger:    log,
	}
}

// Authorize validates the token against the role the endpoint requires
// and returns the authenticated subject.
func (g *Gate) Authorize(ctx context.Context, tokenString string, required types.Role) (string, error) {
	subject, err := g.authority.Validate(ctx, tokenString, required)
	if err != nil {
		g.logger.Audit("", "authorize", string(required), false)
		return "", err
	}

	g.logger.Audit(subject, "authorize", string(required), true)
	return subject, nil
}

// AuthorizeOwnership fails when the authenticated subject does not own
// the resource boundary identified by ownerID.
func (g *Gate) AuthorizeOwnership(subject, ownerID string) error {
	if subject != ownerID {
		g.logger.Audit(subject, "ownership", ownerID, false)
		return types.NewAuthorizationError(types.ErrCodeForbidden, "subject does not own this resource")
	}
	return nil
}
