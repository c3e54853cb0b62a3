// Package access implements role-based authorization checks over an
// explicit principal. Policies are evaluated per call; nothing is cached
// across requests.
package access

import (
	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

// Gate decides whether a principal may reach a surface. The zero value is
// ready to use.
type Gate struct{}

// NewGate creates a Gate.
func NewGate() *Gate {
	return &Gate{}
}

// RequireAuthenticated returns ErrUnauthorized for a nil principal.
func (g *Gate) RequireAuthenticated(p *domain.Principal) error {
	if p == nil || p.ID == uuid.Nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// RequireRole returns ErrUnauthorized for a nil principal and ErrForbidden
// when the principal's effective role is not in the allowed set. A principal
// without an explicit role acts as a buyer.
func (g *Gate) RequireRole(p *domain.Principal, roles ...domain.Role) error {
	if err := g.RequireAuthenticated(p); err != nil {
		return err
	}
	effective := p.EffectiveRole()
	for _, r := range roles {
		if effective == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// RequireAdmin gates the moderation and admin dashboard surfaces.
func (g *Gate) RequireAdmin(p *domain.Principal) error {
	return g.RequireRole(p, domain.RoleAdmin)
}

// RequireLister gates the listing-creation surfaces: sellers and admins
// may list, buyers may not.
func (g *Gate) RequireLister(p *domain.Principal) error {
	if err := g.RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.EffectiveRole().CanList() {
		return domain.ErrForbidden
	}
	return nil
}
