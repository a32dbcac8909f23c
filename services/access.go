package services

import (
	"context"

	"powerpulse/apperrors"
	"powerpulse/models"
)

// Identity is the verified request identity supplied by the transport
// layer. Token verification happens upstream; uid is trusted here.
type Identity struct {
	UID   string
	Email string
}

// UserDirectory looks up users by their external auth uid
type UserDirectory interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
}

// AccessPolicy gates mutations on authentication and the persisted admin
// role flag
type AccessPolicy struct {
	users UserDirectory
}

func NewAccessPolicy(users UserDirectory) *AccessPolicy {
	return &AccessPolicy{users: users}
}

// RequireAuthenticated fails with Unauthenticated when no identity is
// attached to the request
func (p *AccessPolicy) RequireAuthenticated(id Identity) error {
	if id.UID == "" {
		return apperrors.Unauthenticated()
	}
	return nil
}

// RequireAdmin requires authentication plus the persisted isAdmin flag on
// the user record. The role flag is the only check; there is deliberately
// no email heuristic here.
func (p *AccessPolicy) RequireAdmin(ctx context.Context, id Identity) (*models.User, error) {
	if err := p.RequireAuthenticated(id); err != nil {
		return nil, err
	}
	user, err := p.users.FindByUID(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthenticated()
	}
	if !user.IsAdmin {
		return nil, apperrors.Unauthorized("Admin access required")
	}
	return user, nil
}
