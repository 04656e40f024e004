package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"planboard/internal/models"
	"planboard/internal/repositories"
	"planboard/pkg/planerrors"
)

// Gate enforces the role threshold and account standing ahead of every
// mutating operation. Both checks fail closed.
type Gate struct {
	users repositories.UserRepository
}

func NewGate(users repositories.UserRepository) *Gate {
	return &Gate{users: users}
}

// Require grants access iff the caller resolves, is in normal standing and
// holds at least the given role.
func (g *Gate) Require(ctx context.Context, callerID string, min models.Role) error {
	user, err := g.users.FindByID(ctx, callerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return planerrors.ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if user.Status != models.UserStatusNormal {
		return planerrors.ErrAccountDisabled
	}
	if user.Role < min {
		return planerrors.ErrNoAccess
	}
	return nil
}
