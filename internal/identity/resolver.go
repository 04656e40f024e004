package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"planboard/internal/repositories"
	"planboard/pkg/planerrors"
)

// DeletedAccountName is returned whenever a recorded id no longer resolves to
// an account; history rows keep pointing at logged-off users.
const DeletedAccountName = "account deleted"

const nameCacheTTL = 10 * time.Minute

// Resolver maps between account ids and display names.
type Resolver interface {
	UsernameByID(ctx context.Context, id string) (string, error)
	IDByUsername(ctx context.Context, username string) (string, error)
}

// NameCache is the subset of the redis store the resolver needs. A nil cache
// disables caching.
type NameCache interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error
}

type resolver struct {
	users repositories.UserRepository
	cache NameCache
}

func NewResolver(users repositories.UserRepository, cache NameCache) Resolver {
	return &resolver{users: users, cache: cache}
}

// UsernameByID renders "username(realName)" for a live account. An empty id
// resolves to an empty name.
func (r *resolver) UsernameByID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	key := "display_name:" + id
	if r.cache != nil {
		if name, err := r.cache.GetValue(ctx, key); err == nil {
			return name, nil
		}
	}

	user, err := r.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DeletedAccountName, nil
	}
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s(%s)", user.Username, user.RealName)
	if r.cache != nil {
		if err := r.cache.SetValue(ctx, key, name, nameCacheTTL); err != nil {
			log.Warnf("name cache write failed: %v", err)
		}
	}
	return name, nil
}

func (r *resolver) IDByUsername(ctx context.Context, username string) (string, error) {
	user, err := r.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", planerrors.ErrAccountNotFound
	}
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
