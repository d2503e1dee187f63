package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

const (
	userCacheTTL    = 5 * time.Minute
	userCachePrefix = "user:id:"
)

// CachedUserRepository is a read-through cache over a UserRepository,
// used by the authentication middleware which loads the current user on
// every request. It fails safe: any Redis error behaves like a cache miss,
// and writes invalidate the cached entry so blocked or changed accounts are
// never served stale longer than the TTL.
type CachedUserRepository struct {
	inner  ports.UserRepository
	client *redis.Client
}

var _ ports.UserRepository = (*CachedUserRepository)(nil)

func NewCachedUserRepository(inner ports.UserRepository, client *redis.Client) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, client: client}
}

func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.inner.Create(ctx, user)
}

func (r *CachedUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Email lookups happen on login only; not worth caching.
	return r.inner.FindByEmail(ctx, email)
}

func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if cached := r.get(ctx, id); cached != nil {
		return cached, nil
	}

	user, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, user)
	return user, nil
}

func (r *CachedUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.inner.Update(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.ID)
	return nil
}

// cachedUser restores the password hash that domain.User hides from its
// JSON form; credential checks go through this repository too.
type cachedUser struct {
	User         domain.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

func (r *CachedUserRepository) get(ctx context.Context, id string) *domain.User {
	if r.client == nil {
		return nil
	}
	data, err := r.client.Get(ctx, userCachePrefix+id).Bytes()
	if err != nil {
		return nil
	}
	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	entry.User.PasswordHash = entry.PasswordHash
	return &entry.User
}

func (r *CachedUserRepository) set(ctx context.Context, user *domain.User) {
	if r.client == nil {
		return
	}
	data, err := json.Marshal(cachedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, userCachePrefix+user.ID, data, userCacheTTL).Err()
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if r.client == nil {
		return
	}
	_ = r.client.Del(ctx, userCachePrefix+id).Err()
}
