package memory

import (
	"fmt"
	"time"

	"carematch-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ProfileCache remembers which profile id belongs to a user for a role.
// Roles never change, so entries only go stale when the user is deleted.
type ProfileCache struct {
	cache *cache.Cache
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func profileKey(role entity.UserRole, userId int64) string {
	return fmt.Sprintf("%s:%d", role, userId)
}

func (c *ProfileCache) Save(role entity.UserRole, userId, profileId int64) {
	c.cache.Set(profileKey(role, userId), profileId, cache.DefaultExpiration)
}

func (c *ProfileCache) Get(role entity.UserRole, userId int64) (int64, bool) {
	if x, found := c.cache.Get(profileKey(role, userId)); found {
		return x.(int64), true
	}
	return 0, false
}

func (c *ProfileCache) Forget(userId int64) {
	c.cache.Delete(profileKey(entity.UserRoleCaregiver, userId))
	c.cache.Delete(profileKey(entity.UserRoleFamily, userId))
}
