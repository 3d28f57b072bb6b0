package entitlements

import (
	"fmt"
	"log"
	"time"

	"github.com/hnthao/elearn/internal/pkg/cache"
)

// DefaultWindowDays is the trailing window in which any paid order grants
// premium access. The window is account-wide, not per-course.
const DefaultWindowDays = 30

const cacheTTL = 5 * time.Minute

// Store is the slice of the order repository this package reads from.
type Store interface {
	HasActiveEntitlement(userID uint, windowDays int) (bool, error)
}

// HasActivePremium reports whether the user has premium access right now.
// The answer is cached briefly; a cache miss or unreachable cache falls
// through to the order store.
func HasActivePremium(store Store, userID uint) bool {
	key := cacheKey(userID)
	if val, err := cache.Get(key); err == nil {
		return val == "1"
	}

	active, err := store.HasActiveEntitlement(userID, DefaultWindowDays)
	if err != nil {
		log.Printf("entitlements: lookup for user %d failed: %v", userID, err)
		return false
	}

	val := "0"
	if active {
		val = "1"
	}
	if err := cache.Set(key, val, cacheTTL); err != nil {
		log.Printf("entitlements: cache write for user %d failed: %v", userID, err)
	}

	return active
}

// Invalidate drops the cached answer; called after a successful payment
// so the new purchase is visible immediately.
func Invalidate(userID uint) {
	if err := cache.Delete(cacheKey(userID)); err != nil {
		log.Printf("entitlements: cache invalidate for user %d failed: %v", userID, err)
	}
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("entitlement:premium:%d", userID)
}
