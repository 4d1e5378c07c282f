package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ExerciseCatalogKey    = "catalog:exercises"
	AchievementCatalogKey = "catalog:achievements"
	GymKeyPrefix          = "gym:%d"
)

const (
	CatalogTTL = 30 * time.Minute
	GymTTL     = 2 * time.Minute
	// LocalTTL bounds how long any entry lives in the in-process tier.
	LocalTTL = 30 * time.Second
)

func GymKey(gymID uint) string {
	return fmt.Sprintf(GymKeyPrefix, gymID)
}

// Invalidate drops key from both tiers.
func Invalidate(ctx context.Context, key string) {
	localDel(key)
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateGym(ctx context.Context, gymID uint) {
	Invalidate(ctx, GymKey(gymID))
}

func InvalidateCatalog(ctx context.Context) {
	Invalidate(ctx, ExerciseCatalogKey)
	Invalidate(ctx, AchievementCatalogKey)
}
