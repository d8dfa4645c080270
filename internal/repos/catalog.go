package repos

import (
	"context"
	"fmt"
	"sort"

	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/types"
)

const catalogCollection = "achievement_catalog"

// DefaultCatalog is the seeded achievement reference data. Display
// copy can later move to an admin surface; ids and thresholds are the
// contract the rule engine is written against.
var DefaultCatalog = []*types.CatalogItem{
	{ID: string(types.AchievementWeeklyFifty), Name: "50 Points This Week", Description: "Score 50 points within the last 7 days", Threshold: 50},
	{ID: string(types.AchievementPerfectStreak), Name: "Perfect Session", Description: "Finish a game without a single mistake", Threshold: 1},
	{ID: string(types.AchievementTotalScore50), Name: "50 Points Collected", Description: "Score 50 points in total", Threshold: 50},
	{ID: string(types.AchievementTotalScore100), Name: "100 Points Collected", Description: "Score 100 points in total", Threshold: 100},
	{ID: string(types.AchievementTotalScore500), Name: "500 Points Collected", Description: "Score 500 points in total", Threshold: 500},
	{ID: string(types.AchievementStreak7Days), Name: "7-Day Streak", Description: "Play every day for 7 days in a row", Threshold: 7},
}

type CatalogRepo interface {
	// List returns every catalog item, ordered by id.
	List(ctx context.Context) ([]*types.CatalogItem, error)

	// SeedDefaults populates the catalog in one atomic batch. It does
	// nothing when the collection already has documents, so it is safe
	// to run on every startup.
	SeedDefaults(ctx context.Context) error
}

type catalogRepo struct {
	store docstore.Store
	log   *logger.Logger
}

func NewCatalogRepo(store docstore.Store, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{store: store, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) List(ctx context.Context) ([]*types.CatalogItem, error) {
	iter := r.store.Collection(catalogCollection).Query().Documents(ctx)
	defer iter.Stop()

	var items []*types.CatalogItem
	for {
		snap, err := iter.Next()
		if err == docstore.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog query: %w", err)
		}
		items = append(items, &types.CatalogItem{
			ID:          snap.ID,
			Name:        asString(snap.Data["name"]),
			Description: asString(snap.Data["description"]),
			IconURL:     asString(snap.Data["icon_url"]),
			Threshold:   asInt(snap.Data["threshold"]),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *catalogRepo) SeedDefaults(ctx context.Context) error {
	iter := r.store.Collection(catalogCollection).Query().Limit(1).Documents(ctx)
	_, err := iter.Next()
	iter.Stop()
	if err == nil {
		r.log.Debug("catalog already seeded, skipping")
		return nil
	}
	if err != docstore.Done {
		return fmt.Errorf("catalog seed probe: %w", err)
	}

	batch := r.store.Batch()
	for _, item := range DefaultCatalog {
		batch.Set(catalogCollection, item.ID, map[string]any{
			"id":          item.ID,
			"name":        item.Name,
			"description": item.Description,
			"icon_url":    item.IconURL,
			"threshold":   item.Threshold,
		})
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("catalog seed commit: %w", err)
	}
	r.log.Info("seeded achievement catalog", "items", len(DefaultCatalog))
	return nil
}
