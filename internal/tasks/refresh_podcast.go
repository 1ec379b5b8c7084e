package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/okarpenko/podhaven/internal/catalog"
	"github.com/okarpenko/podhaven/internal/database/podcasts"
	"github.com/okarpenko/podhaven/internal/entities"
)

// RefreshPodcastTask re-fetches one materialized catalog mirror so its
// title, image and publisher track the upstream entry.
type RefreshPodcastTask struct {
	PodcastID uint `json:"podcast_id"`
}

// Config returns the queue configuration for podcast refresh tasks.
func (t RefreshPodcastTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_podcast",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CatalogFetcher is the slice of the catalog client the refresh task needs.
type CatalogFetcher interface {
	GetPodcast(ctx context.Context, externalID string) (*catalog.PodcastDetail, error)
}

// RefreshPodcastProcessor creates a processor function for RefreshPodcastTask.
func RefreshPodcastProcessor(repo *podcasts.Repository, fetcher CatalogFetcher) backlite.QueueProcessor[RefreshPodcastTask] {
	return func(ctx context.Context, task RefreshPodcastTask) error {
		if fetcher == nil {
			return fmt.Errorf("catalog client not configured")
		}

		record, err := repo.GetByID(task.PodcastID)
		if err != nil {
			return fmt.Errorf("load podcast %d: %w", task.PodcastID, err)
		}
		if record.Source != entities.PodcastSourceListenNotes || record.ExternalID == nil {
			log.Printf("[TASK] Podcast %d is not a catalog mirror, skipping refresh", task.PodcastID)
			return nil
		}

		detail, err := fetcher.GetPodcast(ctx, *record.ExternalID)
		if err != nil {
			return fmt.Errorf("fetch catalog entry %s: %w", *record.ExternalID, err)
		}

		changed := false
		if detail.Title != "" && detail.Title != record.Title {
			record.Title = detail.Title
			changed = true
		}
		if detail.Image != record.Image {
			record.Image = detail.Image
			changed = true
		}
		if detail.Publisher != record.PublisherName {
			record.PublisherName = detail.Publisher
			changed = true
		}

		if !changed {
			// Still touch updated_at so the record drops out of the stale set.
			record.UpdatedAt = time.Now()
		}
		if err := repo.Update(record); err != nil {
			return fmt.Errorf("update podcast %d: %w", task.PodcastID, err)
		}

		if changed {
			log.Printf("[TASK] Refreshed podcast %d (%s) from catalog", task.PodcastID, record.Title)
		}
		return nil
	}
}

// NewRefreshPodcastQueue creates a backlite queue for podcast refresh tasks.
func NewRefreshPodcastQueue(repo *podcasts.Repository, fetcher CatalogFetcher) backlite.Queue {
	return backlite.NewQueue(RefreshPodcastProcessor(repo, fetcher))
}
