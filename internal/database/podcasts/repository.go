// Package podcasts provides database operations for podcast records.
//
// This package implements the stores consumed by internal/library and
// internal/http/podcasts.go.
package podcasts

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/okarpenko/podhaven/internal/entities"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = fmt.Errorf("title cannot be more than %d characters", entities.MaxTitleLength)
	ErrDescTooLong   = fmt.Errorf("description cannot be more than %d characters", entities.MaxDescriptionLength)
	ErrMissingExtID  = errors.New("listenNotes podcast requires an external id")
	ErrLocalHasExtID = errors.New("local podcast cannot carry an external id")
)

// Repository handles all podcast database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// validate enforces the field rules tied to the source discriminator:
// listenNotes records must carry an external id, local records must not.
func validate(p *entities.Podcast) error {
	if p.Title == "" {
		return ErrTitleRequired
	}
	if len(p.Title) > entities.MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(p.Description) > entities.MaxDescriptionLength {
		return ErrDescTooLong
	}
	switch p.Source {
	case entities.PodcastSourceListenNotes:
		if p.ExternalID == nil || *p.ExternalID == "" {
			return ErrMissingExtID
		}
	case entities.PodcastSourceLocal, "":
		if p.ExternalID != nil {
			return ErrLocalHasExtID
		}
	}
	return nil
}

// Create inserts a new podcast record. A concurrent insert of the same
// external id fails with gorm.ErrDuplicatedKey; callers recover by
// re-reading via GetByExternalID.
func (r *Repository) Create(podcast *entities.Podcast) error {
	if podcast.Source == "" {
		podcast.Source = entities.PodcastSourceLocal
	}
	if err := validate(podcast); err != nil {
		return err
	}
	return r.db.Create(podcast).Error
}

func (r *Repository) GetByID(id uint) (*entities.Podcast, error) {
	var podcast entities.Podcast
	err := r.db.First(&podcast, id).Error
	if err != nil {
		return nil, err
	}
	return &podcast, nil
}

// GetByExternalID finds the local mirror of a catalog entry.
func (r *Repository) GetByExternalID(externalID string) (*entities.Podcast, error) {
	var podcast entities.Podcast
	err := r.db.
		Where("external_id = ? AND source = ?", externalID, entities.PodcastSourceListenNotes).
		First(&podcast).Error
	if err != nil {
		return nil, err
	}
	return &podcast, nil
}

// GetByIDs returns the podcasts whose ids are in the given list. Missing ids
// are simply absent from the result; callers decide how to treat the gaps.
func (r *Repository) GetByIDs(ids []uint) ([]entities.Podcast, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var result []entities.Podcast
	err := r.db.Where("id IN ?", ids).Find(&result).Error
	return result, err
}

func (r *Repository) GetAll() ([]entities.Podcast, error) {
	var result []entities.Podcast
	err := r.db.Order("created_at DESC").Find(&result).Error
	return result, err
}

func (r *Repository) Update(podcast *entities.Podcast) error {
	if err := validate(podcast); err != nil {
		return err
	}
	return r.db.Save(podcast).Error
}

// Delete removes a podcast and cascades the removal to every user's liked
// set in the same transaction, so no dangling references survive a delete
// that goes through this path.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("podcast_id = ?", id).Delete(&entities.LikedPodcast{}).Error; err != nil {
			return fmt.Errorf("failed to remove liked references: %w", err)
		}
		return tx.Delete(&entities.Podcast{}, id).Error
	})
}

// StaleMaterialized returns listenNotes mirrors not updated since the cutoff,
// for the catalog refresh scheduler.
func (r *Repository) StaleMaterialized(cutoff time.Time) ([]entities.Podcast, error) {
	var result []entities.Podcast
	err := r.db.
		Where("source = ? AND updated_at < ?", entities.PodcastSourceListenNotes, cutoff).
		Find(&result).Error
	return result, err
}
