// Package library implements the liked-podcast reconciliation and the
// library projection.
//
// Liking a catalog podcast that has no local record yet materializes one.
// Materialization may race with a concurrent first-like of the same catalog
// id from another session; the store's unique index on external_id decides
// the winner and the loser recovers by re-reading, so at most one record
// ever exists per catalog id and the operation is safe to retry.
package library

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/okarpenko/podhaven/internal/entities"
)

var (
	ErrPodcastNotFound = errors.New("podcast not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMissingMetadata = errors.New("missing podcast details (title, image, publisherName)")
)

// CatalogMetadata is the inline metadata a client supplies when liking a
// catalog podcast, needed only when no local mirror exists yet.
type CatalogMetadata struct {
	Title         string `json:"title"`
	Image         string `json:"image"`
	PublisherName string `json:"publisherName"`
}

// PodcastStore is the slice of the podcast repository the service needs.
// Lookups report absence with gorm.ErrRecordNotFound; Create reports a
// uniqueness conflict with gorm.ErrDuplicatedKey.
type PodcastStore interface {
	GetByID(id uint) (*entities.Podcast, error)
	GetByExternalID(externalID string) (*entities.Podcast, error)
	GetByIDs(ids []uint) ([]entities.Podcast, error)
	Create(podcast *entities.Podcast) error
}

// LikeStore mutates and reads a user's liked set. AddLike and RemoveLike
// are idempotent.
type LikeStore interface {
	AddLike(userID, podcastID uint) error
	RemoveLike(userID, podcastID uint) error
	LikedPodcastIDs(userID uint) ([]uint, error)
}

// UserStore verifies the caller exists and resolves creator display names.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
	CreatorName(id uint) (string, error)
}

// PodcastWithCreator is a library entry with the creator's name resolved.
type PodcastWithCreator struct {
	entities.Podcast
	CreatorName string `json:"creatorName,omitempty"`
}

type Service struct {
	podcasts PodcastStore
	likes    LikeStore
	users    UserStore
}

func NewService(podcasts PodcastStore, likes LikeStore, users UserStore) *Service {
	return &Service{podcasts: podcasts, likes: likes, users: users}
}

// Like ensures a local podcast record exists for ref, adds it to the user's
// liked set and returns the full updated set. meta is required only when ref
// is a catalog id with no local mirror yet.
func (s *Service) Like(userID uint, ref PodcastRef, meta *CatalogMetadata) ([]uint, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	podcastID, err := s.resolveForLike(ref, meta)
	if err != nil {
		return nil, err
	}

	if err := s.likes.AddLike(userID, podcastID); err != nil {
		return nil, fmt.Errorf("failed to add podcast %d to liked set: %w", podcastID, err)
	}

	return s.likes.LikedPodcastIDs(userID)
}

// Unlike removes the referenced podcast from the user's liked set and
// returns the updated set. A catalog ref that was never materialized is a
// no-op: the podcast cannot be in anyone's liked set, so the current set is
// returned unchanged. Unlike never creates records.
func (s *Service) Unlike(userID uint, ref PodcastRef) ([]uint, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	var podcastID uint
	if ref.IsLocal() {
		podcastID = ref.LocalID()
	} else {
		podcast, err := s.podcasts.GetByExternalID(ref.CatalogID())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.likes.LikedPodcastIDs(userID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve catalog id %q: %w", ref.CatalogID(), err)
		}
		podcastID = podcast.ID
	}

	if err := s.likes.RemoveLike(userID, podcastID); err != nil {
		return nil, fmt.Errorf("failed to remove podcast %d from liked set: %w", podcastID, err)
	}

	return s.likes.LikedPodcastIDs(userID)
}

// Library resolves the user's liked set into full podcast records with
// creator names. Ids that no longer resolve (a local podcast deleted out of
// band) are skipped, not errored. Order follows the set's insertion order.
func (s *Service) Library(userID uint) ([]PodcastWithCreator, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	ids, err := s.likes.LikedPodcastIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read liked set: %w", err)
	}

	records, err := s.podcasts.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked podcasts: %w", err)
	}

	byID := make(map[uint]entities.Podcast, len(records))
	for _, p := range records {
		byID[p.ID] = p
	}

	result := make([]PodcastWithCreator, 0, len(ids))
	for _, id := range ids {
		podcast, ok := byID[id]
		if !ok {
			// Stale reference, tolerated on the read path.
			continue
		}
		entry := PodcastWithCreator{Podcast: podcast}
		if podcast.CreatorID != nil {
			name, err := s.users.CreatorName(*podcast.CreatorID)
			if err == nil {
				entry.CreatorName = name
			}
		}
		result = append(result, entry)
	}

	return result, nil
}

// resolveForLike maps ref to a local podcast id, materializing a mirror for
// a not-yet-seen catalog id.
func (s *Service) resolveForLike(ref PodcastRef, meta *CatalogMetadata) (uint, error) {
	if ref.IsLocal() {
		podcast, err := s.podcasts.GetByID(ref.LocalID())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPodcastNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("failed to look up podcast %d: %w", ref.LocalID(), err)
		}
		return podcast.ID, nil
	}

	podcast, err := s.podcasts.GetByExternalID(ref.CatalogID())
	if err == nil {
		return podcast.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up catalog id %q: %w", ref.CatalogID(), err)
	}

	if meta == nil || meta.Title == "" || meta.Image == "" || meta.PublisherName == "" {
		return 0, ErrMissingMetadata
	}

	externalID := ref.CatalogID()
	created := &entities.Podcast{
		Title:         meta.Title,
		Image:         meta.Image,
		PublisherName: meta.PublisherName,
		ExternalID:    &externalID,
		Source:        entities.PodcastSourceListenNotes,
	}

	err = s.podcasts.Create(created)
	if err == nil {
		log.Printf("Materialized catalog podcast %q as record %d", externalID, created.ID)
		return created.ID, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, fmt.Errorf("failed to materialize catalog id %q: %w", externalID, err)
	}

	// Lost the first-like race: another session inserted the mirror between
	// our lookup and insert. Reuse the winner's record.
	existing, readErr := s.podcasts.GetByExternalID(externalID)
	if readErr != nil {
		return 0, fmt.Errorf("failed to materialize catalog id %q: %w", externalID, err)
	}
	return existing.ID, nil
}

func (s *Service) ensureUser(userID uint) error {
	_, err := s.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user %d: %w", userID, err)
	}
	return nil
}
