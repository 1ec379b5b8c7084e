// Package users provides database operations for user records and the
// liked-podcast set attached to each user.
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/okarpenko/podhaven/internal/entities"
)

var ErrEmailTaken = errors.New("email already in use")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(user *entities.User) error {
	err := r.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Update(user *entities.User) error {
	err := r.db.Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *Repository) UpdatePassword(userID uint, passwordHash string) error {
	return r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

// CreatorName resolves a podcast creator id to a display name.
// Used by the library projection instead of a store-level join.
func (r *Repository) CreatorName(id uint) (string, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// AddLike inserts a membership row into the user's liked set. Liking an
// already-liked podcast is a no-op: the composite unique index rejects the
// duplicate and the conflict is swallowed here (set semantics).
func (r *Repository) AddLike(userID, podcastID uint) error {
	err := r.db.Create(&entities.LikedPodcast{UserID: userID, PodcastID: podcastID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveLike deletes a membership row. Removing an absent row is a no-op.
func (r *Repository) RemoveLike(userID, podcastID uint) error {
	return r.db.
		Where("user_id = ? AND podcast_id = ?", userID, podcastID).
		Delete(&entities.LikedPodcast{}).Error
}

// LikedPodcastIDs returns the user's liked set in insertion order.
func (r *Repository) LikedPodcastIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.LikedPodcast{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("podcast_id", &ids).Error
	return ids, err
}
