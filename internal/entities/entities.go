package entities

import "time"

// PodcastSource indicates where a podcast record originated.
type PodcastSource string

const (
	PodcastSourceLocal       PodcastSource = "local"       // authored by a user of this app
	PodcastSourceListenNotes PodcastSource = "listenNotes" // materialized mirror of a catalog entry
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100" json:"name"`
	Email             string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash      string    `gorm:"size:100" json:"-"`
	ProfilePictureURL string    `gorm:"size:2048" json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Podcast is either a locally authored record (Source=local, CreatorID set,
// ExternalID nil) or a lazily materialized mirror of a catalog entry
// (Source=listenNotes, ExternalID set). The unique index on ExternalID is
// sparse: NULL rows (local podcasts) do not collide.
type Podcast struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Title         string        `gorm:"size:100" json:"title"`
	Description   string        `gorm:"size:500" json:"description,omitempty"`
	Image         string        `gorm:"size:2048" json:"image,omitempty"`
	PublisherName string        `gorm:"size:256" json:"publisherName,omitempty"`
	CreatorID     *uint         `gorm:"index" json:"creatorId,omitempty"`
	ExternalID    *string       `gorm:"uniqueIndex;size:256" json:"externalId,omitempty"`
	Source        PodcastSource `gorm:"size:20;default:'local'" json:"source"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// LikedPodcast is one membership row of a user's liked set. The composite
// unique index gives the set semantics; the auto-increment ID preserves
// insertion order for library display.
type LikedPodcast struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_liked_user_podcast;index" json:"userId"`
	PodcastID uint      `gorm:"uniqueIndex:idx_liked_user_podcast" json:"podcastId"`
	CreatedAt time.Time `json:"-"`
}

func (LikedPodcast) TableName() string {
	return "liked_podcasts"
}
