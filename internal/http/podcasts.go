package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/okarpenko/podhaven/internal/database/podcasts"
	"github.com/okarpenko/podhaven/internal/entities"
)

// PodcastStore defines database operations for podcast authoring.
type PodcastStore interface {
	Create(podcast *entities.Podcast) error
	GetByID(id uint) (*entities.Podcast, error)
	GetAll() ([]entities.Podcast, error)
	Update(podcast *entities.Podcast) error
	Delete(id uint) error
}

// CreatorResolver resolves a creator id to a display name for listings.
type CreatorResolver interface {
	CreatorName(id uint) (string, error)
}

type PodcastsController struct {
	store    PodcastStore
	creators CreatorResolver
}

func NewPodcastsController(store PodcastStore, creators CreatorResolver) *PodcastsController {
	return &PodcastsController{store: store, creators: creators}
}

type podcastRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	PublisherName string `json:"publisherName"`
}

type podcastResponse struct {
	entities.Podcast
	CreatorName string `json:"creatorName,omitempty"`
}

func (pc *PodcastsController) withCreatorName(p entities.Podcast) podcastResponse {
	resp := podcastResponse{Podcast: p}
	if p.CreatorID != nil {
		if name, err := pc.creators.CreatorName(*p.CreatorID); err == nil {
			resp.CreatorName = name
		}
	}
	return resp
}

// ListPodcasts returns all podcast records with creator names resolved.
// GET /api/podcasts
func (pc *PodcastsController) ListPodcasts(c *gin.Context) {
	records, err := pc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "list podcasts")
		return
	}

	result := make([]podcastResponse, 0, len(records))
	for _, p := range records {
		result = append(result, pc.withCreatorName(p))
	}
	respondData(c, result)
}

// GetPodcast returns a single podcast record.
// GET /api/podcasts/:id
func (pc *PodcastsController) GetPodcast(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	podcast, err := pc.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "podcast not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get podcast")
		return
	}

	respondData(c, pc.withCreatorName(*podcast))
}

// CreatePodcast creates a local podcast record owned by the caller.
// POST /api/podcasts
func (pc *PodcastsController) CreatePodcast(c *gin.Context) {
	var req podcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	creatorID := GetUserID(c)
	podcast := &entities.Podcast{
		Title:         req.Title,
		Description:   req.Description,
		Image:         req.Image,
		PublisherName: req.PublisherName,
		CreatorID:     &creatorID,
		Source:        entities.PodcastSourceLocal,
	}

	if err := pc.store.Create(podcast); err != nil {
		if isValidationError(err) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create podcast")
		return
	}

	respondCreated(c, podcast)
}

// UpdatePodcast updates a local podcast record; only its creator may.
// PUT /api/podcasts/:id
func (pc *PodcastsController) UpdatePodcast(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	podcast, err := pc.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "podcast not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "update podcast")
		return
	}

	if !pc.isOwner(c, podcast) {
		respondForbidden(c, "user not authorized to update this podcast")
		return
	}

	var req podcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title != "" {
		podcast.Title = req.Title
	}
	if req.Description != "" {
		podcast.Description = req.Description
	}
	if req.Image != "" {
		podcast.Image = req.Image
	}
	if req.PublisherName != "" {
		podcast.PublisherName = req.PublisherName
	}

	if err := pc.store.Update(podcast); err != nil {
		if isValidationError(err) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "update podcast")
		return
	}

	respondData(c, podcast)
}

// DeletePodcast deletes a local podcast record; only its creator may.
// Liked references are cascade-removed by the store.
// DELETE /api/podcasts/:id
func (pc *PodcastsController) DeletePodcast(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	podcast, err := pc.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "podcast not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete podcast")
		return
	}

	if !pc.isOwner(c, podcast) {
		respondForbidden(c, "user not authorized to delete this podcast")
		return
	}

	if err := pc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete podcast")
		return
	}

	respondData(c, gin.H{})
}

// isOwner reports whether the caller created the record. Materialized
// catalog mirrors have no creator and are owned by nobody.
func (pc *PodcastsController) isOwner(c *gin.Context, podcast *entities.Podcast) bool {
	return podcast.CreatorID != nil && *podcast.CreatorID == GetUserID(c)
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, podcasts.ErrTitleRequired),
		errors.Is(err, podcasts.ErrTitleTooLong),
		errors.Is(err, podcasts.ErrDescTooLong),
		errors.Is(err, podcasts.ErrMissingExtID),
		errors.Is(err, podcasts.ErrLocalHasExtID):
		return true
	}
	return false
}
