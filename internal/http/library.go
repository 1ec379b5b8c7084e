package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/library"
)

// LibraryService is the slice of the reconciliation service the controller
// needs.
type LibraryService interface {
	Like(userID uint, ref library.PodcastRef, meta *library.CatalogMetadata) ([]uint, error)
	Unlike(userID uint, ref library.PodcastRef) ([]uint, error)
	Library(userID uint) ([]library.PodcastWithCreator, error)
}

type LibraryController struct {
	service LibraryService
}

func NewLibraryController(service LibraryService) *LibraryController {
	return &LibraryController{service: service}
}

// parsePodcastRef decides whether the path parameter names a local record or
// a catalog entry. Local record ids are numeric; Listen Notes ids are not.
// A client can force the interpretation with ?ref=local or ?ref=catalog,
// which wins over the numeric rule.
func parsePodcastRef(c *gin.Context) (library.PodcastRef, bool) {
	raw := c.Param("podcastRef")
	if raw == "" {
		respondBadRequest(c, "podcast reference is required")
		return library.PodcastRef{}, false
	}

	switch c.Query("ref") {
	case "local":
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid local podcast id")
			return library.PodcastRef{}, false
		}
		return library.LocalRef(uint(id)), true
	case "catalog":
		return library.CatalogRef(raw), true
	}

	if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return library.LocalRef(uint(id)), true
	}
	return library.CatalogRef(raw), true
}

// Like adds a podcast to the caller's liked set, materializing a local
// record for a first-seen catalog id.
// PUT /api/users/like/:podcastRef
func (lc *LibraryController) Like(c *gin.Context) {
	ref, ok := parsePodcastRef(c)
	if !ok {
		return
	}

	// Metadata is optional on the wire; the service enforces its presence
	// when materialization is actually needed.
	var meta library.CatalogMetadata
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&meta); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	likedIDs, err := lc.service.Like(GetUserID(c), ref, &meta)
	if err != nil {
		lc.respondLibraryError(c, err, "like podcast")
		return
	}

	respondData(c, likedIDs)
}

// Unlike removes a podcast from the caller's liked set.
// PUT /api/users/unlike/:podcastRef
func (lc *LibraryController) Unlike(c *gin.Context) {
	ref, ok := parsePodcastRef(c)
	if !ok {
		return
	}

	likedIDs, err := lc.service.Unlike(GetUserID(c), ref)
	if err != nil {
		lc.respondLibraryError(c, err, "unlike podcast")
		return
	}

	respondData(c, likedIDs)
}

// GetLibrary returns the caller's liked podcasts with creator names.
// GET /api/users/library
func (lc *LibraryController) GetLibrary(c *gin.Context) {
	entries, err := lc.service.Library(GetUserID(c))
	if err != nil {
		lc.respondLibraryError(c, err, "fetch library")
		return
	}

	respondData(c, entries)
}

func (lc *LibraryController) respondLibraryError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, library.ErrPodcastNotFound):
		respondNotFound(c, "podcast not found")
	case errors.Is(err, library.ErrMissingMetadata):
		respondBadRequest(c, err.Error())
	case errors.Is(err, library.ErrUserNotFound):
		// An authenticated caller with no user record is a dangling
		// credential, surfaced as a server fault.
		respondInternalError(c, err, context)
	default:
		respondInternalError(c, err, context)
	}
}
