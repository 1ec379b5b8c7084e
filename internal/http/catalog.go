package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/catalog"
)

// CatalogGateway is the slice of the Listen Notes client the controller
// needs.
type CatalogGateway interface {
	Search(ctx context.Context, term string) ([]catalog.PodcastSummary, error)
	BestPodcasts(ctx context.Context) ([]catalog.PodcastSummary, error)
	GetPodcast(ctx context.Context, externalID string) (*catalog.PodcastDetail, error)
}

type CatalogController struct {
	gateway CatalogGateway
}

func NewCatalogController(gateway CatalogGateway) *CatalogController {
	return &CatalogController{gateway: gateway}
}

// Search delegates a search term verbatim to the catalog.
// GET /api/listennotes/search?q=term
func (cc *CatalogController) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		respondBadRequest(c, "search query (q) is required")
		return
	}

	results, err := cc.gateway.Search(c.Request.Context(), term)
	if err != nil {
		respondGatewayError(c, err, "search")
		return
	}

	respondData(c, results)
}

// BestPodcasts returns the catalog's curated list.
// GET /api/listennotes/best
func (cc *CatalogController) BestPodcasts(c *gin.Context) {
	results, err := cc.gateway.BestPodcasts(c.Request.Context())
	if err != nil {
		respondGatewayError(c, err, "best podcasts")
		return
	}

	respondData(c, results)
}

// GetPodcast returns one catalog entry with episodes, most recent first.
// GET /api/listennotes/podcasts/:id
func (cc *CatalogController) GetPodcast(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "podcast id is required")
		return
	}

	detail, err := cc.gateway.GetPodcast(c.Request.Context(), id)
	if err != nil {
		respondGatewayError(c, err, "get podcast")
		return
	}

	respondData(c, detail)
}
