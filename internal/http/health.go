package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okarpenko/podhaven/internal/database"
)

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

// HealthController reports process liveness and database reachability.
type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Status returns 200 while the database answers pings, 503 otherwise.
// GET /health
func (hc *HealthController) Status(c *gin.Context) {
	resp := healthResponse{
		Status:   "healthy",
		Version:  hc.version,
		Time:     time.Now().Format(time.RFC3339),
		Database: "ok",
	}

	if err := hc.pingDatabase(); err != nil {
		resp.Status = "unhealthy"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (hc *HealthController) pingDatabase() error {
	sqlDB, err := hc.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
