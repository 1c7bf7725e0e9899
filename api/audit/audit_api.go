package audit

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"jewelstock.GO/api"
	inventoryService "jewelstock.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterAuditRoutes)
}

func RegisterAuditRoutes(apiGroup *echo.Group, db *gorm.DB) {
	// POST /api/inventory/audit – drift scan; repair only when asked
	apiGroup.POST("/inventory/audit", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Repair    bool `json:"repair"`
			BatchSize int  `json:"batch_size"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		report, err := inventoryService.Audit(db, inventoryService.AuditOptions{
			Repair:    body.Repair,
			BatchSize: body.BatchSize,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"report":      report,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
