package assembly

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"jewelstock.GO/api"
	inventoryService "jewelstock.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterAssemblyRoutes)
}

func RegisterAssemblyRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/assemblies")

	// POST /api/assemblies – record one assembly batch's consumption
	g.POST("", func(c echo.Context) error {
		start := time.Now()

		var body inventoryService.ConsumeInput
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := api.ValidateBody(c, &body); err != nil {
			return err
		}

		res, err := inventoryService.Consume(db, body)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			var insufficient *inventoryService.InsufficientStockError
			if errors.As(err, &insufficient) {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":     "insufficient stock",
					"lot_id":    insufficient.LotID,
					"requested": insufficient.Requested,
					"available": insufficient.Available,
				})
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, res)
	})

	// POST /api/assemblies/destroy – destroy units, optionally return materials
	g.POST("/destroy", func(c echo.Context) error {
		var body inventoryService.DestroyInput
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := api.ValidateBody(c, &body); err != nil {
			return err
		}

		res, err := inventoryService.Destroy(db, body)
		if err != nil {
			var overReturn *inventoryService.OverReturnError
			if errors.As(err, &overReturn) {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":      "over-return",
					"lot_id":     overReturn.LotID,
					"sku_id":     overReturn.SkuID,
					"requested":  overReturn.Requested,
					"returnable": overReturn.Returnable,
				})
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/skus/:id/recipe – per-unit material requirements
	apiGroup.GET("/skus/:id/recipe", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sku id"})
		}
		res, err := inventoryService.Recipe(db, uint(id))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, res)
	})
}
