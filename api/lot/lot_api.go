package lot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"jewelstock.GO/api"
	purchaseEntity "jewelstock.GO/model/entity/purchase"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
	inventoryService "jewelstock.GO/service/inventory"
	searchService "jewelstock.GO/service/search"
)

func init() {
	api.RegisterModule(RegisterLotRoutes)
}

func RegisterLotRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/lots")

	// POST /api/lots/derive – derive the material lot for a purchase
	g.POST("/derive", func(c echo.Context) error {
		var body struct {
			PurchaseID uint `json:"purchase_id" validate:"required"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := api.ValidateBody(c, &body); err != nil {
			return err
		}

		var rec purchaseEntity.PurchaseRecord
		if err := db.First(&rec, "purchase_id = ?", body.PurchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		res, err := inventoryService.DeriveLot(db, &rec)
		if err != nil {
			var invalid *inventoryService.InvalidMaterialTypeError
			if errors.As(err, &invalid) {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error":         "invalid material type",
					"purchase_id":   invalid.PurchaseID,
					"material_type": invalid.Type,
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		if res.Created {
			if idx := searchService.GetIndexer(); idx.Enabled() {
				_ = idx.IndexLot(c.Request().Context(), res.Lot, &rec)
			}
		}
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/lots – paginated lot list
	g.GET("", func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
		if page <= 0 {
			page = 1
		}
		if pageSize <= 0 || pageSize > 200 {
			pageSize = 20
		}

		repo, err := inventoryRepo.NewLotRepository(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		lots, total, err := repo.List(pageSize, (page-1)*pageSize)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items":     lots,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	})

	// GET /api/lots/search – full-text lot search (Elasticsearch)
	g.GET("/search", func(c echo.Context) error {
		q := c.QueryParam("q")
		if q == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
		}
		page, _ := strconv.Atoi(c.QueryParam("page"))
		pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

		docs, total, err := searchService.GetIndexer().SearchLots(c.Request().Context(), q, pageSize, page)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": docs, "total": total})
	})

	// GET /api/lots/:id – single lot with its ledger
	g.GET("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
		}

		repo, err := inventoryRepo.NewLotRepository(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		l, err := repo.FindByID(uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		ledger, err := inventoryRepo.NewLedgerRepository(db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		entries, err := ledger.EntriesByLot(l.LotID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"lot": l, "ledger": entries})
	})
}
