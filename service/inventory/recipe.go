package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"jewelstock.GO/config"
	"jewelstock.GO/core/cache"
	skuEntity "jewelstock.GO/model/entity/sku"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
	skuRepo "jewelstock.GO/model/repository/sku"
)

// RecipeLine is one material requirement of a SKU unit.
type RecipeLine struct {
	LotID           uint             `json:"lot_id"`
	PerUnitQuantity decimal.Decimal  `json:"per_unit_quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	PerUnitCost     *decimal.Decimal `json:"per_unit_cost,omitempty"`
	NeedsReview     bool             `json:"needs_review,omitempty"`
}

// RecipeResult lists what one unit of a SKU requires and what it costs.
type RecipeResult struct {
	SkuID               uint            `json:"sku_id"`
	Lines               []RecipeLine    `json:"lines"`
	PerUnitMaterialCost decimal.Decimal `json:"per_unit_material_cost"`
	Reconstructed       bool            `json:"reconstructed,omitempty"`
}

// Recipe returns the per-unit material requirements for a SKU. Persisted
// recipe rows win; for SKUs assembled before recipe persistence existed,
// the recipe is reconstructed from the first assembly's ledger entries.
// Results are cached briefly and invalidated on every ledger write.
func Recipe(db *gorm.DB, skuID uint) (*RecipeResult, error) {
	if skuID == 0 {
		return nil, fmt.Errorf("recipe: sku_id is required")
	}
	if v, ok := cache.GetInstance().GetN("recipe", skuID); ok {
		if res, isRes := v.(*RecipeResult); isRes {
			return res, nil
		}
	}

	ledgerRepo, err := inventoryRepo.NewLedgerRepository(db)
	if err != nil {
		return nil, err
	}
	lines, err := recipeLines(db, ledgerRepo, skuID)
	if err != nil {
		return nil, err
	}

	result := &RecipeResult{SkuID: skuID, Lines: lines}
	total := decimal.Zero
	for i := range lines {
		if lines[i].UnitCost != nil {
			perUnit := lines[i].UnitCost.Mul(lines[i].PerUnitQuantity).Round(2)
			result.Lines[i].PerUnitCost = &perUnit
			total = total.Add(perUnit)
		}
	}
	result.PerUnitMaterialCost = total

	repo := skuRepo.NewSkuRepository(db)
	if has, err := repo.HasRecipe(skuID); err == nil {
		result.Reconstructed = !has && len(lines) > 0
	}

	ttl := int64(300)
	if config.AppConfig != nil && config.AppConfig.RecipeTTLSec > 0 {
		ttl = config.AppConfig.RecipeTTLSec
	}
	cache.GetInstance().SetN([]interface{}{"recipe", skuID}, result, ttl, []string{"recipe"})
	return result, nil
}

// recipeLines resolves the recipe inside an arbitrary DB handle (plain or
// transactional). Persisted rows first, ledger reconstruction as fallback.
func recipeLines(db *gorm.DB, ledgerRepo *inventoryRepo.LedgerRepository, skuID uint) ([]RecipeLine, error) {
	var items []skuEntity.RecipeItem
	if err := db.Where("sku_id = ?", skuID).Order("lot_id").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) > 0 {
		lines := make([]RecipeLine, len(items))
		for i, it := range items {
			lines[i] = RecipeLine{
				LotID:           it.LotID,
				PerUnitQuantity: it.PerUnitQuantity,
				UnitCost:        it.UnitCost,
				NeedsReview:     it.NeedsReview,
			}
		}
		return lines, nil
	}

	// Reconstruction: the first entry per lot, divided by the batch size
	// recorded on that entry. Never the cumulative ledger sum: later
	// batches and reversals would corrupt the per-unit quantity.
	firsts, err := ledgerRepo.FirstAssemblyEntries(skuID)
	if err != nil {
		return nil, err
	}
	lines := make([]RecipeLine, 0, len(firsts))
	for _, e := range firsts {
		line := RecipeLine{LotID: e.LotID, UnitCost: e.UnitCost}
		if e.BatchProduced > 0 {
			line.PerUnitQuantity = decimal.NewFromInt(e.Quantity).DivRound(decimal.NewFromInt(e.BatchProduced), 4)
		} else {
			// Unknown batch size: default to 1 and flag, never divide by zero.
			line.PerUnitQuantity = decimal.NewFromInt(1)
			line.NeedsReview = true
		}
		lines = append(lines, line)
	}
	return lines, nil
}
