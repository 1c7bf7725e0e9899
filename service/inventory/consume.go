package inventory

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jewelstock.GO/core/cache"
	inventoryEntity "jewelstock.GO/model/entity/inventory"
	skuEntity "jewelstock.GO/model/entity/sku"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
)

// ConsumeItem is one (lot, quantity) pair of an assembly event.
type ConsumeItem struct {
	LotID    uint  `json:"lot_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// ConsumeInput describes one assembly event: the SKU batch being produced
// and the materials it consumes.
type ConsumeInput struct {
	SkuID         uint          `json:"sku_id" validate:"required"`
	BatchProduced int64         `json:"batch_produced" validate:"required_without=AllowBackfill,omitempty,gt=0"`
	Items         []ConsumeItem `json:"items" validate:"required,min=1,dive"`
	// AllowBackfill skips the stock check for historical reconciliation.
	// Remaining quantity may go negative; the auditor flags it.
	AllowBackfill bool `json:"allow_backfill"`
}

// LotSnapshot reports a lot's quantities after a ledger write.
type LotSnapshot struct {
	LotID     uint  `json:"lot_id"`
	Used      int64 `json:"used_quantity"`
	Remaining int64 `json:"remaining_quantity"`
}

// ConsumeResult is the outcome of one assembly event.
type ConsumeResult struct {
	Entries        []inventoryEntity.UsageEntry `json:"entries"`
	Lots           []LotSnapshot                `json:"lots"`
	BatchCost      decimal.Decimal              `json:"batch_cost"`
	RecipeCaptured bool                         `json:"recipe_captured"`
	CorrelationID  string                       `json:"correlation_id"`
}

// mergeItems collapses duplicate lot references and returns items sorted by
// lot ID, the order in which row locks are taken.
func mergeItems(items []ConsumeItem) ([]ConsumeItem, error) {
	byLot := make(map[uint]int64, len(items))
	for _, it := range items {
		if it.LotID == 0 {
			return nil, fmt.Errorf("consume: lot_id is required")
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("consume: lot %d: quantity must be positive", it.LotID)
		}
		byLot[it.LotID] += it.Quantity
	}
	merged := make([]ConsumeItem, 0, len(byLot))
	for lotID, qty := range byLot {
		merged = append(merged, ConsumeItem{LotID: lotID, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].LotID < merged[j].LotID })
	return merged, nil
}

// Consume records material consumption for one SKU assembly batch.
// Ledger inserts and lot updates happen in a single transaction with the
// involved lots row-locked, so two concurrent assemblies cannot both pass
// the stock check and oversell.
func Consume(db *gorm.DB, in ConsumeInput) (*ConsumeResult, error) {
	if in.SkuID == 0 {
		return nil, fmt.Errorf("consume: sku_id is required")
	}
	if in.BatchProduced <= 0 && !in.AllowBackfill {
		return nil, fmt.Errorf("consume: batch_produced must be positive")
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("consume: no items")
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	result := &ConsumeResult{CorrelationID: uuid.NewString()}

	err = db.Transaction(func(tx *gorm.DB) error {
		lotRepo, err := inventoryRepo.NewLotRepository(tx)
		if err != nil {
			return err
		}
		ledgerRepo, err := inventoryRepo.NewLedgerRepository(tx)
		if err != nil {
			return err
		}

		// Two assemblies of the same SKU can consume disjoint lots and
		// never meet on a lot lock. The SKU row is the serialization
		// point for its counters and the first-assembly recipe capture.
		var sku skuEntity.SKU
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sku, "sku_id = ?", in.SkuID).Error; err != nil {
			return fmt.Errorf("consume: sku %d: %w", in.SkuID, err)
		}

		lotIDs := make([]uint, len(items))
		for i, it := range items {
			lotIDs[i] = it.LotID
		}
		lots, err := lotRepo.LockForUpdate(tx, lotIDs)
		if err != nil {
			return err
		}
		lotByID := make(map[uint]*inventoryEntity.MaterialLot, len(lots))
		for i := range lots {
			lotByID[lots[i].LotID] = &lots[i]
		}

		batchCost := decimal.Zero
		for _, it := range items {
			lot, ok := lotByID[it.LotID]
			if !ok {
				return fmt.Errorf("consume: lot %d: %w", it.LotID, gorm.ErrRecordNotFound)
			}
			if !in.AllowBackfill && it.Quantity > lot.RemainingQuantity {
				return &InsufficientStockError{LotID: lot.LotID, Requested: it.Quantity, Available: lot.RemainingQuantity}
			}

			seq, err := ledgerRepo.NextSeq(tx, lot.LotID)
			if err != nil {
				return err
			}

			entry := inventoryEntity.UsageEntry{
				LotID:         lot.LotID,
				SkuID:         in.SkuID,
				Seq:           seq,
				Quantity:      it.Quantity,
				BatchProduced: in.BatchProduced,
				CorrelationID: result.CorrelationID,
			}
			if lot.UnitCost != nil {
				unit := *lot.UnitCost
				total := unit.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
				entry.UnitCost = &unit
				entry.TotalCost = &total
				batchCost = batchCost.Add(total)
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("consume: ledger insert for lot %d: %w", lot.LotID, err)
			}

			// Guarded decrement: even if the row lock degrades on a
			// storage layer without SELECT FOR UPDATE, a stale read
			// cannot slip past the remaining_quantity predicate.
			q := tx.Model(&inventoryEntity.MaterialLot{}).
				Where("lot_id = ?", lot.LotID)
			if !in.AllowBackfill {
				q = q.Where("remaining_quantity >= ?", it.Quantity)
			}
			res := q.Updates(map[string]interface{}{
				"used_quantity":      gorm.Expr("used_quantity + ?", it.Quantity),
				"remaining_quantity": gorm.Expr("remaining_quantity - ?", it.Quantity),
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{LotID: lot.LotID, Requested: it.Quantity, Available: lot.RemainingQuantity}
			}

			lot.UsedQuantity += it.Quantity
			lot.RemainingQuantity -= it.Quantity
			result.Entries = append(result.Entries, entry)
			result.Lots = append(result.Lots, LotSnapshot{LotID: lot.LotID, Used: lot.UsedQuantity, Remaining: lot.RemainingQuantity})
		}

		captured, err := captureRecipe(tx, &sku, items, lotByID, in.BatchProduced)
		if err != nil {
			return err
		}
		result.RecipeCaptured = captured

		sku.TotalProduced += in.BatchProduced
		sku.Available += in.BatchProduced
		sku.MaterialCost = sku.MaterialCost.Add(batchCost)
		sku.TotalCost = sku.MaterialCost.Add(sku.LaborCost).Add(sku.CraftCost)
		if err := tx.Save(&sku).Error; err != nil {
			return fmt.Errorf("consume: sku %d update: %w", in.SkuID, err)
		}

		result.BatchCost = batchCost
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.GetInstance().DeleteN("recipe", in.SkuID)
	for _, snap := range result.Lots {
		publishRemaining(snap.LotID, snap.Remaining)
	}
	return result, nil
}

// captureRecipe persists per-unit recipe rows at the SKU's first assembly.
// Later batches never overwrite them; the first batch is the recipe.
func captureRecipe(tx *gorm.DB, sku *skuEntity.SKU, items []ConsumeItem, lotByID map[uint]*inventoryEntity.MaterialLot, batchProduced int64) (bool, error) {
	var count int64
	if err := tx.Model(&skuEntity.RecipeItem{}).Where("sku_id = ?", sku.SkuID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	rows := make([]skuEntity.RecipeItem, 0, len(items))
	for _, it := range items {
		row := skuEntity.RecipeItem{
			SkuID: sku.SkuID,
			LotID: it.LotID,
		}
		if batchProduced > 0 {
			row.PerUnitQuantity = decimal.NewFromInt(it.Quantity).DivRound(decimal.NewFromInt(batchProduced), 4)
		} else {
			row.PerUnitQuantity = decimal.NewFromInt(1)
			row.NeedsReview = true
		}
		if lot := lotByID[it.LotID]; lot != nil && lot.UnitCost != nil {
			unit := *lot.UnitCost
			row.UnitCost = &unit
		}
		rows = append(rows, row)
	}
	if err := tx.Create(&rows).Error; err != nil {
		return false, fmt.Errorf("capture recipe for sku %d: %w", sku.SkuID, err)
	}
	return true, nil
}
