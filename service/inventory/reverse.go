package inventory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jewelstock.GO/core/cache"
	inventoryEntity "jewelstock.GO/model/entity/inventory"
	skuEntity "jewelstock.GO/model/entity/sku"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
)

// ReturnItem is a manual override for destroy-and-return: the caller names
// the lot and quantity to credit back instead of the proportional split.
type ReturnItem struct {
	LotID    uint  `json:"lot_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// DestroyInput describes a destroy event for assembled SKU units.
type DestroyInput struct {
	SkuID         uint         `json:"sku_id" validate:"required"`
	Units         int64        `json:"units" validate:"required,gt=0"`
	ReturnToStock bool         `json:"return_to_stock"`
	Manual        []ReturnItem `json:"items,omitempty" validate:"omitempty,dive"`
	Reason        string       `json:"reason"`
}

// DestroyResult is the outcome of a destroy event.
type DestroyResult struct {
	Entries       []inventoryEntity.UsageEntry `json:"entries,omitempty"`
	Lots          []LotSnapshot                `json:"lots,omitempty"`
	Scrapped      bool                         `json:"scrapped"`
	CorrelationID string                       `json:"correlation_id,omitempty"`
}

// Destroy removes assembled SKU units. With ReturnToStock the constituent
// materials are credited back through negative ledger entries, either
// proportionally (recipe per-unit quantity × units) or per manual override.
// Without it the materials are scrapped: the ledger is untouched and only a
// DESTROY_SCRAP correction row records the event.
func Destroy(db *gorm.DB, in DestroyInput) (*DestroyResult, error) {
	if in.SkuID == 0 {
		return nil, fmt.Errorf("destroy: sku_id is required")
	}
	if in.Units <= 0 {
		return nil, fmt.Errorf("destroy: units must be positive")
	}

	if !in.ReturnToStock {
		return scrap(db, in)
	}

	result := &DestroyResult{CorrelationID: uuid.NewString()}

	err := db.Transaction(func(tx *gorm.DB) error {
		lotRepo, err := inventoryRepo.NewLotRepository(tx)
		if err != nil {
			return err
		}
		ledgerRepo, err := inventoryRepo.NewLedgerRepository(tx)
		if err != nil {
			return err
		}

		// The availability check is only safe while the SKU row lock is
		// held; concurrent destroys of the same SKU serialize here.
		var sku skuEntity.SKU
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sku, "sku_id = ?", in.SkuID).Error; err != nil {
			return fmt.Errorf("destroy: sku %d: %w", in.SkuID, err)
		}
		if in.Units > sku.Available {
			return fmt.Errorf("destroy: sku %d: %d units requested, %d available", in.SkuID, in.Units, sku.Available)
		}

		returns, err := resolveReturns(tx, ledgerRepo, in)
		if err != nil {
			return err
		}
		if len(returns) == 0 {
			return fmt.Errorf("destroy: sku %d: nothing to return", in.SkuID)
		}

		lotIDs := make([]uint, len(returns))
		for i, r := range returns {
			lotIDs[i] = r.LotID
		}
		lots, err := lotRepo.LockForUpdate(tx, lotIDs)
		if err != nil {
			return err
		}
		lotByID := make(map[uint]*inventoryEntity.MaterialLot, len(lots))
		for i := range lots {
			lotByID[lots[i].LotID] = &lots[i]
		}

		returnedCost := decimal.Zero
		for _, r := range returns {
			lot, ok := lotByID[r.LotID]
			if !ok {
				return fmt.Errorf("destroy: lot %d: %w", r.LotID, gorm.ErrRecordNotFound)
			}

			// Bound by what this SKU actually consumed from this lot,
			// net of returns already credited.
			returnable, err := ledgerRepo.NetConsumed(r.LotID, in.SkuID)
			if err != nil {
				return err
			}
			if r.Quantity > returnable {
				return &OverReturnError{LotID: r.LotID, SkuID: in.SkuID, Requested: r.Quantity, Returnable: returnable}
			}

			seq, err := ledgerRepo.NextSeq(tx, lot.LotID)
			if err != nil {
				return err
			}
			entry := inventoryEntity.UsageEntry{
				LotID:         lot.LotID,
				SkuID:         in.SkuID,
				Seq:           seq,
				Quantity:      -r.Quantity,
				CorrelationID: result.CorrelationID,
			}
			if lot.UnitCost != nil {
				unit := *lot.UnitCost
				total := unit.Mul(decimal.NewFromInt(-r.Quantity)).Round(2)
				entry.UnitCost = &unit
				entry.TotalCost = &total
				returnedCost = returnedCost.Add(unit.Mul(decimal.NewFromInt(r.Quantity)).Round(2))
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("destroy: ledger insert for lot %d: %w", lot.LotID, err)
			}

			res := tx.Model(&inventoryEntity.MaterialLot{}).
				Where("lot_id = ?", lot.LotID).
				Updates(map[string]interface{}{
					"used_quantity":      gorm.Expr("used_quantity - ?", r.Quantity),
					"remaining_quantity": gorm.Expr("remaining_quantity + ?", r.Quantity),
				})
			if res.Error != nil {
				return res.Error
			}

			lot.UsedQuantity -= r.Quantity
			lot.RemainingQuantity += r.Quantity
			result.Entries = append(result.Entries, entry)
			result.Lots = append(result.Lots, LotSnapshot{LotID: lot.LotID, Used: lot.UsedQuantity, Remaining: lot.RemainingQuantity})
		}

		sku.Available -= in.Units
		sku.MaterialCost = sku.MaterialCost.Sub(returnedCost)
		sku.TotalCost = sku.MaterialCost.Add(sku.LaborCost).Add(sku.CraftCost)
		if err := tx.Save(&sku).Error; err != nil {
			return fmt.Errorf("destroy: sku %d update: %w", in.SkuID, err)
		}
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

// resolveReturns computes the per-lot return quantities: the manual override
// when given, otherwise the recipe per-unit quantity times units destroyed.
func resolveReturns(tx *gorm.DB, ledgerRepo *inventoryRepo.LedgerRepository, in DestroyInput) ([]ReturnItem, error) {
	if len(in.Manual) > 0 {
		byLot := make(map[uint]int64, len(in.Manual))
		for _, m := range in.Manual {
			if m.LotID == 0 || m.Quantity <= 0 {
				return nil, fmt.Errorf("destroy: manual return items need lot_id and positive quantity")
			}
			byLot[m.LotID] += m.Quantity
		}
		merged := make([]ReturnItem, 0, len(byLot))
		for lotID, qty := range byLot {
			merged = append(merged, ReturnItem{LotID: lotID, Quantity: qty})
		}
		sort.Slice(merged, func(i, j int) bool { return merged[i].LotID < merged[j].LotID })
		return merged, nil
	}

	lines, err := recipeLines(tx, ledgerRepo, in.SkuID)
	if err != nil {
		return nil, err
	}
	units := decimal.NewFromInt(in.Units)
	returns := make([]ReturnItem, 0, len(lines))
	for _, line := range lines {
		// Floor, never round up: repeated partial destroys must not
		// front-load credits past what the remaining units consumed.
		qty := line.PerUnitQuantity.Mul(units).Floor().IntPart()
		if qty <= 0 {
			continue
		}
		returns = append(returns, ReturnItem{LotID: line.LotID, Quantity: qty})
	}
	sort.Slice(returns, func(i, j int) bool { return returns[i].LotID < returns[j].LotID })
	return returns, nil
}

// scrap records a destroy without inventory credit. The lot ledger stays
// untouched; availability drops and the correction log keeps the trace.
func scrap(db *gorm.DB, in DestroyInput) (*DestroyResult, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var sku skuEntity.SKU
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sku, "sku_id = ?", in.SkuID).Error; err != nil {
			return fmt.Errorf("destroy: sku %d: %w", in.SkuID, err)
		}
		if in.Units > sku.Available {
			return fmt.Errorf("destroy: sku %d: %d units requested, %d available", in.SkuID, in.Units, sku.Available)
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"units":  in.Units,
			"reason": in.Reason,
		})
		skuID := in.SkuID
		correction := inventoryEntity.LotCorrection{
			SkuID:  &skuID,
			Action: inventoryEntity.CorrectionScrap,
			Detail: datatypes.JSON(detail),
		}
		if err := tx.Create(&correction).Error; err != nil {
			return fmt.Errorf("destroy: scrap log for sku %d: %w", in.SkuID, err)
		}

		sku.Available -= in.Units
		return tx.Save(&sku).Error
	})
	if err != nil {
		return nil, err
	}
	return &DestroyResult{Scrapped: true}, nil
}
