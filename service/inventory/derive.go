package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
	purchaseEntity "jewelstock.GO/model/entity/purchase"
)

// DeriveResult holds the lot produced (or found) for a purchase.
type DeriveResult struct {
	Lot      *inventoryEntity.MaterialLot `json:"lot"`
	Created  bool                         `json:"created"`
	Warnings []string                     `json:"warnings,omitempty"`
}

// resolveOriginalQuantity picks the authoritative quantity field for the
// material type. BRACELET purchases track beads with piece count as the
// older fallback; everything else counts pieces.
func resolveOriginalQuantity(rec *purchaseEntity.PurchaseRecord) (int64, bool) {
	var q *int64
	switch rec.MaterialType {
	case purchaseEntity.MaterialBracelet:
		q = rec.TotalBeads
		if q == nil || *q <= 0 {
			q = rec.PieceCount
		}
	default:
		q = rec.PieceCount
	}
	if q == nil || *q <= 0 {
		return 0, false
	}
	return *q, true
}

// DeriveLot creates exactly one MaterialLot for a PurchaseRecord.
// Re-deriving for the same purchase is a no-op returning the existing lot;
// the unique index on purchase_id enforces it even under concurrent calls.
func DeriveLot(db *gorm.DB, rec *purchaseEntity.PurchaseRecord) (*DeriveResult, error) {
	if rec == nil {
		return nil, fmt.Errorf("derive lot: nil purchase record")
	}
	if !rec.MaterialType.Valid() {
		return nil, &InvalidMaterialTypeError{PurchaseID: rec.PurchaseID, Type: string(rec.MaterialType)}
	}

	result := &DeriveResult{}

	qty, ok := resolveOriginalQuantity(rec)
	needsReview := false
	reviewReason := ""
	if !ok {
		// Never allow a zero or negative original quantity.
		qty = 1
		needsReview = true
		reviewReason = "quantity fields missing or zero, defaulted to 1"
		result.Warnings = append(result.Warnings, fmt.Sprintf("purchase %d: %s", rec.PurchaseID, reviewReason))
	}

	var unitCost, totalCost *decimal.Decimal
	if rec.TotalPrice == nil {
		// Cost can be backfilled later; derivation must not fail on it.
		result.Warnings = append(result.Warnings, fmt.Sprintf("purchase %d: no total price, cost fields left null", rec.PurchaseID))
	} else if !ok {
		// Quantity was guessed, so a per-unit cost would be fiction.
		// Keep the total and leave unit cost null for manual review.
		total := *rec.TotalPrice
		totalCost = &total
	} else {
		unit := rec.TotalPrice.DivRound(decimal.NewFromInt(qty), 4)
		total := *rec.TotalPrice
		unitCost = &unit
		totalCost = &total
	}

	lot := &inventoryEntity.MaterialLot{
		PurchaseID:        rec.PurchaseID,
		OriginalQuantity:  qty,
		UsedQuantity:      0,
		RemainingQuantity: qty,
		UnitCost:          unitCost,
		TotalCost:         totalCost,
		NeedsReview:       needsReview,
		ReviewReason:      reviewReason,
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "purchase_id"}},
		DoNothing: true,
	}).Create(lot)
	if res.Error != nil {
		return nil, fmt.Errorf("derive lot for purchase %d: %w", rec.PurchaseID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Already derived: return the existing lot untouched.
		var existing inventoryEntity.MaterialLot
		if err := db.First(&existing, "purchase_id = ?", rec.PurchaseID).Error; err != nil {
			return nil, fmt.Errorf("derive lot for purchase %d: %w", rec.PurchaseID, err)
		}
		result.Lot = &existing
		result.Warnings = nil
		return result, nil
	}

	result.Lot = lot
	result.Created = true
	return result, nil
}
