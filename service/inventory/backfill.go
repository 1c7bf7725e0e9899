package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	purchaseEntity "jewelstock.GO/model/entity/purchase"
)

// BackfillResult holds counters from a derivation backfill run.
type BackfillResult struct {
	Scanned  int      `json:"scanned"`
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// DeriveMissingLots derives a MaterialLot for every purchase that lacks
// one. This replaces the ad-hoc repair scripts of the legacy system: the
// run is idempotent and purchases with bad material types are reported,
// not fatal.
func DeriveMissingLots(db *gorm.DB, batchSize int) (*BackfillResult, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	result := &BackfillResult{}

	var purchases []purchaseEntity.PurchaseRecord
	res := db.Model(&purchaseEntity.PurchaseRecord{}).
		Where("purchase_id NOT IN (SELECT purchase_id FROM material_lot)").
		Order("purchase_id").
		FindInBatches(&purchases, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range purchases {
				result.Scanned++
				dr, err := DeriveLot(db, &purchases[i])
				if err != nil {
					var invalid *InvalidMaterialTypeError
					if errors.As(err, &invalid) {
						result.Skipped++
						result.Warnings = append(result.Warnings, invalid.Error())
						continue
					}
					return err
				}
				if dr.Created {
					result.Created++
				} else {
					result.Skipped++
				}
				result.Warnings = append(result.Warnings, dr.Warnings...)
			}
			return nil
		})
	if res.Error != nil {
		return nil, fmt.Errorf("backfill: %w", res.Error)
	}
	return result, nil
}
