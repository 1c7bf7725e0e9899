package inventory

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
)

// Discrepancy reports one drifted lot: stored remaining quantity vs the
// value implied by original_quantity - sum(ledger entries).
type Discrepancy struct {
	LotID           uint  `json:"lot_id"`
	Stored          int64 `json:"stored"`
	Implied         int64 `json:"implied"`
	Delta           int64 `json:"delta"`
	NegativeImplied bool  `json:"negative_implied,omitempty"`
	Repaired        bool  `json:"repaired,omitempty"`
}

// AuditOptions configures an auditor run.
type AuditOptions struct {
	// Repair overwrites drifted stored values with the ledger-implied
	// ones, logging every correction. Without it the run is read-only.
	Repair    bool
	BatchSize int
}

// AuditReport is the completeness report of one auditor pass.
type AuditReport struct {
	Scanned       int           `json:"scanned"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	Repaired      int           `json:"repaired"`
	Errors        int           `json:"errors"`
	NegativeLots  []uint        `json:"negative_lots,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
}

// Audit scans every material lot for drift between its stored remaining
// quantity and the quantity implied by the usage ledger. It never aborts on
// a malformed lot: anomalies are counted and the scan moves on.
func Audit(db *gorm.DB, opts AuditOptions) (*AuditReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	report := &AuditReport{StartedAt: time.Now()}

	ledgerRepo, err := inventoryRepo.NewLedgerRepository(db)
	if err != nil {
		return nil, err
	}
	sums, err := ledgerRepo.NetSumsByLot()
	if err != nil {
		return nil, fmt.Errorf("audit: ledger sums: %w", err)
	}

	var lots []inventoryEntity.MaterialLot
	res := db.Model(&inventoryEntity.MaterialLot{}).Order("lot_id").FindInBatches(&lots, opts.BatchSize, func(tx *gorm.DB, _ int) error {
		for i := range lots {
			lot := &lots[i]
			report.Scanned++

			if lot.OriginalQuantity < 0 {
				log.Printf("audit: lot %d: malformed original quantity %d, skipping", lot.LotID, lot.OriginalQuantity)
				report.Errors++
				continue
			}

			implied := lot.OriginalQuantity - sums[lot.LotID]
			if implied < 0 {
				// Oversold or double-counted: surface it, never clamp.
				report.NegativeLots = append(report.NegativeLots, lot.LotID)
			}
			if implied == lot.RemainingQuantity && sums[lot.LotID] == lot.UsedQuantity {
				continue
			}

			d := Discrepancy{
				LotID:           lot.LotID,
				Stored:          lot.RemainingQuantity,
				Implied:         implied,
				Delta:           implied - lot.RemainingQuantity,
				NegativeImplied: implied < 0,
			}

			if opts.Repair {
				if err := repairLot(db, lot, implied, sums[lot.LotID]); err != nil {
					log.Printf("audit: lot %d: repair failed: %v", lot.LotID, err)
					report.Errors++
				} else {
					d.Repaired = true
					report.Repaired++
					publishRemaining(lot.LotID, implied)
				}
			}
			report.Discrepancies = append(report.Discrepancies, d)
		}
		return nil
	})
	if res.Error != nil {
		return nil, fmt.Errorf("audit: scan: %w", res.Error)
	}

	report.FinishedAt = time.Now()
	log.Printf("audit: %d lots scanned, %d anomalies found, %d repaired, %d errors skipped",
		report.Scanned, len(report.Discrepancies), report.Repaired, report.Errors)
	return report, nil
}

// repairLot overwrites a drifted lot with the ledger-implied quantities and
// logs the correction. Repairs are never silent.
func repairLot(db *gorm.DB, lot *inventoryEntity.MaterialLot, implied, netUsed int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&inventoryEntity.MaterialLot{}).
			Where("lot_id = ? AND remaining_quantity = ?", lot.LotID, lot.RemainingQuantity).
			Updates(map[string]interface{}{
				"used_quantity":      netUsed,
				"remaining_quantity": implied,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lot changed under the scan; leave it for the next run.
			return fmt.Errorf("lot %d changed concurrently", lot.LotID)
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"old_used": lot.UsedQuantity,
			"new_used": netUsed,
		})
		lotID := lot.LotID
		correction := inventoryEntity.LotCorrection{
			LotID:        &lotID,
			Action:       inventoryEntity.CorrectionRepair,
			OldRemaining: lot.RemainingQuantity,
			NewRemaining: implied,
			Delta:        implied - lot.RemainingQuantity,
			Detail:       datatypes.JSON(detail),
		}
		return tx.Create(&correction).Error
	})
}
