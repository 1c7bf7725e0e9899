package inventory

import (
	"time"

	"gorm.io/datatypes"
)

// CorrectionAction classifies a lot_correction row.
type CorrectionAction string

const (
	// CorrectionRepair records an auditor repair of a drifted lot.
	CorrectionRepair CorrectionAction = "REPAIR"
	// CorrectionScrap records a destroy without return-to-stock.
	// No ledger entry exists for scrap; this row is the only trace.
	CorrectionScrap CorrectionAction = "DESTROY_SCRAP"
)

// LotCorrection is the audit trail for every non-ledger mutation:
// auditor repairs and scrap-only destroys. Repairs are never silent.
type LotCorrection struct {
	CorrectionID uint             `gorm:"column:correction_id;primaryKey;autoIncrement" json:"correction_id"`
	LotID        *uint            `gorm:"column:lot_id;index" json:"lot_id,omitempty"`
	SkuID        *uint            `gorm:"column:sku_id;index" json:"sku_id,omitempty"`
	Action       CorrectionAction `gorm:"column:action;type:varchar(32);not null" json:"action"`
	OldRemaining int64            `gorm:"column:old_remaining;not null;default:0" json:"old_remaining"`
	NewRemaining int64            `gorm:"column:new_remaining;not null;default:0" json:"new_remaining"`
	Delta        int64            `gorm:"column:delta;not null;default:0" json:"delta"`
	Detail       datatypes.JSON   `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LotCorrection) TableName() string {
	return "lot_correction"
}
