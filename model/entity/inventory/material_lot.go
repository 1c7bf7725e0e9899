package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialLot is the inventory-tracking projection of one PurchaseRecord.
// remaining_quantity is reconciler-owned: it only changes inside the
// consumption/reversal/auditor transactions and must equal
// original_quantity - used_quantity after every pass.
type MaterialLot struct {
	LotID             uint             `gorm:"column:lot_id;primaryKey;autoIncrement" json:"lot_id"`
	PurchaseID        uint             `gorm:"column:purchase_id;not null;uniqueIndex:idx_lot_purchase" json:"purchase_id"`
	OriginalQuantity  int64            `gorm:"column:original_quantity;not null" json:"original_quantity"`
	UsedQuantity      int64            `gorm:"column:used_quantity;not null;default:0" json:"used_quantity"`
	RemainingQuantity int64            `gorm:"column:remaining_quantity;not null;default:0" json:"remaining_quantity"`
	UnitCost          *decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4)" json:"unit_cost"`
	TotalCost         *decimal.Decimal `gorm:"column:total_cost;type:decimal(12,2)" json:"total_cost"`
	NeedsReview       bool             `gorm:"column:needs_review;not null;default:false" json:"needs_review"`
	ReviewReason      string           `gorm:"column:review_reason;type:varchar(255)" json:"review_reason,omitempty"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MaterialLot) TableName() string {
	return "material_lot"
}
