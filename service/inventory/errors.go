package inventory

import "fmt"

// InvalidMaterialTypeError rejects lot derivation for an unrecognized
// material type. No partial state is created.
type InvalidMaterialTypeError struct {
	PurchaseID uint
	Type       string
}

func (e *InvalidMaterialTypeError) Error() string {
	return fmt.Sprintf("purchase %d: invalid material type %q", e.PurchaseID, e.Type)
}

// InsufficientStockError rejects a consumption that would drive a lot's
// remaining quantity negative. Carries enough detail for an operator to
// decide on a backfill override.
type InsufficientStockError struct {
	LotID     uint
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("lot %d: insufficient stock, requested %d, available %d", e.LotID, e.Requested, e.Available)
}

// OverReturnError rejects a reversal that exceeds what was actually consumed
// (net of prior returns) for a lot-SKU pair.
type OverReturnError struct {
	LotID      uint
	SkuID      uint
	Requested  int64
	Returnable int64
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("lot %d sku %d: over-return, requested %d, returnable %d", e.LotID, e.SkuID, e.Requested, e.Returnable)
}
