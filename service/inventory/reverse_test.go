package inventory_test

import (
	"errors"
	"sync"
	"testing"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
	inventoryService "jewelstock.GO/service/inventory"
)

func TestDestroy_ReturnToStock(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-101")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 1,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	res, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         1,
		ReturnToStock: true,
	})
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Quantity != -5 {
		t.Errorf("entry Quantity = %d, want -5", e.Quantity)
	}
	if !e.IsReversal() {
		t.Error("IsReversal = false")
	}
	if e.TotalCost == nil || e.TotalCost.String() != "-625" {
		t.Errorf("entry TotalCost = %v, want -625", e.TotalCost)
	}

	got := lotByID(t, db, lot.LotID)
	if got.UsedQuantity != 0 || got.RemainingQuantity != 48 {
		t.Errorf("lot after return = used %d remaining %d, want 0/48", got.UsedQuantity, got.RemainingQuantity)
	}

	s := skuByID(t, db, sku.SkuID)
	if s.Available != 0 {
		t.Errorf("sku Available = %d, want 0", s.Available)
	}
	if s.TotalProduced != 1 {
		t.Errorf("sku TotalProduced = %d, want 1 (cumulative)", s.TotalProduced)
	}
	if s.MaterialCost.String() != "0" {
		t.Errorf("sku MaterialCost = %s, want 0", s.MaterialCost)
	}
}

func TestDestroy_OverReturn(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-102")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 1,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	_, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         1,
		ReturnToStock: true,
		Manual:        []inventoryService.ReturnItem{{LotID: lot.LotID, Quantity: 8}},
	})
	var over *inventoryService.OverReturnError
	if !errors.As(err, &over) {
		t.Fatalf("err = %v, want OverReturnError", err)
	}
	if over.Requested != 8 || over.Returnable != 5 {
		t.Errorf("error = requested %d returnable %d, want 8/5", over.Requested, over.Returnable)
	}

	// Nothing moved
	got := lotByID(t, db, lot.LotID)
	if got.RemainingQuantity != 43 {
		t.Errorf("remaining = %d, want 43", got.RemainingQuantity)
	}
	var count int64
	db.Table("usage_entry").Where("lot_id = ? AND quantity < 0", lot.LotID).Count(&count)
	if count != 0 {
		t.Errorf("reversal rows = %d, want 0", count)
	}
}

func TestDestroy_RepeatedReturnsBounded(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-103")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 2,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 10}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	// First return credits 5 beads; returnable drops to 5
	if _, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         1,
		ReturnToStock: true,
		Manual:        []inventoryService.ReturnItem{{LotID: lot.LotID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("first destroy: %v", err)
	}

	// Second return asking 6 exceeds the net consumed 5
	_, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         1,
		ReturnToStock: true,
		Manual:        []inventoryService.ReturnItem{{LotID: lot.LotID, Quantity: 6}},
	})
	var over *inventoryService.OverReturnError
	if !errors.As(err, &over) {
		t.Fatalf("err = %v, want OverReturnError", err)
	}
	if over.Returnable != 5 {
		t.Errorf("Returnable = %d, want 5 (net of prior return)", over.Returnable)
	}
}

func TestDestroy_ProportionalReturnFromRecipe(t *testing.T) {
	db := newTestDB(t)
	lotA := seedLot(t, db, 100, "1000")
	lotB := seedLot(t, db, 60, "1200")
	sku := seedSKU(t, db, "BR-104")

	// 4 units from 20 of A and 8 of B: per-unit recipe 5 and 2
	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 4,
		Items: []inventoryService.ConsumeItem{
			{LotID: lotA.LotID, Quantity: 20},
			{LotID: lotB.LotID, Quantity: 8},
		},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	res, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         2,
		ReturnToStock: true,
	})
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}

	if got := lotByID(t, db, lotA.LotID); got.RemainingQuantity != 90 {
		t.Errorf("lot A remaining = %d, want 90 (80 + 2x5)", got.RemainingQuantity)
	}
	if got := lotByID(t, db, lotB.LotID); got.RemainingQuantity != 56 {
		t.Errorf("lot B remaining = %d, want 56 (52 + 2x2)", got.RemainingQuantity)
	}
}

func TestDestroy_ScrapLeavesLedgerUntouched(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-105")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 1,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	res, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:  sku.SkuID,
		Units:  1,
		Reason: "broken clasp",
	})
	if err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !res.Scrapped {
		t.Error("Scrapped = false, want true")
	}

	// Ledger and lot unchanged: the materials are gone, not returned
	got := lotByID(t, db, lot.LotID)
	if got.UsedQuantity != 5 || got.RemainingQuantity != 43 {
		t.Errorf("lot = used %d remaining %d, want 5/43 unchanged", got.UsedQuantity, got.RemainingQuantity)
	}
	var entryCount int64
	db.Table("usage_entry").Count(&entryCount)
	if entryCount != 1 {
		t.Errorf("ledger rows = %d, want 1", entryCount)
	}

	s := skuByID(t, db, sku.SkuID)
	if s.Available != 0 {
		t.Errorf("sku Available = %d, want 0", s.Available)
	}

	// The scrap is traceable through the correction log
	var corrections []inventoryEntity.LotCorrection
	db.Where("action = ?", inventoryEntity.CorrectionScrap).Find(&corrections)
	if len(corrections) != 1 {
		t.Fatalf("scrap corrections = %d, want 1", len(corrections))
	}
	if corrections[0].SkuID == nil || *corrections[0].SkuID != sku.SkuID {
		t.Errorf("correction SkuID = %v, want %d", corrections[0].SkuID, sku.SkuID)
	}
}

func TestDestroy_MoreThanAvailable(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-106")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 2,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 10}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	if _, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
		SkuID:         sku.SkuID,
		Units:         3,
		ReturnToStock: true,
	}); err == nil {
		t.Fatal("destroying more units than available must fail")
	}
}

func TestDestroy_FractionalRecipeFloorsReturns(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 100, "1000")
	sku := seedSKU(t, db, "BR-107")

	// 5 beads over 2 units: per-unit 2.5
	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 2,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 5}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	// Destroying the batch one unit at a time must not front-load the
	// credits: floor(2.5) = 2 each time, both within the consumed 5.
	for i := 0; i < 2; i++ {
		res, err := inventoryService.Destroy(db, inventoryService.DestroyInput{
			SkuID:         sku.SkuID,
			Units:         1,
			ReturnToStock: true,
		})
		if err != nil {
			t.Fatalf("Destroy #%d: %v", i+1, err)
		}
		if len(res.Entries) != 1 || res.Entries[0].Quantity != -2 {
			t.Fatalf("Destroy #%d entries = %+v, want one entry of -2", i+1, res.Entries)
		}
	}

	got := lotByID(t, db, lot.LotID)
	if got.RemainingQuantity != 99 {
		t.Errorf("remaining = %d, want 99 (95 + 2 + 2)", got.RemainingQuantity)
	}
}

func TestDestroy_ConcurrentScrapNeverOverdraws(t *testing.T) {
	db := newTestDB(t)
	lot := seedLot(t, db, 48, "6000")
	sku := seedSKU(t, db, "BR-108")

	if _, err := inventoryService.Consume(db, inventoryService.ConsumeInput{
		SkuID:         sku.SkuID,
		BatchProduced: 2,
		Items:         []inventoryService.ConsumeItem{{LotID: lot.LotID, Quantity: 10}},
	}); err != nil {
		t.Fatalf("setup consume: %v", err)
	}

	// Several destroys race for 2 available units. The SKU row lock
	// makes the availability check and decrement atomic.
	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = inventoryService.Destroy(db, inventoryService.DestroyInput{
				SkuID: sku.SkuID,
				Units: 1,
			})
		}(i)
	}
	wg.Wait()

	succeeded := int64(0)
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded > 2 {
		t.Errorf("succeeded = %d, want <= 2", succeeded)
	}

	s := skuByID(t, db, sku.SkuID)
	if s.Available < 0 {
		t.Errorf("available = %d, overdrawn", s.Available)
	}
	if s.Available != 2-succeeded {
		t.Errorf("available = %d, want %d", s.Available, 2-succeeded)
	}
}
