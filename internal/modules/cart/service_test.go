// README: Cart service tests (single-merchant invariant, quantity floor, clear).
package cart

import (
	"context"
	"testing"

	"pronto/internal/types"
)

const session = types.ID("s1")

func newTestService() *Service {
	return NewService(NewMemoryStore())
}

func item(id, merchant types.ID, price int64) Item {
	return Item{ID: id, Name: string(id), UnitPrice: price, MerchantID: merchant}
}

// checkInvariant asserts the cart-wide invariant after every mutation:
// empty ⇔ no owning merchant, and all items share one merchant.
func checkInvariant(t *testing.T, c *Cart) {
	t.Helper()
	if c.Empty() != (c.MerchantID == "") {
		t.Fatalf("invariant broken: %d items, merchant %q", len(c.Items), c.MerchantID)
	}
	for _, it := range c.Items {
		if it.MerchantID != c.MerchantID {
			t.Fatalf("item %s belongs to %q, cart owned by %q", it.ID, it.MerchantID, c.MerchantID)
		}
	}
}

func TestAddItem_EmptyCartAdoptsMerchant(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddItem(ctx, session, item("kottu", "m1", 950))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	checkInvariant(t, c)
	if c.MerchantID != "m1" || len(c.Items) != 1 || c.Items[0].Quantity != 1 {
		t.Errorf("unexpected cart: %+v", c)
	}
}

func TestAddItem_SameItemIncrements(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	c, err := svc.AddItem(ctx, session, item("kottu", "m1", 950))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	checkInvariant(t, c)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Errorf("expected single line with quantity 2, got %+v", c.Items)
	}
}

func TestAddItem_MerchantConflictLeavesCartUntouched(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	_, err := svc.AddItem(ctx, session, item("pizza", "m2", 1800))
	if err != ErrMerchantConflict {
		t.Fatalf("expected ErrMerchantConflict, got %v", err)
	}

	c, _ := svc.Get(ctx, session)
	checkInvariant(t, c)
	if c.MerchantID != "m1" || len(c.Items) != 1 || c.Items[0].ID != "kottu" {
		t.Errorf("cart mutated on conflict: %+v", c)
	}
}

func TestConfirmReplace_StartsFreshCart(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	svc.AddItem(ctx, session, item("rice", "m1", 700))

	c, err := svc.ConfirmReplace(ctx, session, item("pizza", "m2", 1800))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	checkInvariant(t, c)
	if c.MerchantID != "m2" || len(c.Items) != 1 || c.Items[0].ID != "pizza" || c.Items[0].Quantity != 1 {
		t.Errorf("unexpected cart after replace: %+v", c)
	}
}

func TestUpdateQuantity_SetsExactly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	c, err := svc.UpdateQuantity(ctx, session, "kottu", 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	checkInvariant(t, c)
	if c.Items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", c.Items[0].Quantity)
	}
	if c.Subtotal() != 3800 {
		t.Errorf("subtotal = %d, want 3800", c.Subtotal())
	}
}

func TestUpdateQuantity_FloorRemovesItem(t *testing.T) {
	for _, q := range []int{0, -1} {
		svc := newTestService()
		ctx := context.Background()

		svc.AddItem(ctx, session, item("kottu", "m1", 950))
		c, err := svc.UpdateQuantity(ctx, session, "kottu", q)
		if err != nil {
			t.Fatalf("update(%d): %v", q, err)
		}
		checkInvariant(t, c)
		if !c.Empty() {
			t.Errorf("update(%d): item still present", q)
		}
	}
}

func TestRemoveLastItem_ClearsMerchant(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	c, err := svc.RemoveItem(ctx, session, "kottu")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	checkInvariant(t, c)

	// A different merchant may now add without conflict.
	c, err = svc.AddItem(ctx, session, item("pizza", "m2", 1800))
	if err != nil {
		t.Fatalf("add after empty: %v", err)
	}
	checkInvariant(t, c)
	if c.MerchantID != "m2" {
		t.Errorf("merchant = %q, want m2", c.MerchantID)
	}
}

func TestRemoveItem_Missing(t *testing.T) {
	svc := newTestService()
	if _, err := svc.RemoveItem(context.Background(), session, "ghost"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClear_Idempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.AddItem(ctx, session, item("kottu", "m1", 950))
	c1, err := svc.Clear(ctx, session)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	c2, err := svc.Clear(ctx, session)
	if err != nil {
		t.Fatalf("second clear: %v", err)
	}
	checkInvariant(t, c1)
	checkInvariant(t, c2)
	if !c2.Empty() || c2.MerchantID != "" {
		t.Errorf("cart not empty after double clear: %+v", c2)
	}
}

func TestInvariant_OperationSequence(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	steps := []func() (*Cart, error){
		func() (*Cart, error) { return svc.AddItem(ctx, session, item("a", "m1", 100)) },
		func() (*Cart, error) { return svc.AddItem(ctx, session, item("b", "m1", 200)) },
		func() (*Cart, error) { return svc.UpdateQuantity(ctx, session, "a", 3) },
		func() (*Cart, error) { return svc.RemoveItem(ctx, session, "b") },
		func() (*Cart, error) { return svc.ConfirmReplace(ctx, session, item("x", "m2", 500)) },
		func() (*Cart, error) { return svc.UpdateQuantity(ctx, session, "x", 0) },
		func() (*Cart, error) { return svc.AddItem(ctx, session, item("y", "m3", 50)) },
		func() (*Cart, error) { return svc.Clear(ctx, session) },
	}
	for i, step := range steps {
		c, err := step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkInvariant(t, c)
	}
}
