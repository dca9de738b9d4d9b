package domain

import (
	"errors"
	"reflect"
	"testing"
)

func populated(t *testing.T) *Cart {
	t.Helper()
	cart, err := Cart{ID: "c1"}.AddItem(lineItem("v1", 2, 4999, "USD"))
	if err != nil {
		t.Fatalf("build cart: %v", err)
	}
	cart, err = cart.AddItem(lineItem("v2", 1, 1999, "USD"))
	if err != nil {
		t.Fatalf("build cart: %v", err)
	}
	return &cart
}

func TestReduceAddItemOnEmptySeedsCart(t *testing.T) {
	item := lineItem("v1", 1, 4999, "EUR")
	next, err := Reduce(nil, Action{Type: ActionAddItem, Item: &item})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next == nil || next.Currency != "EUR" || len(next.LineItems) != 1 {
		t.Fatalf("unexpected next state %+v", next)
	}
}

func TestReduceEmptyStateIgnoresNonAddActions(t *testing.T) {
	for _, typ := range []ActionType{ActionIncrease, ActionDecrease, ActionRemove} {
		next, err := Reduce(nil, Action{Type: typ, VariantID: "v1"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", typ, err)
		}
		if next != nil {
			t.Fatalf("%s: expected empty state to stay empty, got %+v", typ, next)
		}
	}
}

func TestReduceAddItemMerges(t *testing.T) {
	state := populated(t)
	item := lineItem("v1", 3, 4999, "USD")
	next, err := Reduce(state, Action{Type: ActionAddItem, Item: &item})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(next.LineItems) != 2 || next.LineItems[0].Quantity != 5 {
		t.Fatalf("unexpected next state %+v", next)
	}
}

func TestReduceAddItemCurrencyMismatchLeavesStateUntouched(t *testing.T) {
	state := populated(t)
	before := *state
	item := lineItem("v9", 1, 100, "EUR")
	next, err := Reduce(state, Action{Type: ActionAddItem, Item: &item})
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if next != state || !reflect.DeepEqual(*state, before) {
		t.Fatalf("state changed on rejected action")
	}
}

func TestReduceIncreaseDecrease(t *testing.T) {
	state := populated(t)
	next, err := Reduce(state, Action{Type: ActionIncrease, VariantID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.LineItems[0].Quantity != 3 {
		t.Fatalf("expected 3, got %d", next.LineItems[0].Quantity)
	}

	next, err = Reduce(next, Action{Type: ActionDecrease, VariantID: "v2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(next.LineItems) != 1 {
		t.Fatalf("expected v2 removed at zero, got %+v", next.LineItems)
	}

	// Unknown variant ids are no-ops.
	same, err := Reduce(next, Action{Type: ActionIncrease, VariantID: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(same, next) {
		t.Fatalf("no-op action changed state")
	}
}

func TestReduceRemoveEmptiesCart(t *testing.T) {
	state := populated(t)
	next, _ := Reduce(state, Action{Type: ActionRemove, VariantID: "v1"})
	next, _ = Reduce(next, Action{Type: ActionRemove, VariantID: "v2"})
	if len(next.LineItems) != 0 {
		t.Fatalf("expected empty cart, got %+v", next.LineItems)
	}

	// The emptied cart behaves as Empty: a later add re-seeds currency.
	item := lineItem("v3", 1, 500, "EUR")
	reseeded, err := Reduce(next, Action{Type: ActionAddItem, Item: &item})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reseeded.Currency != "EUR" {
		t.Fatalf("expected re-seeded currency EUR, got %q", reseeded.Currency)
	}
}

func TestReduceSyncReplacesWholesale(t *testing.T) {
	state := populated(t)

	// SYNC(nil) on any populated state yields empty.
	next, err := Reduce(state, Action{Type: ActionSync})
	if err != nil || next != nil {
		t.Fatalf("expected nil state, got %+v (%v)", next, err)
	}

	// SYNC(cartX) yields exactly cartX regardless of prior state.
	authoritative, _ := Cart{ID: "server"}.AddItem(lineItem("v9", 4, 100, "USD"))
	next, err = Reduce(state, Action{Type: ActionSync, Cart: &authoritative})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(*next, authoritative) {
		t.Fatalf("expected authoritative cart, got %+v", next)
	}

	next, err = Reduce(nil, Action{Type: ActionSync, Cart: &authoritative})
	if err != nil || !reflect.DeepEqual(*next, authoritative) {
		t.Fatalf("expected authoritative cart from empty state, got %+v (%v)", next, err)
	}
}

func TestReduceIsPure(t *testing.T) {
	state := populated(t)
	snapshot := *state
	item := lineItem("v1", 1, 4999, "USD")
	actions := []Action{
		{Type: ActionAddItem, Item: &item},
		{Type: ActionIncrease, VariantID: "v1"},
		{Type: ActionDecrease, VariantID: "v1"},
		{Type: ActionRemove, VariantID: "v2"},
	}
	for _, action := range actions {
		first, err1 := Reduce(state, action)
		second, err2 := Reduce(state, action)
		if (err1 == nil) != (err2 == nil) || !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: not deterministic", action.Type)
		}
		if !reflect.DeepEqual(*state, snapshot) {
			t.Fatalf("%s: input state mutated", action.Type)
		}
	}
}

func TestReduceDuplicateAddsAccumulate(t *testing.T) {
	var state *Cart
	for i := 0; i < 4; i++ {
		item := lineItem("v1", 2, 100, "USD")
		next, err := Reduce(state, Action{Type: ActionAddItem, Item: &item})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		state = next
	}
	if len(state.LineItems) != 1 || state.LineItems[0].Quantity != 8 {
		t.Fatalf("expected single line with quantity 8, got %+v", state.LineItems)
	}
}
