package domain

// ActionType enumerates the cart state machine's actions.
type ActionType string

const (
	ActionAddItem  ActionType = "ADD_ITEM"
	ActionIncrease ActionType = "INCREASE"
	ActionDecrease ActionType = "DECREASE"
	ActionRemove   ActionType = "REMOVE"
	ActionSync     ActionType = "SYNC"
)

// Action is one cart mutation. Item is set for ADD_ITEM, VariantID for
// INCREASE/DECREASE/REMOVE, Cart for SYNC (nil meaning "no cart").
type Action struct {
	Type      ActionType
	Item      *CartLineItem
	VariantID string
	Cart      *Cart
}

// Reduce maps (state, action) to the next cart state. It is pure: the same
// inputs always produce the same next state, the given state is never
// mutated, and it performs no I/O. A nil state is the empty state.
//
// The same transitions run against an optimistic in-memory view and
// against the server-authoritative stored cart; divergence between the two
// is resolved only by SYNC replacing the whole state, never by a
// field-level merge.
func Reduce(state *Cart, action Action) (*Cart, error) {
	if action.Type == ActionSync {
		if action.Cart == nil {
			return nil, nil
		}
		next := action.Cart.clone()
		return &next, nil
	}

	if state == nil || len(state.LineItems) == 0 {
		// Only ADD_ITEM transitions out of the empty state; the new cart
		// is seeded with the item's currency.
		if action.Type == ActionAddItem && action.Item != nil {
			base := Cart{}
			if state != nil {
				base = *state
			}
			next, err := base.AddItem(*action.Item)
			if err != nil {
				return state, err
			}
			return &next, nil
		}
		return state, nil
	}

	switch action.Type {
	case ActionAddItem:
		if action.Item == nil {
			return state, nil
		}
		next, err := state.AddItem(*action.Item)
		if err != nil {
			return state, err
		}
		return &next, nil
	case ActionIncrease:
		next, err := state.Increment(action.VariantID, 1)
		if err != nil {
			return state, err
		}
		return &next, nil
	case ActionDecrease:
		next, err := state.Increment(action.VariantID, -1)
		if err != nil {
			return state, err
		}
		return &next, nil
	case ActionRemove:
		next := state.RemoveItem(action.VariantID)
		return &next, nil
	}
	return state, nil
}
