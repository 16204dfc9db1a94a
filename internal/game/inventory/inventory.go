package inventory

const (
	// BaseCapacity is the carrying limit, in weight units, at a strength
	// modifier of zero.
	BaseCapacity = 100.0
	// CapacityPerModifier is added per point of strength modifier.
	CapacityPerModifier = 10.0
)

// CapacityFor returns the carrying limit for a strength modifier. It never
// drops below zero.
func CapacityFor(strengthMod int) float64 {
	return max(BaseCapacity+CapacityPerModifier*float64(strengthMod), 0)
}

// Inventory is an ordered list of item stacks. Its zero value is empty and
// ready to use; it serializes as a plain JSON array.
type Inventory []Item

// Add places item into the inventory. A stack with the same ID and Name
// absorbs the quantity; otherwise a new stack is appended. A quantity below
// 1 is treated as 1.
//
// Postcondition: Weight() grows by item.TotalWeight().
func (inv *Inventory) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range *inv {
		if (*inv)[i].ID == item.ID && (*inv)[i].Name == item.Name {
			(*inv)[i].Quantity += item.Quantity
			return
		}
	}
	*inv = append(*inv, item)
}

// Remove takes quantity units from the first stack with the given ID. The
// stack is deleted when quantity covers it. Returns false when no stack has
// that ID.
func (inv *Inventory) Remove(id string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	for i := range *inv {
		if (*inv)[i].ID != id {
			continue
		}
		if (*inv)[i].Quantity > quantity {
			(*inv)[i].Quantity -= quantity
		} else {
			inv.removeAt(i)
		}
		return true
	}
	return false
}

// Use consumes one unit of the stack at index when it is a consumable and
// returns the stack as it was before use. Other types are returned unchanged.
func (inv *Inventory) Use(index int) (Item, bool) {
	if index < 0 || index >= len(*inv) {
		return Item{}, false
	}
	used := (*inv)[index]
	if used.Type == TypeConsumable {
		if used.Quantity > 1 {
			(*inv)[index].Quantity--
		} else {
			inv.removeAt(index)
		}
	}
	return used, true
}

// Drop removes the whole stack at index and returns it.
func (inv *Inventory) Drop(index int) (Item, bool) {
	if index < 0 || index >= len(*inv) {
		return Item{}, false
	}
	dropped := (*inv)[index]
	inv.removeAt(index)
	return dropped, true
}

// Clear removes every stack.
func (inv *Inventory) Clear() { *inv = (*inv)[:0] }

// Get returns the first stack with the given ID.
func (inv Inventory) Get(id string) (Item, bool) {
	for _, it := range inv {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Has reports whether a stack with the given ID exists.
func (inv Inventory) Has(id string) bool {
	_, ok := inv.Get(id)
	return ok
}

// ByType returns copies of the stacks of type t, in inventory order.
func (inv Inventory) ByType(t Type) []Item {
	var out []Item
	for _, it := range inv {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// Weight returns the sum of every stack's TotalWeight.
func (inv Inventory) Weight() float64 {
	var total float64
	for _, it := range inv {
		total += it.TotalWeight()
	}
	return total
}

// OverCapacity reports whether Weight exceeds capacity.
func (inv Inventory) OverCapacity(capacity float64) bool { return inv.Weight() > capacity }

// EnsureItems appends a copy of every item whose ID is not already present.
// Existing stacks are left untouched.
func (inv *Inventory) EnsureItems(items []Item) {
	for _, it := range items {
		if !inv.Has(it.ID) {
			*inv = append(*inv, it)
		}
	}
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	return append(Inventory(nil), inv...)
}

func (inv *Inventory) removeAt(i int) {
	*inv = append((*inv)[:i], (*inv)[i+1:]...)
}
