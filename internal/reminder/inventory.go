package reminder

import "context"

const DefaultRestockUnits = 30

// IsLow reports whether stock sits at or below the alert threshold.
func IsLow(m Medicine) bool {
	return m.Inventory.Current <= m.Inventory.Threshold
}

func clampStock(n int) int {
	return max(0, n)
}

// UpdateInventory sets the stock to current, floored at zero.
func (s *Store) UpdateInventory(ctx context.Context, id string, current int) (Medicine, bool, error) {
	return s.modifyMedicine(ctx, id, func(m *Medicine) {
		m.Inventory.Current = clampStock(current)
	})
}

// Consume subtracts one dose worth of units.
func (s *Store) Consume(ctx context.Context, id string) (Medicine, bool, error) {
	return s.modifyMedicine(ctx, id, consume)
}

// MarkAsTaken records today's intake and consumes one dose. Marking a
// medicine that is already taken changes nothing.
func (s *Store) MarkAsTaken(ctx context.Context, id string) (Medicine, bool, error) {
	return s.modifyMedicine(ctx, id, func(m *Medicine) {
		if m.Taken {
			return
		}
		m.Taken = true
		consume(m)
	})
}

// Restock adds units to the stock. units <= 0 uses the store's default.
func (s *Store) Restock(ctx context.Context, id string, units int) (Medicine, bool, error) {
	if units <= 0 {
		units = s.restockUnits
	}
	return s.modifyMedicine(ctx, id, func(m *Medicine) {
		m.Inventory.Current = clampStock(m.Inventory.Current + units)
	})
}

func consume(m *Medicine) {
	m.Inventory.Current = clampStock(m.Inventory.Current - m.Amount)
}
