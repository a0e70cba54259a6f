package actor

import (
	"fmt"

	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/food"
)

// ItemKind discriminates Item payloads.
type ItemKind string

const (
	ItemFood      ItemKind = "food"
	ItemEquipment ItemKind = "equipment"
	ItemEncounter ItemKind = "encounter"
	ItemCoins     ItemKind = "coins"
)

// Item is a tagged union over the things an inventory slot can hold. Exactly
// the payload field matching Kind is set.
type Item struct {
	Kind      ItemKind             `json:"kind"`
	Food      food.Kind            `json:"food,omitempty"`
	Equipment *equipment.Equipment `json:"equipment,omitempty"`
	Encounter *Encounter           `json:"encounter,omitempty"`
	Coins     int                  `json:"coins,omitempty"`
}

// FoodItem wraps a food.
func FoodItem(k food.Kind) *Item { return &Item{Kind: ItemFood, Food: k} }

// EquipmentItem wraps an equipment instance.
func EquipmentItem(e *equipment.Equipment) *Item { return &Item{Kind: ItemEquipment, Equipment: e} }

// EncounterItem wraps an encounter.
func EncounterItem(e *Encounter) *Item { return &Item{Kind: ItemEncounter, Encounter: e} }

// CoinsItem wraps a coin stack.
func CoinsItem(n int) *Item { return &Item{Kind: ItemCoins, Coins: n} }

// Name returns a display name.
func (i *Item) Name() string {
	switch i.Kind {
	case ItemFood:
		return i.Food.Name()
	case ItemEquipment:
		return i.Equipment.Name()
	case ItemEncounter:
		return i.Encounter.Name()
	case ItemCoins:
		return fmt.Sprintf("%d coins", i.Coins)
	default:
		return "unknown"
	}
}

// BuyPrice returns the vendor buy price. Coins have no price.
func (i *Item) BuyPrice() int {
	switch i.Kind {
	case ItemFood:
		return i.Food.BuyPrice()
	case ItemEquipment:
		return i.Equipment.BuyPrice()
	case ItemEncounter:
		return i.Encounter.BuyPrice()
	default:
		return 0
	}
}

// SellPrice returns the vendor sell price. Coins have no price.
func (i *Item) SellPrice() int {
	switch i.Kind {
	case ItemFood:
		return i.Food.SellPrice()
	case ItemEquipment:
		return i.Equipment.SellPrice()
	case ItemEncounter:
		return i.Encounter.SellPrice()
	default:
		return 0
	}
}

// Clone returns a copy; encounter payloads are deep-copied.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.Encounter = i.Encounter.Clone()
	return &out
}

// Inventory is a fixed-size ordered set of slots. A nil entry is an open slot.
//
// Invariant: len(Slots) never changes after construction.
type Inventory struct {
	Slots []*Item `json:"slots"`
}

// NewInventory returns an empty inventory with n slots.
func NewInventory(n int) Inventory {
	return Inventory{Slots: make([]*Item, n)}
}

// Size returns the slot count.
func (inv *Inventory) Size() int { return len(inv.Slots) }

// At returns the item in slot i, or nil when i is empty or out of range.
func (inv *Inventory) At(i int) *Item {
	if i < 0 || i >= len(inv.Slots) {
		return nil
	}
	return inv.Slots[i]
}

// FirstOpen returns the index of the first empty slot.
func (inv *Inventory) FirstOpen() (int, bool) {
	for i, it := range inv.Slots {
		if it == nil {
			return i, true
		}
	}
	return -1, false
}

// CoinSlot returns the index of the coin stack.
func (inv *Inventory) CoinSlot() (int, bool) {
	for i, it := range inv.Slots {
		if it != nil && it.Kind == ItemCoins {
			return i, true
		}
	}
	return -1, false
}

// Coins returns the number of coins held.
func (inv *Inventory) Coins() int {
	if i, ok := inv.CoinSlot(); ok {
		return inv.Slots[i].Coins
	}
	return 0
}

// FirstFood returns the first slot holding food.
func (inv *Inventory) FirstFood() (int, food.Kind, bool) {
	for i, it := range inv.Slots {
		if it != nil && it.Kind == ItemFood {
			return i, it.Food, true
		}
	}
	return -1, "", false
}

// HasRoomFor reports whether Put(it) would succeed.
func (inv *Inventory) HasRoomFor(it *Item) bool {
	if it.Kind == ItemCoins {
		if _, ok := inv.CoinSlot(); ok {
			return true
		}
	}
	_, ok := inv.FirstOpen()
	return ok
}

// Put stores it in the first open slot. Coins merge into an existing coin stack.
//
// Postcondition: returns false, leaving the inventory unchanged, when there is no room.
func (inv *Inventory) Put(it *Item) bool {
	if it == nil {
		return false
	}
	if it.Kind == ItemCoins {
		if i, ok := inv.CoinSlot(); ok {
			inv.Slots[i].Coins += it.Coins
			return true
		}
	}
	i, ok := inv.FirstOpen()
	if !ok {
		return false
	}
	inv.Slots[i] = it
	return true
}

// PutAt stores it in slot i if that slot is open.
func (inv *Inventory) PutAt(i int, it *Item) bool {
	if i < 0 || i >= len(inv.Slots) || inv.Slots[i] != nil {
		return false
	}
	inv.Slots[i] = it
	return true
}

// Take removes and returns the item in slot i.
func (inv *Inventory) Take(i int) *Item {
	it := inv.At(i)
	if it != nil {
		inv.Slots[i] = nil
	}
	return it
}

// SpendCoins removes n coins from the coin stack.
//
// Postcondition: returns false, leaving the inventory unchanged, when fewer than n coins are held.
// An emptied stack frees its slot.
func (inv *Inventory) SpendCoins(n int) bool {
	i, ok := inv.CoinSlot()
	if !ok || inv.Slots[i].Coins < n {
		return false
	}
	inv.Slots[i].Coins -= n
	if inv.Slots[i].Coins == 0 {
		inv.Slots[i] = nil
	}
	return true
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := Inventory{Slots: make([]*Item, len(inv.Slots))}
	for i, it := range inv.Slots {
		out.Slots[i] = it.Clone()
	}
	return out
}
