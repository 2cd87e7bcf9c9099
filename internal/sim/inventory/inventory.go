package inventory

import (
	"errors"
	"fmt"
	"sort"
)

type ItemKind string

const (
	None  ItemKind = ""
	Bow   ItemKind = "BOW"
	Arrow ItemKind = "ARROW"
	Stick ItemKind = "STICK"
)

// PlayerSlots matches the vanilla player inventory window.
const PlayerSlots = 46

var ErrSlotOutOfRange = errors.New("inventory slot out of range")

// Metadata is opaque per-stack data (enchantments, custom names). It is
// copied whenever a stack is rebuilt and never mutated in place.
type Metadata map[string]string

func (m Metadata) Clone() Metadata {
	if len(m) == 0 {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ItemStack is an immutable value. A zero count is always Empty.
type ItemStack struct {
	Kind  ItemKind `json:"kind"`
	Count int      `json:"count"`
	Meta  Metadata `json:"meta,omitempty"`
}

var Empty = ItemStack{}

func NewStack(kind ItemKind, count int, meta Metadata) ItemStack {
	if kind == None || count <= 0 {
		return Empty
	}
	return ItemStack{Kind: kind, Count: count, Meta: meta.Clone()}
}

func (s ItemStack) IsEmpty() bool { return s.Kind == None || s.Count <= 0 }

// WithCount returns a copy carrying the same kind and metadata.
func (s ItemStack) WithCount(n int) ItemStack { return NewStack(s.Kind, n, s.Meta) }

// Inventory is an ordered set of slots; each slot holds at most one stack.
type Inventory struct {
	slots []ItemStack
}

func New(size int) *Inventory {
	if size < 0 {
		size = 0
	}
	return &Inventory{slots: make([]ItemStack, size)}
}

// NewPlayer builds a player inventory seeded with starter items, filled
// from slot 0 in sorted kind order so the layout is deterministic.
func NewPlayer(starter map[ItemKind]int) *Inventory {
	inv := New(PlayerSlots)
	kinds := make([]string, 0, len(starter))
	for k := range starter {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	slot := 0
	for _, k := range kinds {
		n := starter[ItemKind(k)]
		if n <= 0 || slot >= len(inv.slots) {
			continue
		}
		inv.slots[slot] = NewStack(ItemKind(k), n, nil)
		slot++
	}
	return inv
}

func (inv *Inventory) Len() int { return len(inv.slots) }

func (inv *Inventory) Slot(i int) (ItemStack, error) {
	if i < 0 || i >= len(inv.slots) {
		return Empty, fmt.Errorf("get slot %d: %w", i, ErrSlotOutOfRange)
	}
	return inv.slots[i], nil
}

func (inv *Inventory) Set(i int, s ItemStack) error {
	if i < 0 || i >= len(inv.slots) {
		return fmt.Errorf("set slot %d: %w", i, ErrSlotOutOfRange)
	}
	if s.IsEmpty() {
		s = Empty
	}
	inv.slots[i] = s
	return nil
}

// Slots returns a copy of every slot in order.
func (inv *Inventory) Slots() []ItemStack {
	out := make([]ItemStack, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// CountOf sums the counts of every stack of kind.
func (inv *Inventory) CountOf(kind ItemKind) int {
	n := 0
	for _, s := range inv.slots {
		if s.Kind == kind {
			n += s.Count
		}
	}
	return n
}

// Consumption describes one successful ConsumeOne call.
type Consumption struct {
	Slot int
	Kind ItemKind
	From int
	To   int
}

// ConsumeOne takes one item of kind from the first slot that has any.
// ok is false when nothing qualified; the inventory is untouched then.
func (inv *Inventory) ConsumeOne(kind ItemKind) (c Consumption, ok bool, err error) {
	for i, s := range inv.slots {
		if s.Kind != kind || s.Count < 1 {
			continue
		}
		next := s.Count - 1
		if next == 0 {
			err = inv.Set(i, Empty)
		} else {
			err = inv.Set(i, s.WithCount(next))
		}
		if err != nil {
			return Consumption{}, false, err
		}
		return Consumption{Slot: i, Kind: kind, From: s.Count, To: next}, true, nil
	}
	return Consumption{}, false, nil
}

// Clone deep-copies the inventory.
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{slots: make([]ItemStack, len(inv.slots))}
	for i, s := range inv.slots {
		out.slots[i] = s.WithCount(s.Count)
	}
	return out
}

// FromSlots rebuilds an inventory from a slot list (snapshot import).
func FromSlots(slots []ItemStack) *Inventory {
	inv := New(len(slots))
	for i, s := range slots {
		_ = inv.Set(i, NewStack(s.Kind, s.Count, s.Meta))
	}
	return inv
}
