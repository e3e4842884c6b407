package domain

import (
	"fmt"
	"math/rand/v2"
)

// SlotSet is a fixed number of ordered display slots.
type SlotSet struct {
	slots []Slot
	rng   *rand.Rand
}

// NewSlotSet creates n empty slots drawing from rng. A nil rng uses the
// global source.
func NewSlotSet(n int, rng *rand.Rand) *SlotSet {
	return &SlotSet{
		slots: make([]Slot, n),
		rng:   rng,
	}
}

// Len returns the number of slots.
func (s *SlotSet) Len() int {
	return len(s.slots)
}

// SetAll overwrites every slot, in order. len(ids) must equal Len().
func (s *SlotSet) SetAll(ids []CandidateID) error {
	if len(ids) != len(s.slots) {
		return fmt.Errorf("%w: got %d ids for %d slots", ErrSlotCount, len(ids), len(s.slots))
	}
	for i, id := range ids {
		s.slots[i] = Slot{ID: id, Occupied: true}
	}
	return nil
}

// ReplaceRandomOccupied puts newID into a uniformly random occupied slot and
// returns the identifier it evicted. ok is false when no slot is occupied.
func (s *SlotSet) ReplaceRandomOccupied(newID CandidateID) (evicted CandidateID, ok bool) {
	idx := make([]int, 0, len(s.slots))
	for i, slot := range s.slots {
		if slot.Occupied {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return "", false
	}

	var n int
	if s.rng == nil {
		n = rand.IntN(len(idx))
	} else {
		n = s.rng.IntN(len(idx))
	}
	i := idx[n]
	evicted = s.slots[i].ID
	s.slots[i] = Slot{ID: newID, Occupied: true}
	return evicted, true
}

// Occupied returns the identifiers of occupied slots in slot order.
func (s *SlotSet) Occupied() []CandidateID {
	out := make([]CandidateID, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot.Occupied {
			out = append(out, slot.ID)
		}
	}
	return out
}

// Snapshot returns a copy of the slots for rendering.
func (s *SlotSet) Snapshot() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Clear empties every slot.
func (s *SlotSet) Clear() {
	clear(s.slots)
}
