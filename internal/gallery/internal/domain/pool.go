package domain

import "math/rand/v2"

// CandidatePool is the bench of candidates that are not on screen. Members
// are unique. Removal picks uniformly at random in O(1) by swapping the
// picked member with the last one, so member order is deterministic for a
// given random source but carries no meaning.
type CandidatePool struct {
	members []CandidateID
	index   map[CandidateID]int
	rng     *rand.Rand
}

// NewCandidatePool creates an empty pool drawing from rng. A nil rng uses
// the global source.
func NewCandidatePool(rng *rand.Rand) *CandidatePool {
	return &CandidatePool{
		index: make(map[CandidateID]int),
		rng:   rng,
	}
}

// InsertBulk appends every id not already present. Duplicates inside ids are
// dropped, first occurrence wins.
func (p *CandidatePool) InsertBulk(ids []CandidateID) {
	for _, id := range ids {
		p.insert(id)
	}
}

// RemoveRandom removes and returns a uniformly random member. ok is false
// when the pool is empty.
func (p *CandidatePool) RemoveRandom() (CandidateID, bool) {
	if len(p.members) == 0 {
		return "", false
	}
	id := p.members[p.intN(len(p.members))]
	p.remove(id)
	return id, true
}

// Remove removes a specific member. It reports whether id was present.
func (p *CandidatePool) Remove(id CandidateID) bool {
	if _, ok := p.index[id]; !ok {
		return false
	}
	p.remove(id)
	return true
}

// Return gives a previously removed candidate back to the pool. It returns
// false and leaves the pool unchanged if id is already a member, which means
// the slot/pool disjointness was broken somewhere.
func (p *CandidatePool) Return(id CandidateID) bool {
	return p.insert(id)
}

// Contains reports whether id is a member.
func (p *CandidatePool) Contains(id CandidateID) bool {
	_, ok := p.index[id]
	return ok
}

// Size returns the number of members.
func (p *CandidatePool) Size() int {
	return len(p.members)
}

// Members returns a copy of the current members.
func (p *CandidatePool) Members() []CandidateID {
	out := make([]CandidateID, len(p.members))
	copy(out, p.members)
	return out
}

// Clear drops every member.
func (p *CandidatePool) Clear() {
	p.members = p.members[:0]
	clear(p.index)
}

func (p *CandidatePool) insert(id CandidateID) bool {
	if _, ok := p.index[id]; ok {
		return false
	}
	p.index[id] = len(p.members)
	p.members = append(p.members, id)
	return true
}

func (p *CandidatePool) remove(id CandidateID) {
	i := p.index[id]
	last := len(p.members) - 1
	if i != last {
		moved := p.members[last]
		p.members[i] = moved
		p.index[moved] = i
	}
	p.members = p.members[:last]
	delete(p.index, id)
}

func (p *CandidatePool) intN(n int) int {
	if p.rng == nil {
		return rand.IntN(n)
	}
	return p.rng.IntN(n)
}
