package domain

import (
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
)

// dedupFPRate is the bloom false positive rate used by Unique. A false
// positive only costs a linear confirmation scan, never a dropped candidate.
const dedupFPRate = 0.01

// Unique returns ids without duplicates, keeping the first occurrence of
// each and preserving order. Empty identifiers are dropped.
//
// A bloom filter sized for the input answers "definitely new" for most
// candidates; only when it answers "maybe seen" is the output scanned to
// confirm, so the result is exact.
func Unique(ids []CandidateID) []CandidateID {
	out := make([]CandidateID, 0, len(ids))
	if len(ids) == 0 {
		return out
	}

	filter := bloom.NewWithEstimates(uint(len(ids)), dedupFPRate)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if filter.TestAndAddString(string(id)) && slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
