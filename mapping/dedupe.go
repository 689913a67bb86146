package mapping

import "github.com/cespare/xxhash/v2"

// HashDedupeBag is a fixed-size dedupe set. Keys are spread over 2^bits
// slots by their xxhash; a slot remembers only the last key stored in it,
// so a collision makes the bag forget, never report a false duplicate.
type HashDedupeBag struct {
	mask  uint64
	slots map[uint64]string
}

// NewHashDedupeBag creates a bag with 2^bits slots. bits is clamped to
// [1, 24].
func NewHashDedupeBag(bits uint) *HashDedupeBag {
	bits = min(max(bits, 1), 24)
	return &HashDedupeBag{
		mask:  1<<bits - 1,
		slots: make(map[uint64]string),
	}
}

// AlreadySeen records hash within namespace and reports whether it was
// recorded before.
func (b *HashDedupeBag) AlreadySeen(hash, namespace string) bool {
	key := namespace + ":" + hash
	slot := xxhash.Sum64String(key) & b.mask
	if b.slots[slot] == key {
		return true
	}
	b.slots[slot] = key
	return false
}

// Len returns the number of occupied slots.
func (b *HashDedupeBag) Len() int {
	return len(b.slots)
}
