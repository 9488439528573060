package hashgrid

// bucket is the contiguous slot store backing one cell: append-only order
// with O(1) swap removal. Removing a slot moves the current last slot into
// the vacancy, and swapRemove reports the record that moved so the owner can
// re-index whatever bookkeeping referred to its old position. That report is
// the load-bearing part of the contract; both spatial maps depend on it to
// keep handles valid across removals.
type bucket[S any] struct {
	slots []S
}

func (b *bucket[S]) add(s S) int32 {
	b.slots = append(b.slots, s)
	return int32(len(b.slots) - 1)
}

// swapRemove deletes the slot at i. When a different slot moved into the
// vacancy it returns that slot's record and true. The vacated tail slot is
// zeroed so removed values do not pin garbage.
func (b *bucket[S]) swapRemove(i int32) (moved S, ok bool) {
	last := int32(len(b.slots) - 1)
	if i != last {
		b.slots[i] = b.slots[last]
		moved = b.slots[i]
		ok = true
	}
	var zero S
	b.slots[last] = zero
	b.slots = b.slots[:last]
	return moved, ok
}

// reset empties the bucket, keeping its backing array.
func (b *bucket[S]) reset() {
	clear(b.slots)
	b.slots = b.slots[:0]
}
