// Package bucket implements an identifier set that keeps its first few
// members inline and overflows into a chain of further fixed-size buckets.
//
// Size should be big enough that the typical set fits in one or two buckets.
package bucket

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// ErrCorrupt marks consistency faults: erasing an absent member, storing the
// zero sentinel, or a full bucket with no successor. These indicate a bug in
// the caller and are raised as panics.
var ErrCorrupt = errors.New("bucket list corrupt")

// DefaultSize is the slot count used by callers that have no better estimate.
const DefaultSize = 16

// List is an unordered multiset of nonzero identifiers. Zero is the
// end-of-data sentinel: members occupy a contiguous prefix of each bucket and
// the first zero slot in chain order terminates the list. A bucket whose last
// slot is occupied always owns a successor.
//
// List is not safe for concurrent use.
type List[T constraints.Unsigned] struct {
	items []T
	next  *List[T]
}

// New creates an empty list whose buckets hold size slots.
func New[T constraints.Unsigned](size int) *List[T] {
	if size < 2 {
		panic(errors.Mark(errors.AssertionFailedf("bucket size %d too small", size), ErrCorrupt))
	}
	return &List[T]{items: make([]T, size)}
}

// Clear resets the list to empty and drops the overflow chain.
func (l *List[T]) Clear() {
	l.items[0] = 0
	l.next = nil
}

// Iterate calls fn for every member in bucket order.
func (l *List[T]) Iterate(fn func(T)) {
	l.Find(func(v T) bool {
		fn(v)
		return false
	})
}

// Find calls pred for members in bucket order and reports whether any call
// returned true. Iteration stops at the first match.
func (l *List[T]) Find(pred func(T) bool) bool {
	b, i := l, 0
	for {
		v := b.items[i]
		if v == 0 {
			return false
		}
		if pred(v) {
			return true
		}
		if i++; i == len(b.items) {
			if b.next == nil {
				panic(errors.Mark(errors.AssertionFailedf("full bucket without successor"), ErrCorrupt))
			}
			b, i = b.next, 0
		}
	}
}

// Contains reports whether v is a member.
func (l *List[T]) Contains(v T) bool {
	return l.Find(func(x T) bool { return x == v })
}

// Len returns the member count.
func (l *List[T]) Len() int {
	n := 0
	l.Iterate(func(T) { n++ })
	return n
}

// Buckets returns the number of buckets in the chain, head included.
func (l *List[T]) Buckets() int {
	n := 0
	for b := l; b != nil; b = b.next {
		n++
	}
	return n
}

// Append adds v to the end of the chain. v must be nonzero.
func (l *List[T]) Append(v T) {
	if v == 0 {
		panic(errors.Mark(errors.AssertionFailedf("append of sentinel value"), ErrCorrupt))
	}
	b := l
	for b.next != nil {
		b = b.next
	}
	size := len(b.items)
	i := 0
	for ; i < size; i++ {
		if b.items[i] == 0 {
			b.items[i] = v
			break
		}
	}
	switch {
	case i == size:
		// Tail bucket had no free slot; only reachable if the chain was
		// tampered with.
		panic(errors.Mark(errors.AssertionFailedf("tail bucket full"), ErrCorrupt))
	case i < size-1:
		b.items[i+1] = 0
	default:
		b.next = &List[T]{items: make([]T, size)}
	}
}

// Erase removes one occurrence of v by moving the last member into its slot.
// Order is not preserved. v must be present.
func (l *List[T]) Erase(v T) {
	if v == 0 {
		panic(errors.Mark(errors.AssertionFailedf("erase of sentinel value"), ErrCorrupt))
	}
	b, i := l, 0
	for b.items[i] != v {
		if b.items[i] == 0 {
			panic(errors.Mark(errors.AssertionFailedf("erase of absent value %d", v), ErrCorrupt))
		}
		if i++; i == len(b.items) {
			if b.next == nil {
				panic(errors.Mark(errors.AssertionFailedf("erase of absent value %d", v), ErrCorrupt))
			}
			b, i = b.next, 0
		}
	}
	found, foundIdx := b, i

	// Walk on to the terminating zero; the member before it is the last one.
	for {
		if b.items[i] == 0 {
			found.items[foundIdx] = b.items[i-1]
			b.items[i-1] = 0
			return
		}
		if i++; i == len(b.items) {
			last := len(b.items) - 1
			if b.next == nil {
				panic(errors.Mark(errors.AssertionFailedf("full bucket without successor"), ErrCorrupt))
			}
			if b.next.items[0] == 0 {
				// The successor is empty: the last member closes this bucket,
				// and the successor goes away.
				b.next = nil
				found.items[foundIdx] = b.items[last]
				b.items[last] = 0
				return
			}
			b, i = b.next, 0
		}
	}
}
