package objects

import (
	"bytes"
	"container/list"
)

const (
	listPromoteCount  = 512
	listPromoteElemLen = 64
)

// InsertPosition selects where LINSERT places the new element
// relative to the pivot.
type InsertPosition int

const (
	Before InsertPosition = iota
	After
)

// List is the LIST value object: a compact vector of byte strings
// that promotes one-way to a doubly linked list once it grows past
// listPromoteCount elements or any element exceeds listPromoteElemLen
// bytes. Grounded on original_source/ListObject.{hpp,cpp}; the
// promoted encoding uses container/list rather than a hand-rolled
// deque since the standard library's doubly linked list already gives
// O(1) push/pop at both ends, exactly what the promotion buys.
type List struct {
	encoding string // "quicklist-compact" or "quicklist"
	compact  [][]byte
	promoted *list.List
}

// NewList returns an empty List in its compact encoding.
func NewList() *List {
	return &List{encoding: "quicklist-compact"}
}

func (*List) Type() Type        { return TypeList }
func (l *List) Encoding() string { return l.encoding }

func (l *List) isPromoted() bool {
	return l.encoding == "quicklist"
}

func (l *List) wouldExceedThreshold(value []byte) bool {
	if len(l.compact)+1 > listPromoteCount {
		return true
	}
	return len(value) > listPromoteElemLen
}

func (l *List) promote() {
	l.promoted = list.New()
	for _, v := range l.compact {
		l.promoted.PushBack(v)
	}
	l.compact = nil
	l.encoding = "quicklist"
}

func (l *List) maybePromote(incoming []byte) {
	if !l.isPromoted() && l.wouldExceedThreshold(incoming) {
		l.promote()
	}
}

// LPush prepends value.
func (l *List) LPush(value []byte) {
	value = cloneBytes(value)
	l.maybePromote(value)
	if l.isPromoted() {
		l.promoted.PushFront(value)
		return
	}
	l.compact = append([][]byte{value}, l.compact...)
}

// RPush appends value.
func (l *List) RPush(value []byte) {
	value = cloneBytes(value)
	l.maybePromote(value)
	if l.isPromoted() {
		l.promoted.PushBack(value)
		return
	}
	l.compact = append(l.compact, value)
}

// LPop removes and returns the first element, if any.
func (l *List) LPop() ([]byte, bool) {
	if l.isPromoted() {
		e := l.promoted.Front()
		if e == nil {
			return nil, false
		}
		l.promoted.Remove(e)
		return e.Value.([]byte), true
	}
	if len(l.compact) == 0 {
		return nil, false
	}
	v := l.compact[0]
	l.compact = l.compact[1:]
	return v, true
}

// RPop removes and returns the last element, if any.
func (l *List) RPop() ([]byte, bool) {
	if l.isPromoted() {
		e := l.promoted.Back()
		if e == nil {
			return nil, false
		}
		l.promoted.Remove(e)
		return e.Value.([]byte), true
	}
	if len(l.compact) == 0 {
		return nil, false
	}
	v := l.compact[len(l.compact)-1]
	l.compact = l.compact[:len(l.compact)-1]
	return v, true
}

// LLen returns the number of elements.
func (l *List) LLen() int {
	if l.isPromoted() {
		return l.promoted.Len()
	}
	return len(l.compact)
}

// normalizeIndex converts a possibly-negative index (counted from the
// tail, -1 being the last element) into a 0-based offset. ok is false
// if the index is out of range.
func normalizeIndex(index, size int) (int, bool) {
	if index < 0 {
		index += size
	}
	if index < 0 || index >= size {
		return 0, false
	}
	return index, true
}

// LIndex returns the element at index, supporting negative,
// from-the-tail indices.
func (l *List) LIndex(index int) ([]byte, bool) {
	size := l.LLen()
	idx, ok := normalizeIndex(index, size)
	if !ok {
		return nil, false
	}
	if l.isPromoted() {
		e := l.promoted.Front()
		for i := 0; i < idx; i++ {
			e = e.Next()
		}
		return e.Value.([]byte), true
	}
	return l.compact[idx], true
}

// LRem removes occurrences of value. count > 0 removes up to count
// occurrences scanning head-to-tail; count < 0 scans tail-to-head;
// count == 0 removes all occurrences. Returns the number removed.
func (l *List) LRem(count int, value []byte) int {
	elems := l.elements()
	removed := 0
	result := make([][]byte, 0, len(elems))

	if count >= 0 {
		limit := count
		if count == 0 {
			limit = len(elems)
		}
		for _, e := range elems {
			if removed < limit && bytes.Equal(e, value) {
				removed++
				continue
			}
			result = append(result, e)
		}
	} else {
		limit := -count
		keep := make([]bool, len(elems))
		for i := range keep {
			keep[i] = true
		}
		for i := len(elems) - 1; i >= 0 && removed < limit; i-- {
			if bytes.Equal(elems[i], value) {
				keep[i] = false
				removed++
			}
		}
		for i, e := range elems {
			if keep[i] {
				result = append(result, e)
			}
		}
	}

	l.replaceElements(result)
	return removed
}

// LTrim keeps only the inclusive range [start, stop], both of which
// support negative, from-the-tail indices and are clamped to the
// list's bounds.
func (l *List) LTrim(start, stop int) {
	size := l.LLen()
	if size == 0 {
		return
	}
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		l.replaceElements(nil)
		return
	}
	elems := l.elements()
	l.replaceElements(elems[start : stop+1])
}

// LInsert inserts value immediately before or after the first
// occurrence of pivot. Returns false if pivot is not found.
func (l *List) LInsert(pivot, value []byte, pos InsertPosition) bool {
	elems := l.elements()
	idx := -1
	for i, e := range elems {
		if bytes.Equal(e, pivot) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	insertAt := idx
	if pos == After {
		insertAt = idx + 1
	}
	result := make([][]byte, 0, len(elems)+1)
	result = append(result, elems[:insertAt]...)
	result = append(result, cloneBytes(value))
	result = append(result, elems[insertAt:]...)
	l.replaceElements(result)
	return true
}

// elements materializes the full list as a slice, independent of
// encoding.
func (l *List) elements() [][]byte {
	if !l.isPromoted() {
		out := make([][]byte, len(l.compact))
		copy(out, l.compact)
		return out
	}
	out := make([][]byte, 0, l.promoted.Len())
	for e := l.promoted.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.([]byte))
	}
	return out
}

// replaceElements installs elems as the new contents, keeping the
// current encoding (trimming/removing never promotes; only growth
// does).
func (l *List) replaceElements(elems [][]byte) {
	if l.isPromoted() {
		l.promoted = list.New()
		for _, e := range elems {
			l.promoted.PushBack(e)
		}
		return
	}
	l.compact = elems
}
