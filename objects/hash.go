package objects

import (
	"iter"

	"github.com/zond/redikv/dict"
)

const (
	hashPromoteCount    = 512
	hashPromoteFieldLen = 64
)

type fieldValue struct {
	field []byte
	value []byte
}

// Hash is the HASH value object: a compact ordered vector of
// (field, value) pairs that promotes one-way to a chained hash table
// (dict.Dict) once it grows past hashPromoteCount entries or any
// field/value exceeds hashPromoteFieldLen bytes. Grounded on
// original_source/HashObject.{hpp,cpp}.
type Hash struct {
	encoding string // "listpack" or "hashtable"
	compact  []fieldValue
	dict     *dict.Dict[[]byte]
}

// NewHash returns an empty Hash in its compact encoding.
func NewHash() *Hash {
	return &Hash{encoding: "listpack"}
}

func (*Hash) Type() Type       { return TypeHash }
func (h *Hash) Encoding() string { return h.encoding }

func (h *Hash) promoted() bool {
	return h.encoding == "hashtable"
}

func (h *Hash) wouldExceedThreshold(field, value []byte) bool {
	if len(h.compact)+1 > hashPromoteCount {
		return true
	}
	return len(field) > hashPromoteFieldLen || len(value) > hashPromoteFieldLen
}

// promote migrates every compact entry into a dict.Dict in a single
// pass, then discards the compact vector. Existing field ordering is
// not preserved (the dict has none), but every (field, value) pair
// survives.
func (h *Hash) promote() {
	h.dict = dict.New[[]byte]()
	for _, fv := range h.compact {
		h.dict.Set(string(fv.field), fv.value)
	}
	h.compact = nil
	h.encoding = "hashtable"
}

func (h *Hash) findCompact(field []byte) int {
	for i, fv := range h.compact {
		if string(fv.field) == string(field) {
			return i
		}
	}
	return -1
}

// HSet sets field to value, returning true if field is new.
func (h *Hash) HSet(field, value []byte) bool {
	if h.promoted() {
		_, existed := h.dict.Get(string(field))
		h.dict.Set(string(field), cloneBytes(value))
		return !existed
	}

	if i := h.findCompact(field); i >= 0 {
		h.compact[i].value = cloneBytes(value)
		return false
	}

	if h.wouldExceedThreshold(field, value) {
		h.promote()
		_, existed := h.dict.Get(string(field))
		h.dict.Set(string(field), cloneBytes(value))
		return !existed
	}

	h.compact = append(h.compact, fieldValue{field: cloneBytes(field), value: cloneBytes(value)})
	return true
}

// HGet returns the value for field, if present.
func (h *Hash) HGet(field []byte) ([]byte, bool) {
	if h.promoted() {
		return h.dict.Get(string(field))
	}
	if i := h.findCompact(field); i >= 0 {
		return h.compact[i].value, true
	}
	return nil, false
}

// HDel removes field, returning whether it was present.
func (h *Hash) HDel(field []byte) bool {
	if h.promoted() {
		return h.dict.Del(string(field))
	}
	if i := h.findCompact(field); i >= 0 {
		h.compact = append(h.compact[:i], h.compact[i+1:]...)
		return true
	}
	return false
}

// HExists reports whether field is present.
func (h *Hash) HExists(field []byte) bool {
	_, ok := h.HGet(field)
	return ok
}

// HLen returns the number of fields.
func (h *Hash) HLen() int {
	if h.promoted() {
		return h.dict.Len()
	}
	return len(h.compact)
}

// Entries iterates over every (field, value) pair. Order is
// unspecified once the hash has promoted.
func (h *Hash) Entries() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		if h.promoted() {
			for field, value := range h.dict.Each() {
				if !yield([]byte(field), value) {
					return
				}
			}
			return
		}
		for _, fv := range h.compact {
			if !yield(fv.field, fv.value) {
				return
			}
		}
	}
}

// Rehasher returns the Hash's internal Dict once promoted, or nil if
// it is still in its compact listpack encoding.
func (h *Hash) Rehasher() Rehasher {
	if !h.promoted() {
		return nil
	}
	return h.dict
}

func cloneBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
