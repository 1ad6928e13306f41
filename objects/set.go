package objects

import (
	"strconv"

	"github.com/zond/redikv/dict"
	"github.com/zond/redikv/intset"
)

const setPromoteCount = 512

// Set is the SET value object: a compact sorted intset of int64 while
// every member parses back to its own canonical decimal string, and
// no more than setPromoteCount members have been added; it promotes
// one-way to a string hash set (a dict.Dict) the moment either limit
// is crossed, including immediately on the first non-integer member.
// Grounded on original_source/SetObject.{hpp,cpp} and intset.{hpp,cpp}.
type Set struct {
	encoding string // "intset" or "hashtable"
	ints     *intset.Set
	strs     *dict.Dict[struct{}]
}

// NewSet returns an empty Set in its compact intset encoding.
func NewSet() *Set {
	return &Set{encoding: "intset", ints: intset.New()}
}

func (*Set) Type() Type        { return TypeSet }
func (s *Set) Encoding() string { return s.encoding }

func (s *Set) isPromoted() bool {
	return s.encoding == "hashtable"
}

// parseCanonicalInt64 returns the int64 value of member and true only
// if formatting that value back out reproduces member byte-for-byte
// (rejecting "+1", "01", " 1", etc, whose canonical decimal string
// would not round-trip through the intset).
func parseCanonicalInt64(member []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(member), 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != string(member) {
		return 0, false
	}
	return n, true
}

func (s *Set) promote() {
	s.strs = dict.New[struct{}]()
	for _, v := range s.ints.Data() {
		s.strs.Set(strconv.FormatInt(v, 10), struct{}{})
	}
	s.ints = nil
	s.encoding = "hashtable"
}

// SAdd adds member, returning true if it was not already present.
func (s *Set) SAdd(member []byte) bool {
	if s.isPromoted() {
		return s.strs.Set(string(member), struct{}{})
	}

	n, isInt := parseCanonicalInt64(member)
	if !isInt {
		s.promote()
		return s.strs.Set(string(member), struct{}{})
	}
	if s.ints.Len()+1 > setPromoteCount && !s.ints.Contains(n) {
		s.promote()
		return s.strs.Set(string(member), struct{}{})
	}
	return s.ints.Insert(n)
}

// SRem removes member, returning whether it was present.
func (s *Set) SRem(member []byte) bool {
	if s.isPromoted() {
		return s.strs.Del(string(member))
	}
	n, isInt := parseCanonicalInt64(member)
	if !isInt {
		return false
	}
	return s.ints.Erase(n)
}

// SIsMember reports whether member is present.
func (s *Set) SIsMember(member []byte) bool {
	if s.isPromoted() {
		_, ok := s.strs.Get(string(member))
		return ok
	}
	n, isInt := parseCanonicalInt64(member)
	if !isInt {
		return false
	}
	return s.ints.Contains(n)
}

// SCard returns the number of members.
func (s *Set) SCard() int {
	if s.isPromoted() {
		return s.strs.Len()
	}
	return s.ints.Len()
}

// SMembers returns every member as a byte string.
func (s *Set) SMembers() [][]byte {
	if s.isPromoted() {
		out := make([][]byte, 0, s.strs.Len())
		for member := range s.strs.Each() {
			out = append(out, []byte(member))
		}
		return out
	}
	data := s.ints.Data()
	out := make([][]byte, len(data))
	for i, v := range data {
		out[i] = []byte(strconv.FormatInt(v, 10))
	}
	return out
}

// Rehasher returns the Set's internal Dict once promoted, or nil if
// it is still in its compact intset encoding.
func (s *Set) Rehasher() Rehasher {
	if !s.isPromoted() {
		return nil
	}
	return s.strs
}
