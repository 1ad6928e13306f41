package objects

import (
	"sort"

	"github.com/zond/redikv/dict"
)

type zsetEntry struct {
	score  float64
	member string
}

// less orders zsetEntry by score ascending, then member lexically
// ascending, matching spec §4.3's zrangebyscore order.
func (e zsetEntry) less(o zsetEntry) bool {
	if e.score != o.score {
		return e.score < o.score
	}
	return e.member < o.member
}

// ZSet is the ZSET value object: a member->score dict.Dict paired with
// a score-ordered index (a sorted slice, binary-searched the way
// intset.Set is) so that range and rank queries do not require a full
// scan. There is no compact/promoted distinction for ZSET, per spec
// §3's encoding table. Grounded on original_source/ZSetObject.{hpp,hpp}.
type ZSet struct {
	scores *dict.Dict[float64]
	sorted []zsetEntry
}

// NewZSet returns an empty ZSet.
func NewZSet() *ZSet {
	return &ZSet{scores: dict.New[float64]()}
}

func (*ZSet) Type() Type        { return TypeZSet }
func (*ZSet) Encoding() string  { return "skiplist" }

// Rehasher returns the ZSet's internal member->score Dict.
func (z *ZSet) Rehasher() Rehasher {
	return z.scores
}

func (z *ZSet) searchPos(e zsetEntry) (int, bool) {
	pos := sort.Search(len(z.sorted), func(i int) bool {
		return !z.sorted[i].less(e)
	})
	found := pos < len(z.sorted) && z.sorted[pos].score == e.score && z.sorted[pos].member == e.member
	return pos, found
}

func (z *ZSet) insertSorted(e zsetEntry) {
	pos, _ := z.searchPos(e)
	z.sorted = append(z.sorted, zsetEntry{})
	copy(z.sorted[pos+1:], z.sorted[pos:])
	z.sorted[pos] = e
}

func (z *ZSet) removeSorted(e zsetEntry) {
	pos, found := z.searchPos(e)
	if !found {
		return
	}
	z.sorted = append(z.sorted[:pos], z.sorted[pos+1:]...)
}

// ZAdd sets member's score, replacing any previous score.
func (z *ZSet) ZAdd(score float64, member []byte) {
	m := string(member)
	if old, existed := z.scores.Get(m); existed {
		z.removeSorted(zsetEntry{score: old, member: m})
	}
	z.scores.Set(m, score)
	z.insertSorted(zsetEntry{score: score, member: m})
}

// ZRem removes member, returning whether it was present.
func (z *ZSet) ZRem(member []byte) bool {
	m := string(member)
	score, existed := z.scores.Get(m)
	if !existed {
		return false
	}
	z.scores.Del(m)
	z.removeSorted(zsetEntry{score: score, member: m})
	return true
}

// ZScore returns member's score, if present.
func (z *ZSet) ZScore(member []byte) (float64, bool) {
	return z.scores.Get(string(member))
}

// ZCard returns the number of members.
func (z *ZSet) ZCard() int {
	return z.scores.Len()
}

// ZRangeByScore returns every member with min <= score <= max, in
// (score ascending, member lexically ascending) order.
func (z *ZSet) ZRangeByScore(min, max float64) [][]byte {
	lo := sort.Search(len(z.sorted), func(i int) bool {
		return z.sorted[i].score >= min
	})
	var out [][]byte
	for i := lo; i < len(z.sorted) && z.sorted[i].score <= max; i++ {
		out = append(out, []byte(z.sorted[i].member))
	}
	return out
}

// ZRank returns member's 0-based rank in ascending score order, if
// present.
func (z *ZSet) ZRank(member []byte) (int, bool) {
	m := string(member)
	score, existed := z.scores.Get(m)
	if !existed {
		return 0, false
	}
	pos, found := z.searchPos(zsetEntry{score: score, member: m})
	if !found {
		return 0, false
	}
	return pos, true
}
