// Package keyspace implements the top-level key->object mapping. It is
// owned exclusively by the single dispatcher goroutine (see package
// server): there is no internal locking, mirroring the single-writer
// model the rest of this tree assumes.
package keyspace

import (
	"github.com/zond/redikv/dict"
	"github.com/zond/redikv/objects"
)

// Keyspace is a Dict keyed by raw key bytes, mapping to an owning
// value object. Grounded on original_source/Database.{hpp,cpp} and on
// the teacher's storage/dbm.Hash for the Get/Set/Del/Each surface,
// stripped of locking and disk persistence since the keyspace lives
// entirely in memory and is touched by one goroutine only.
type Keyspace struct {
	keys *dict.Dict[objects.Value]
}

// New returns an empty Keyspace.
func New() *Keyspace {
	return &Keyspace{keys: dict.New[objects.Value]()}
}

// Lookup returns the object stored at key, if any.
func (k *Keyspace) Lookup(key string) (objects.Value, bool) {
	return k.keys.Get(key)
}

// Store installs obj at key, replacing whatever was there before.
func (k *Keyspace) Store(key string, obj objects.Value) {
	k.keys.Set(key, obj)
}

// DeleteMany removes every key in keys that is present, returning how
// many were actually removed.
func (k *Keyspace) DeleteMany(keys []string) int {
	count := 0
	for _, key := range keys {
		if k.keys.Del(key) {
			count++
		}
	}
	return count
}

// ExistsMany returns how many of keys are present. A key repeated in
// the argument list is counted once per occurrence, matching Redis
// proper and original_source/Database.cpp's exists().
func (k *Keyspace) ExistsMany(keys []string) int {
	count := 0
	for _, key := range keys {
		if _, ok := k.keys.Get(key); ok {
			count++
		}
	}
	return count
}

// AllKeys returns every key matching pattern. Only the single
// wildcard "*" (match everything) is supported; any other pattern
// returns an empty sequence, per spec §4.4's documented non-feature.
func (k *Keyspace) AllKeys(pattern string) []string {
	if pattern != "*" {
		return nil
	}
	out := make([]string, 0, k.keys.Len())
	for key := range k.keys.Each() {
		out = append(out, key)
	}
	return out
}

// Len returns the number of keys currently stored.
func (k *Keyspace) Len() int {
	return k.keys.Len()
}

// RehashingDicts enumerates every internally rehashing Dict: the
// top-level keyspace dict plus any promoted Hash/Set/ZSet value
// object's internal dict. The cron tick drives every one of these
// every tick, per spec §4.9.
func (k *Keyspace) RehashingDicts() []objects.Rehasher {
	out := []objects.Rehasher{k.keys}
	for _, v := range k.keys.Each() {
		if rh, ok := v.(objects.Rehashing); ok {
			if d := rh.Rehasher(); d != nil {
				out = append(out, d)
			}
		}
	}
	return out
}
