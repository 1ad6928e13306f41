// redikv-loader bulk-imports a JSON dump into an RDB snapshot file, so
// a fresh redikv instance can be seeded without speaking RESP for
// every key. Grounded on loader/loader.go's flag-driven, goccy-decoded
// "read a JSON file, build up the store, done" shape, adapted from
// objects (structs.Object) to redikv's own value objects.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/rdb"

	goccy "github.com/goccy/go-json"
)

// dump is the JSON shape redikv-loader accepts, one section per value
// type. A key may appear in only one section; redikv-loader does not
// detect cross-section collisions, it simply applies them in the
// order below and lets the last write win. Every section is built into
// the keyspace, but rdb.Save writes only STRING and HASH keys, so the
// lists, sets and zsets are not in the resulting snapshot file.
type dump struct {
	Strings map[string]string             `json:"strings"`
	Hashes  map[string]map[string]string  `json:"hashes"`
	Lists   map[string][]string           `json:"lists"`
	Sets    map[string][]string           `json:"sets"`
	ZSets   map[string]map[string]float64 `json:"zsets"`
}

// buildKeyspace materializes d as a fresh Keyspace full of value
// objects, the way redikv's own command handlers would build them one
// RESP command at a time.
func buildKeyspace(d *dump) *keyspace.Keyspace {
	ks := keyspace.New()
	for key, value := range d.Strings {
		ks.Store(key, objects.NewString([]byte(value)))
	}
	for key, fields := range d.Hashes {
		h := objects.NewHash()
		for field, value := range fields {
			h.HSet([]byte(field), []byte(value))
		}
		ks.Store(key, h)
	}
	for key, elems := range d.Lists {
		l := objects.NewList()
		for _, e := range elems {
			l.RPush([]byte(e))
		}
		ks.Store(key, l)
	}
	for key, members := range d.Sets {
		s := objects.NewSet()
		for _, m := range members {
			s.SAdd([]byte(m))
		}
		ks.Store(key, s)
	}
	for key, scored := range d.ZSets {
		z := objects.NewZSet()
		for member, score := range scored {
			z.ZAdd(score, []byte(member))
		}
		ks.Store(key, z)
	}
	return ks
}

func main() {
	dir := flag.String("dir", ".", "directory containing the snapshot file")
	snapshotFile := flag.String("snapshot", "dump.rdb", "snapshot file name within -dir")
	dataPath := flag.String("data", "", "path to JSON data to load")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		return
	}

	f, err := os.Open(*dataPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	data := &dump{}
	if err := goccy.NewDecoder(f).Decode(data); err != nil {
		log.Fatalf("decoding data: %v", err)
	}

	ks := buildKeyspace(data)

	path := filepath.Join(*dir, *snapshotFile)
	if !rdb.Save(path, ks) {
		log.Fatalf("saving snapshot to %s failed", path)
	}
	log.Printf("loaded %d keys into %s", ks.Len(), path)
}
