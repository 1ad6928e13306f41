package main

import (
	"path/filepath"
	"strings"
	"testing"

	goccy "github.com/goccy/go-json"

	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/rdb"
)

func TestLoadDumpJSONAndSaveRoundTrips(t *testing.T) {
	const raw = `{
		"strings": {"greeting": "hello"},
		"hashes": {"h": {"f1": "v1", "f2": "v2"}},
		"lists": {"l": ["a", "b", "c"]},
		"sets": {"s": ["1", "2", "3"]},
		"zsets": {"z": {"alice": 1, "bob": 2}}
	}`

	d := &dump{}
	if err := goccy.NewDecoder(strings.NewReader(raw)).Decode(d); err != nil {
		t.Fatalf("decode: %v", err)
	}

	ks := buildKeyspace(d)
	if ks.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", ks.Len())
	}

	path := filepath.Join(t.TempDir(), "dump.rdb")
	if !rdb.Save(path, ks) {
		t.Fatal("Save failed")
	}

	// The snapshot holds only STRING and HASH keys; the list, set and
	// zset are not written by rdb.Save.
	loaded := rdb.Load(path)
	if loaded.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", loaded.Len())
	}

	v, ok := loaded.Lookup("greeting")
	if !ok {
		t.Fatal("greeting missing after reload")
	}
	s, err := objects.AsString(v)
	if err != nil {
		t.Fatalf("AsString: %v", err)
	}
	if string(s.Get()) != "hello" {
		t.Fatalf("greeting = %q", s.Get())
	}
}
