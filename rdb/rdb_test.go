package rdb

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bxcodec/faker/v4"
	"github.com/bxcodec/faker/v4/pkg/options"
	"github.com/google/go-cmp/cmp"

	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/objects"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")

	ks := keyspace.New()
	ks.Store("greeting", objects.NewString([]byte("hello world")))
	ks.Store("binary", objects.NewString([]byte("a\r\nb\x00c")))
	h := objects.NewHash()
	h.HSet([]byte("field1"), []byte("value1"))
	h.HSet([]byte("field2"), []byte("value2"))
	ks.Store("profile", h)

	if !Save(path, ks) {
		t.Fatal("Save returned false")
	}

	loaded := Load(path)
	if loaded.Len() != ks.Len() {
		t.Fatalf("loaded.Len() = %d, want %d", loaded.Len(), ks.Len())
	}

	gv, ok := loaded.Lookup("greeting")
	if !ok {
		t.Fatal("missing greeting key after load")
	}
	gs, err := objects.AsString(gv)
	if err != nil || string(gs.Get()) != "hello world" {
		t.Fatalf("greeting = %v, %v", gs, err)
	}

	bv, ok := loaded.Lookup("binary")
	if !ok {
		t.Fatal("missing binary key after load")
	}
	bs, err := objects.AsString(bv)
	if err != nil || string(bs.Get()) != "a\r\nb\x00c" {
		t.Fatalf("binary = %q, %v", bs.Get(), err)
	}

	pv, ok := loaded.Lookup("profile")
	if !ok {
		t.Fatal("missing profile key after load")
	}
	ph, err := objects.AsHash(pv)
	if err != nil {
		t.Fatalf("AsHash: %v", err)
	}
	v1, ok := ph.HGet([]byte("field1"))
	if !ok || string(v1) != "value1" {
		t.Fatalf("field1 = %q, %v", v1, ok)
	}
	v2, ok := ph.HGet([]byte("field2"))
	if !ok || string(v2) != "value2" {
		t.Fatalf("field2 = %q, %v", v2, ok)
	}
}

func TestLoadMissingFileReturnsEmptyKeyspace(t *testing.T) {
	ks := Load(filepath.Join(t.TempDir(), "does-not-exist.rdb"))
	if ks.Len() != 0 {
		t.Fatalf("expected empty keyspace, got %d keys", ks.Len())
	}
}

func TestLoadCorruptFileReturnsEmptyKeyspace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.rdb")
	if err := os.WriteFile(path, []byte("not an rdb file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	ks := Load(path)
	if ks.Len() != 0 {
		t.Fatalf("expected empty keyspace on corrupt file, got %d keys", ks.Len())
	}
}

func TestLoadTruncatedFileReturnsEmptyKeyspace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.rdb")

	full := keyspace.New()
	full.Store("k", objects.NewString([]byte("v")))
	goodPath := filepath.Join(dir, "good.rdb")
	if !Save(goodPath, full) {
		t.Fatal("Save returned false")
	}
	data, err := os.ReadFile(goodPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0o644); err != nil {
		t.Fatal(err)
	}

	ks := Load(path)
	if ks.Len() != 0 {
		t.Fatalf("expected empty keyspace on truncated file, got %d keys", ks.Len())
	}
}

func TestLoadFlippedChecksumByteReturnsEmptyKeyspace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")

	ks := keyspace.New()
	ks.Store("k", objects.NewString([]byte("v")))
	if !Save(path, ks) {
		t.Fatal("Save returned false")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded := Load(path)
	if loaded.Len() != 0 {
		t.Fatalf("expected empty keyspace on checksum mismatch, got %d keys", loaded.Len())
	}
}

func TestSaveSkipsListSetZSetKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")

	ks := keyspace.New()
	ks.Store("str", objects.NewString([]byte("v")))
	ks.Store("list", objects.NewList())
	ks.Store("set", objects.NewSet())
	ks.Store("zset", objects.NewZSet())

	if !Save(path, ks) {
		t.Fatal("Save returned false")
	}
	loaded := Load(path)
	if loaded.Len() != 1 {
		t.Fatalf("expected only the STRING key to survive, got %d keys", loaded.Len())
	}
	if _, ok := loaded.Lookup("str"); !ok {
		t.Fatal("expected str to survive")
	}
}

func TestSaveLoadManyKeysPreservesSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")

	ks := keyspace.New()
	var want []string
	for i := 0; i < 50; i++ {
		key := "key" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		ks.Store(key, objects.NewString([]byte(key)))
		want = append(want, key)
	}
	if !Save(path, ks) {
		t.Fatal("Save returned false")
	}
	loaded := Load(path)
	got := loaded.AllKeys("*")
	sort.Strings(got)
	sort.Strings(want)
	wantUnique := dedupe(want)
	if len(got) != len(wantUnique) {
		t.Fatalf("got %d keys, want %d", len(got), len(wantUnique))
	}
}

// fakeStringEntry is the shape faker.FakeData populates for
// TestSaveLoadRoundTripRandomStrings: a batch of arbitrary key/value
// pairs, grounded on storage/dbm/dbm_test.go's use of faker to
// generate data for a serialize/deserialize round-trip check rather
// than hand-picking example values.
type fakeStringEntry struct {
	Key   string
	Value string
}

func TestSaveLoadRoundTripRandomStrings(t *testing.T) {
	var entries []fakeStringEntry
	if err := faker.FakeData(&entries, options.WithRandomMapAndSliceMaxSize(32)); err != nil {
		t.Fatalf("faker.FakeData: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")

	want := map[string]string{}
	ks := keyspace.New()
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		want[e.Key] = e.Value
		ks.Store(e.Key, objects.NewString([]byte(e.Value)))
	}

	if !Save(path, ks) {
		t.Fatal("Save returned false")
	}
	loaded := Load(path)

	got := map[string]string{}
	for _, k := range loaded.AllKeys("*") {
		v, ok := loaded.Lookup(k)
		if !ok {
			t.Fatalf("key %q vanished between AllKeys and Lookup", k)
		}
		s, err := objects.AsString(v)
		if err != nil {
			t.Fatalf("AsString(%q): %v", k, err)
		}
		got[k] = string(s.Get())
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("loaded keyspace mismatch (-want +got):\n%s", diff)
	}
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
