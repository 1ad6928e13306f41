package command

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zond/redikv/keyspace"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return &Context{
		Keyspace:     keyspace.New(),
		SnapshotPath: filepath.Join(t.TempDir(), "dump.rdb"),
		StartedAt:    time.Now(),
	}
}

func args(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func TestPing(t *testing.T) {
	ctx := newTestContext(t)
	if got := string(Dispatch(ctx, args("PING"))); got != "+PONG\r\n" {
		t.Fatalf("PING = %q", got)
	}
	if got := string(Dispatch(ctx, args("ping"))); got != "+PONG\r\n" {
		t.Fatalf("lowercase ping = %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	ctx := newTestContext(t)
	got := string(Dispatch(ctx, args("FROBNICATE", "x")))
	if !strings.HasPrefix(got, "-ERR unknown command") {
		t.Fatalf("FROBNICATE = %q", got)
	}
}

func TestArityErrors(t *testing.T) {
	ctx := newTestContext(t)
	cases := [][]string{
		{"GET"},
		{"GET", "a", "b"},
		{"SET", "a"},
		{"HSET", "a", "field"},
	}
	for _, c := range cases {
		got := string(Dispatch(ctx, args(c...)))
		if !strings.HasPrefix(got, "-ERR wrong number of arguments") {
			t.Fatalf("%v = %q, want arity error", c, got)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	if got := string(Dispatch(ctx, args("SET", "k", "v"))); got != "+OK\r\n" {
		t.Fatalf("SET = %q", got)
	}
	if got := string(Dispatch(ctx, args("GET", "k"))); got != "$1\r\nv\r\n" {
		t.Fatalf("GET = %q", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	ctx := newTestContext(t)
	if got := string(Dispatch(ctx, args("GET", "missing"))); got != "$-1\r\n" {
		t.Fatalf("GET missing = %q", got)
	}
}

func TestGetWrongType(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("HSET", "h", "f", "v"))
	got := string(Dispatch(ctx, args("GET", "h")))
	if !strings.HasPrefix(got, "-WRONGTYPE") {
		t.Fatalf("GET on hash = %q", got)
	}
}

func TestHSetMultiPair(t *testing.T) {
	ctx := newTestContext(t)
	got := string(Dispatch(ctx, args("HSET", "h", "f1", "v1", "f2", "v2")))
	if got != ":2\r\n" {
		t.Fatalf("HSET multi-pair = %q, want 2 new fields", got)
	}
	if got := string(Dispatch(ctx, args("HGET", "h", "f1"))); got != "$2\r\nv1\r\n" {
		t.Fatalf("HGET f1 = %q", got)
	}
	if got := string(Dispatch(ctx, args("HLEN", "h"))); got != ":2\r\n" {
		t.Fatalf("HLEN = %q", got)
	}
	if got := string(Dispatch(ctx, args("HEXISTS", "h", "f1"))); got != ":1\r\n" {
		t.Fatalf("HEXISTS = %q", got)
	}
	if got := string(Dispatch(ctx, args("HDEL", "h", "f1", "nope"))); got != ":1\r\n" {
		t.Fatalf("HDEL = %q", got)
	}
}

func TestDelAndExists(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("SET", "a", "1"))
	Dispatch(ctx, args("SET", "b", "2"))
	if got := string(Dispatch(ctx, args("EXISTS", "a", "b", "c"))); got != ":2\r\n" {
		t.Fatalf("EXISTS = %q", got)
	}
	if got := string(Dispatch(ctx, args("DEL", "a", "c"))); got != ":1\r\n" {
		t.Fatalf("DEL = %q", got)
	}
	if got := string(Dispatch(ctx, args("EXISTS", "a"))); got != ":0\r\n" {
		t.Fatalf("EXISTS after del = %q", got)
	}
}

func TestListCommands(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("RPUSH", "l", "a", "b", "c"))
	if got := string(Dispatch(ctx, args("LLEN", "l"))); got != ":3\r\n" {
		t.Fatalf("LLEN = %q", got)
	}
	if got := string(Dispatch(ctx, args("LINDEX", "l", "-1"))); got != "$1\r\nc\r\n" {
		t.Fatalf("LINDEX -1 = %q", got)
	}
	if got := string(Dispatch(ctx, args("LPOP", "l"))); got != "$1\r\na\r\n" {
		t.Fatalf("LPOP = %q", got)
	}
	if got := string(Dispatch(ctx, args("LINSERT", "l", "BEFORE", "c", "x"))); got != ":3\r\n" {
		t.Fatalf("LINSERT = %q", got)
	}
}

func TestSetCommands(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("SADD", "s", "1", "2", "3"))
	if got := string(Dispatch(ctx, args("SCARD", "s"))); got != ":3\r\n" {
		t.Fatalf("SCARD = %q", got)
	}
	if got := string(Dispatch(ctx, args("SISMEMBER", "s", "2"))); got != ":1\r\n" {
		t.Fatalf("SISMEMBER = %q", got)
	}
	if got := string(Dispatch(ctx, args("SREM", "s", "2"))); got != ":1\r\n" {
		t.Fatalf("SREM = %q", got)
	}
}

func TestZSetCommands(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("ZADD", "z", "1", "a", "2", "b"))
	if got := string(Dispatch(ctx, args("ZSCORE", "z", "b"))); got != "$1\r\n2\r\n" {
		t.Fatalf("ZSCORE = %q", got)
	}
	if got := string(Dispatch(ctx, args("ZRANK", "z", "a"))); got != ":0\r\n" {
		t.Fatalf("ZRANK = %q", got)
	}
	if got := string(Dispatch(ctx, args("ZREM", "z", "a"))); got != ":1\r\n" {
		t.Fatalf("ZREM = %q", got)
	}
}

func TestSaveProducesOK(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("SET", "k", "v"))
	if got := string(Dispatch(ctx, args("SAVE"))); got != "+OK\r\n" {
		t.Fatalf("SAVE = %q", got)
	}
}

func TestInfoContainsKeyspaceCount(t *testing.T) {
	ctx := newTestContext(t)
	Dispatch(ctx, args("SET", "k", "v"))
	got := string(Dispatch(ctx, args("INFO")))
	if !strings.Contains(got, "keyspace_keys:1") {
		t.Fatalf("INFO = %q", got)
	}
}

func TestSlowLogAndErrorsWithoutSinksReturnEmptyArrays(t *testing.T) {
	ctx := newTestContext(t)
	if got := string(Dispatch(ctx, args("SLOWLOG"))); got != "*0\r\n" {
		t.Fatalf("SLOWLOG without sink = %q", got)
	}
	if got := string(Dispatch(ctx, args("ERRORS", "127.0.0.1:1"))); got != "*0\r\n" {
		t.Fatalf("ERRORS without sink = %q", got)
	}
}
