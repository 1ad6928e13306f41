// Package command implements the case-insensitive command dispatch
// table: argument arity validation, handler invocation against the
// keyspace, and RESP reply shaping. Grounded on
// original_source/Command.{hpp,cpp} for the base PING/SET/GET/HSET/
// HGET/DEL/EXISTS/KEYS/SAVE surface, and on spec.md §4.3's full value
// object API for the List/Set/ZSet/HDEL/HEXISTS/HLEN/INFO commands
// the distilled spec's dispatch table omitted even though it fully
// specifies the underlying object operations.
package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/zond/redikv/diag"
	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/rdb"
	"github.com/zond/redikv/resp"
)

// Context carries everything a handler needs beyond its arguments: the
// keyspace it mutates, where SAVE persists to, server-lifetime
// bookkeeping for INFO, and the diagnostics sinks SLOWLOG/ERRORS read
// from. SlowLog and RecentErrors may be nil, in which case those two
// commands report empty results — useful for tests that only care
// about the data-plane commands.
type Context struct {
	Keyspace     *keyspace.Keyspace
	SnapshotPath string
	StartedAt    time.Time
	SlowLog      *diag.SlowLog
	RecentErrors *diag.RecentErrors
}

type handler func(ctx *Context, args [][]byte) []byte

// arityCheck reports whether the argument count (including the
// command name at args[0]) satisfies a handler's contract.
type arityCheck func(n int) bool

type entry struct {
	arity   arityCheck
	name    string
	handle  handler
}

func exactly(n int) arityCheck { return func(got int) bool { return got == n } }
func atLeast(n int) arityCheck { return func(got int) bool { return got >= n } }

var table map[string]entry

func init() {
	table = map[string]entry{
		"PING":          {exactly(1), "PING", handlePing},
		"SET":           {atLeast(3), "SET", handleSet},
		"GET":           {exactly(2), "GET", handleGet},
		"DEL":           {atLeast(2), "DEL", handleDel},
		"EXISTS":        {atLeast(2), "EXISTS", handleExists},
		"KEYS":          {exactly(2), "KEYS", handleKeys},
		"SAVE":          {exactly(1), "SAVE", handleSave},
		"INFO":          {exactly(1), "INFO", handleInfo},
		"SLOWLOG":       {exactly(1), "SLOWLOG", handleSlowLog},
		"ERRORS":        {exactly(2), "ERRORS", handleErrors},
		"HSET":          {evenAtLeast(4), "HSET", handleHSet},
		"HGET":          {exactly(3), "HGET", handleHGet},
		"HDEL":          {atLeast(3), "HDEL", handleHDel},
		"HEXISTS":       {exactly(3), "HEXISTS", handleHExists},
		"HLEN":          {exactly(2), "HLEN", handleHLen},
		"LPUSH":         {atLeast(3), "LPUSH", handleLPush},
		"RPUSH":         {atLeast(3), "RPUSH", handleRPush},
		"LPOP":          {exactly(2), "LPOP", handleLPop},
		"RPOP":          {exactly(2), "RPOP", handleRPop},
		"LINDEX":        {exactly(3), "LINDEX", handleLIndex},
		"LREM":          {exactly(4), "LREM", handleLRem},
		"LTRIM":         {exactly(4), "LTRIM", handleLTrim},
		"LINSERT":       {exactly(5), "LINSERT", handleLInsert},
		"LLEN":          {exactly(2), "LLEN", handleLLen},
		"SADD":          {atLeast(3), "SADD", handleSAdd},
		"SREM":          {atLeast(3), "SREM", handleSRem},
		"SISMEMBER":     {exactly(3), "SISMEMBER", handleSIsMember},
		"SCARD":         {exactly(2), "SCARD", handleSCard},
		"SMEMBERS":      {exactly(2), "SMEMBERS", handleSMembers},
		"ZADD":          {evenAtLeast(4), "ZADD", handleZAdd},
		"ZREM":          {atLeast(3), "ZREM", handleZRem},
		"ZSCORE":        {exactly(3), "ZSCORE", handleZScore},
		"ZRANGEBYSCORE": {exactly(4), "ZRANGEBYSCORE", handleZRangeByScore},
		"ZRANK":         {exactly(3), "ZRANK", handleZRank},
	}
}

func evenAtLeast(n int) arityCheck {
	return func(got int) bool { return got >= n && got%2 == 0 }
}

// Dispatch looks up args[0] (case-insensitively) in the command table,
// validates arity, and invokes the handler. It always returns exactly
// one RESP-encoded reply, per spec §7's "errors are never silently
// dropped" rule.
func Dispatch(ctx *Context, args [][]byte) []byte {
	if len(args) == 0 {
		return resp.EncodeError("ERR empty command")
	}
	name := strings.ToUpper(string(args[0]))
	e, found := table[name]
	if !found {
		return resp.EncodeError("ERR unknown command '" + string(args[0]) + "'")
	}
	if !e.arity(len(args)) {
		return resp.EncodeError("ERR wrong number of arguments for '" + e.name + "'")
	}
	return e.handle(ctx, args)
}

func handlePing(_ *Context, _ [][]byte) []byte {
	return resp.EncodeSimpleString("PONG")
}

func handleSet(ctx *Context, args [][]byte) []byte {
	ctx.Keyspace.Store(string(args[1]), objects.NewString(args[2]))
	return resp.EncodeSimpleString("OK")
}

func handleGet(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	s, err := objects.AsString(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	return resp.EncodeBulkString(s.Get())
}

func handleDel(ctx *Context, args [][]byte) []byte {
	keys := make([]string, len(args)-1)
	for i, a := range args[1:] {
		keys[i] = string(a)
	}
	return resp.EncodeInteger(ctx.Keyspace.DeleteMany(keys))
}

func handleExists(ctx *Context, args [][]byte) []byte {
	keys := make([]string, len(args)-1)
	for i, a := range args[1:] {
		keys[i] = string(a)
	}
	return resp.EncodeInteger(ctx.Keyspace.ExistsMany(keys))
}

func handleKeys(ctx *Context, args [][]byte) []byte {
	keys := ctx.Keyspace.AllKeys(string(args[1]))
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return resp.EncodeBulkStringArray(out)
}

func handleSave(ctx *Context, _ [][]byte) []byte {
	if rdb.Save(ctx.SnapshotPath, ctx.Keyspace) {
		return resp.EncodeSimpleString("OK")
	}
	return resp.EncodeError("ERR Failed to save RDB")
}

func handleInfo(ctx *Context, _ [][]byte) []byte {
	uptime := time.Since(ctx.StartedAt).Truncate(time.Second)
	info := "redikv_version:1\r\n" +
		"uptime_seconds:" + strconv.FormatInt(int64(uptime/time.Second), 10) + "\r\n" +
		"keyspace_keys:" + strconv.Itoa(ctx.Keyspace.Len()) + "\r\n"
	return resp.EncodeBulkString([]byte(info))
}

// handleSlowLog is the wire form of the admin CLI's SLOWLOG
// meta-command: every retained entry, slowest first, rendered as
// "<command> <duration>" bulk strings.
func handleSlowLog(ctx *Context, _ [][]byte) []byte {
	if ctx.SlowLog == nil {
		return resp.EncodeBulkStringArray(nil)
	}
	entries := ctx.SlowLog.Snapshot()
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = []byte(e.Command + " " + e.Duration.String())
	}
	return resp.EncodeBulkStringArray(out)
}

// handleErrors is the wire form of the admin CLI's ERRORS
// meta-command: the recent protocol-error reasons recorded for the
// given remote address, oldest first.
func handleErrors(ctx *Context, args [][]byte) []byte {
	if ctx.RecentErrors == nil {
		return resp.EncodeBulkStringArray(nil)
	}
	reasons := ctx.RecentErrors.For(string(args[1]))
	out := make([][]byte, len(reasons))
	for i, r := range reasons {
		out[i] = []byte(r)
	}
	return resp.EncodeBulkStringArray(out)
}
