package command

import (
	"strconv"
	"strings"

	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/resp"
)

func fetchOrCreateList(ctx *Context, key string) (*objects.List, error) {
	v, ok := ctx.Keyspace.Lookup(key)
	if !ok {
		l := objects.NewList()
		ctx.Keyspace.Store(key, l)
		return l, nil
	}
	return objects.AsList(v)
}

func handleLPush(ctx *Context, args [][]byte) []byte {
	l, err := fetchOrCreateList(ctx, string(args[1]))
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	for _, v := range args[2:] {
		l.LPush(v)
	}
	return resp.EncodeInteger(l.LLen())
}

func handleRPush(ctx *Context, args [][]byte) []byte {
	l, err := fetchOrCreateList(ctx, string(args[1]))
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	for _, v := range args[2:] {
		l.RPush(v)
	}
	return resp.EncodeInteger(l.LLen())
}

func handleLPop(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	value, ok := l.LPop()
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeBulkString(value)
}

func handleRPop(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	value, ok := l.RPop()
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeBulkString(value)
}

func handleLIndex(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	idx, ok := parseInt(args[2])
	if !ok {
		return resp.EncodeError("ERR value is not an integer or out of range")
	}
	value, ok := l.LIndex(idx)
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeBulkString(value)
}

func handleLRem(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	count, ok := parseInt(args[2])
	if !ok {
		return resp.EncodeError("ERR value is not an integer or out of range")
	}
	return resp.EncodeInteger(l.LRem(count, args[3]))
}

func handleLTrim(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeSimpleString("OK")
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return resp.EncodeError("ERR value is not an integer or out of range")
	}
	l.LTrim(start, stop)
	return resp.EncodeSimpleString("OK")
}

func handleLInsert(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	var pos objects.InsertPosition
	switch strings.ToUpper(string(args[2])) {
	case "BEFORE":
		pos = objects.Before
	case "AFTER":
		pos = objects.After
	default:
		return resp.EncodeError("ERR syntax error")
	}
	if !l.LInsert(args[3], args[4], pos) {
		return resp.EncodeInteger(-1)
	}
	return resp.EncodeInteger(l.LLen())
}

func handleLLen(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	l, err := objects.AsList(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	return resp.EncodeInteger(l.LLen())
}

func parseInt(b []byte) (int, bool) {
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, false
	}
	return n, true
}
