package command

import (
	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/resp"
)

// fetchOrCreateHash looks up key, creating a new empty Hash if absent.
// A present value of another type yields a *objects.WrongTypeError
// without mutating the keyspace.
func fetchOrCreateHash(ctx *Context, key string) (*objects.Hash, error) {
	v, ok := ctx.Keyspace.Lookup(key)
	if !ok {
		h := objects.NewHash()
		ctx.Keyspace.Store(key, h)
		return h, nil
	}
	return objects.AsHash(v)
}

// handleHSet sets one or more field/value pairs, per spec.md's full
// HASH object API generalizing original_source/Command.cpp's
// handleHSet, which only ever processes its first pair.
func handleHSet(ctx *Context, args [][]byte) []byte {
	h, err := fetchOrCreateHash(ctx, string(args[1]))
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	added := 0
	for i := 2; i+1 < len(args); i += 2 {
		if h.HSet(args[i], args[i+1]) {
			added++
		}
	}
	return resp.EncodeInteger(added)
}

func handleHGet(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	h, err := objects.AsHash(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	value, ok := h.HGet(args[2])
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeBulkString(value)
}

func handleHDel(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	h, err := objects.AsHash(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	removed := 0
	for _, field := range args[2:] {
		if h.HDel(field) {
			removed++
		}
	}
	return resp.EncodeInteger(removed)
}

func handleHExists(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	h, err := objects.AsHash(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	if h.HExists(args[2]) {
		return resp.EncodeInteger(1)
	}
	return resp.EncodeInteger(0)
}

func handleHLen(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	h, err := objects.AsHash(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	return resp.EncodeInteger(h.HLen())
}
