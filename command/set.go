package command

import (
	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/resp"
)

func fetchOrCreateSet(ctx *Context, key string) (*objects.Set, error) {
	v, ok := ctx.Keyspace.Lookup(key)
	if !ok {
		s := objects.NewSet()
		ctx.Keyspace.Store(key, s)
		return s, nil
	}
	return objects.AsSet(v)
}

func handleSAdd(ctx *Context, args [][]byte) []byte {
	s, err := fetchOrCreateSet(ctx, string(args[1]))
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	added := 0
	for _, m := range args[2:] {
		if s.SAdd(m) {
			added++
		}
	}
	return resp.EncodeInteger(added)
}

func handleSRem(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	s, err := objects.AsSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	removed := 0
	for _, m := range args[2:] {
		if s.SRem(m) {
			removed++
		}
	}
	return resp.EncodeInteger(removed)
}

func handleSIsMember(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	s, err := objects.AsSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	if s.SIsMember(args[2]) {
		return resp.EncodeInteger(1)
	}
	return resp.EncodeInteger(0)
}

func handleSCard(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	s, err := objects.AsSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	return resp.EncodeInteger(s.SCard())
}

func handleSMembers(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeBulkStringArray(nil)
	}
	s, err := objects.AsSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	return resp.EncodeBulkStringArray(s.SMembers())
}
