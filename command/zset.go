package command

import (
	"strconv"

	"github.com/zond/redikv/objects"
	"github.com/zond/redikv/resp"
)

func fetchOrCreateZSet(ctx *Context, key string) (*objects.ZSet, error) {
	v, ok := ctx.Keyspace.Lookup(key)
	if !ok {
		z := objects.NewZSet()
		ctx.Keyspace.Store(key, z)
		return z, nil
	}
	return objects.AsZSet(v)
}

func parseFloat(b []byte) (float64, bool) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatScore(f float64) []byte {
	return []byte(strconv.FormatFloat(f, 'g', -1, 64))
}

func handleZAdd(ctx *Context, args [][]byte) []byte {
	scores := make([]float64, 0, (len(args)-2)/2)
	for i := 2; i+1 < len(args); i += 2 {
		score, ok := parseFloat(args[i])
		if !ok {
			return resp.EncodeError("ERR value is not a valid float")
		}
		scores = append(scores, score)
	}
	z, err := fetchOrCreateZSet(ctx, string(args[1]))
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	added := 0
	for i := 2; i+1 < len(args); i += 2 {
		score := scores[(i-2)/2]
		if _, existed := z.ZScore(args[i+1]); !existed {
			added++
		}
		z.ZAdd(score, args[i+1])
	}
	return resp.EncodeInteger(added)
}

func handleZRem(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeInteger(0)
	}
	z, err := objects.AsZSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	removed := 0
	for _, m := range args[2:] {
		if z.ZRem(m) {
			removed++
		}
	}
	return resp.EncodeInteger(removed)
}

func handleZScore(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	z, err := objects.AsZSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	score, ok := z.ZScore(args[2])
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeBulkString(formatScore(score))
}

func handleZRangeByScore(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeBulkStringArray(nil)
	}
	z, err := objects.AsZSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	min, ok1 := parseFloat(args[2])
	max, ok2 := parseFloat(args[3])
	if !ok1 || !ok2 {
		return resp.EncodeError("ERR min or max is not a float")
	}
	return resp.EncodeBulkStringArray(z.ZRangeByScore(min, max))
}

func handleZRank(ctx *Context, args [][]byte) []byte {
	v, ok := ctx.Keyspace.Lookup(string(args[1]))
	if !ok {
		return resp.EncodeNullBulkString()
	}
	z, err := objects.AsZSet(v)
	if err != nil {
		return resp.EncodeError(err.Error())
	}
	rank, ok := z.ZRank(args[2])
	if !ok {
		return resp.EncodeNullBulkString()
	}
	return resp.EncodeInteger(rank)
}
