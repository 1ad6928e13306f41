// Package redikv holds a small set of general helpers: stack-traced
// error wrapping and a monotonic unique-id generator. No other package
// in this module currently imports it; they use github.com/pkg/errors
// directly.
package redikv

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const uniqueIDLen = 16

// Encoding is the base64 encoding used for unique IDs.
var Encoding = base64.RawURLEncoding

var lastUniqueIDCounter uint64

// NextUniqueID generates a unique ID using a monotonic timestamp prefix
// followed by random bytes, then base64-encodes the result.
func NextUniqueID() string {
	counter := Increment(&lastUniqueIDCounter)
	timeSize := binary.Size(counter)
	result := make([]byte, uniqueIDLen)
	binary.BigEndian.PutUint64(result, counter)
	if _, err := rand.Read(result[timeSize:]); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return Encoding.EncodeToString(result)
}

// Increment returns a strictly increasing uint64 derived from wall
// time, retrying under contention so concurrent callers never observe
// the same value twice.
func Increment(prevPointer *uint64) uint64 {
	next := uint64(0)
	for {
		next = uint64(time.Now().UnixNano())
		previous := atomic.LoadUint64(prevPointer)
		if next > previous && atomic.CompareAndSwapUint64(prevPointer, previous, next) {
			break
		}
	}
	return next
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStack wraps err with a stack trace unless it already carries one.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); !ok {
		return errors.WithStack(err)
	}
	return err
}

// StackTrace renders the stack trace attached to err, if any.
func StackTrace(err error) string {
	buf := &bytes.Buffer{}
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(buf, "%+v\n", f)
		}
	}
	return buf.String()
}
