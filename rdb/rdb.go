// Package rdb implements the snapshot codec: a self-describing binary
// dump of the keyspace, loaded at startup and written by SAVE or on
// graceful shutdown. Grounded on original_source/Rdb.{hpp,cpp}, with
// the two-byte length encoding standardized on the big-endian form
// spec.md §4.6 describes (the C++ prototype's little-endian
// `htole16` packing of the same bit layout was a quirk of its own
// round-trip and is not reproduced here). The trailing 8-byte field
// spec.md calls "checksum-or-zero" is a real CRC-64 over every byte
// from the magic header through the EOF opcode: Save always computes
// and writes it, Load verifies it unless the field is zero, matching
// the zero-means-disabled convention spec.md's naming implies.
package rdb

import (
	"bufio"
	"bytes"
	"hash/crc64"
	"io"
	"os"

	bstd "github.com/deneonet/benc/std"
	"github.com/pkg/errors"
	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/objects"
)

var crcTable = crc64.MakeTable(crc64.ISO)

const (
	magic       = "REDIS0009"
	opcodeDB    = 0xFE
	opcodeEOF   = 0xFF
	typeString  = 0
	typeHash    = 2
	maxLength14 = 1<<14 - 1
)

// ErrLengthTooLarge is returned by Save when a key, field, or value
// exceeds the 14-bit length this codec's varint scheme can encode.
// The spec inherits this limit from the original implementation's own
// 6/14-bit-only length encoding (see spec.md §9, Open Questions).
var ErrLengthTooLarge = errors.New("rdb: length exceeds 16383 bytes")

// Save writes ks to path, replacing its prior contents. Only STRING
// and HASH keys are persisted — LIST, SET, and ZSET are out of this
// codec's scope per spec §4.6 ("other types are reserved by type
// byte"). On any write error the target file may be left truncated or
// absent, but the live keyspace is never touched; Save returns false
// rather than panicking or leaving a partial snapshot silently
// presented as success. This implementation does not write-then-rename
// (spec §9 leaves that atomicity question open).
func Save(path string, ks *keyspace.Keyspace) bool {
	f, err := os.Create(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var payload bytes.Buffer
	if err := save(&payload, ks); err != nil {
		return false
	}

	checksum := crc64.Checksum(payload.Bytes(), crcTable)
	checksumBytes := make([]byte, bstd.SizeUint64())
	bstd.MarshalUint64(0, checksumBytes, checksum)

	w := bufio.NewWriter(f)
	if _, err := w.Write(payload.Bytes()); err != nil {
		return false
	}
	if _, err := w.Write(checksumBytes); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	return true
}

// save writes the magic header, DB selector, every STRING/HASH
// record, and the EOF opcode to w. The 8-byte checksum that follows
// the EOF opcode is appended by the caller, since it covers exactly
// these bytes and nothing else.
func save(w io.Writer, ks *keyspace.Keyspace) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return errors.WithStack(err)
	}
	if err := writeDBSelector(w, 0); err != nil {
		return err
	}
	for _, key := range ks.AllKeys("*") {
		value, ok := ks.Lookup(key)
		if !ok {
			continue
		}
		if err := writeRecord(w, key, value); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte{opcodeEOF}); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func writeDBSelector(w io.Writer, db uint64) error {
	if _, err := w.Write([]byte{opcodeDB}); err != nil {
		return errors.WithStack(err)
	}
	return writeLength(w, db)
}

func writeRecord(w io.Writer, key string, value objects.Value) error {
	switch v := value.(type) {
	case *objects.String:
		if _, err := w.Write([]byte{typeString}); err != nil {
			return errors.WithStack(err)
		}
		if err := writeString(w, []byte(key)); err != nil {
			return err
		}
		return writeString(w, v.Get())
	case *objects.Hash:
		if _, err := w.Write([]byte{typeHash}); err != nil {
			return errors.WithStack(err)
		}
		if err := writeString(w, []byte(key)); err != nil {
			return err
		}
		if err := writeLength(w, uint64(v.HLen())); err != nil {
			return err
		}
		for field, fieldValue := range v.Entries() {
			if err := writeString(w, field); err != nil {
				return err
			}
			if err := writeString(w, fieldValue); err != nil {
				return err
			}
		}
		return nil
	default:
		// LIST, SET, ZSET keys are silently skipped: reserved type
		// bytes with no writer in this spec.
		return nil
	}
}

func writeString(w io.Writer, b []byte) error {
	if err := writeLength(w, uint64(len(b))); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func writeLength(w io.Writer, n uint64) error {
	if n < 1<<6 {
		_, err := w.Write([]byte{byte(n)})
		return errors.WithStack(err)
	}
	if n <= maxLength14 {
		_, err := w.Write([]byte{0x40 | byte(n>>8), byte(n)})
		return errors.WithStack(err)
	}
	return errors.WithStack(ErrLengthTooLarge)
}
