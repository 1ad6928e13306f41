package rdb

import (
	"bufio"
	"hash/crc64"
	"io"
	"os"

	bstd "github.com/deneonet/benc/std"
	"github.com/pkg/errors"
	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/objects"
)

var (
	errBadMagic        = errors.New("rdb: bad magic")
	errUnknownType     = errors.New("rdb: unknown type byte")
	errBadLength       = errors.New("rdb: unsupported length encoding")
	errTruncated       = errors.New("rdb: truncated record")
	errChecksumMismatch = errors.New("rdb: checksum mismatch")
)

// Load reads the snapshot at path and returns the keyspace it
// describes. On any parse error — bad magic, truncated record,
// unknown type, unsupported length — Load returns a fresh empty
// Keyspace rather than a partially populated one, matching spec
// §4.6's all-or-nothing load contract. A missing file is treated the
// same way: the server simply starts fresh.
func Load(path string) *keyspace.Keyspace {
	ks := keyspace.New()

	f, err := os.Open(path)
	if err != nil {
		return ks
	}
	defer f.Close()

	if err := load(bufio.NewReader(f), ks); err != nil {
		return keyspace.New()
	}
	return ks
}

// load reads and applies every record in r to ks. Everything up to and
// including the EOF opcode is hashed as it is read; the 8-byte trailer
// that follows is compared against that hash unless the trailer is all
// zero, in which case — matching the "checksum-or-zero" contract of
// spec.md's wire format — verification is skipped, the same way real
// RDB files use a zero checksum to mean "disabled".
func load(r io.Reader, ks *keyspace.Keyspace) error {
	hasher := crc64.New(crcTable)
	hashed := io.TeeReader(r, hasher)

	got := make([]byte, len(magic))
	if _, err := io.ReadFull(hashed, got); err != nil {
		return errTruncated
	}
	if string(got) != magic {
		return errBadMagic
	}

	opcode, err := readByte(hashed)
	if err != nil {
		return err
	}
	if opcode == opcodeDB {
		if _, err := readLength(hashed); err != nil {
			return err
		}
		if opcode, err = readByte(hashed); err != nil {
			return err
		}
	}

	for {
		if opcode == opcodeEOF {
			break
		}
		key, err := readString(hashed)
		if err != nil {
			return err
		}
		value, err := readValue(hashed, opcode)
		if err != nil {
			return err
		}
		ks.Store(string(key), value)

		if opcode, err = readByte(hashed); err != nil {
			return err
		}
	}

	checksumBytes := make([]byte, 8)
	if _, err := io.ReadFull(r, checksumBytes); err != nil {
		return errTruncated
	}
	_, want, err := bstd.UnmarshalUint64(0, checksumBytes)
	if err != nil {
		return errTruncated
	}
	if want != 0 && want != hasher.Sum64() {
		return errChecksumMismatch
	}
	return nil
}

func readValue(r io.Reader, typeByte byte) (objects.Value, error) {
	switch typeByte {
	case typeString:
		value, err := readString(r)
		if err != nil {
			return nil, err
		}
		return objects.NewString(value), nil
	case typeHash:
		count, err := readLength(r)
		if err != nil {
			return nil, err
		}
		h := objects.NewHash()
		for i := uint64(0); i < count; i++ {
			field, err := readString(r)
			if err != nil {
				return nil, err
			}
			value, err := readString(r)
			if err != nil {
				return nil, err
			}
			h.HSet(field, value)
		}
		return h, nil
	default:
		return nil, errUnknownType
	}
}

func readByte(r io.Reader) (byte, error) {
	buf := [1]byte{}
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errTruncated
	}
	return buf[0], nil
}

func readLength(r io.Reader) (uint64, error) {
	b0, err := readByte(r)
	if err != nil {
		return 0, err
	}
	switch b0 >> 6 {
	case 0:
		return uint64(b0 & 0x3F), nil
	case 1:
		b1, err := readByte(r)
		if err != nil {
			return 0, err
		}
		return uint64(b0&0x3F)<<8 | uint64(b1), nil
	default:
		return 0, errBadLength
	}
}

func readString(r io.Reader) ([]byte, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, errTruncated
		}
	}
	return b, nil
}
