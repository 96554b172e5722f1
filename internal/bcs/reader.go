package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrShortBuffer      = errors.New("bcs: unexpected end of input")
	ErrTrailingBytes    = errors.New("bcs: trailing bytes after value")
	ErrInvalidBool      = errors.New("bcs: invalid bool byte")
	ErrInvalidOptionTag = errors.New("bcs: invalid option tag")
	ErrInvalidULEB128   = errors.New("bcs: invalid uleb128 length")
	ErrInvalidUTF8      = errors.New("bcs: string is not valid utf-8")
)

// BCS caps vector and string lengths at 2^31-1.
const maxSequenceLen = 1<<31 - 1

// Reader consumes BCS values from a byte slice in order.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Finish fails when any input is left unread.
func (r *Reader) Finish() error {
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, n)
	}
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.pos, r.Remaining())
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBool, v)
	}
}

// ULEB128 reads a canonical unsigned LEB128 sequence length.
func (r *Reader) ULEB128() (int, error) {
	var value uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, fmt.Errorf("%w: non-canonical encoding", ErrInvalidULEB128)
			}
			break
		}
		shift += 7
		if shift > 28 {
			return 0, fmt.Errorf("%w: too many bytes", ErrInvalidULEB128)
		}
	}
	if value > maxSequenceLen {
		return 0, fmt.Errorf("%w: %d exceeds limit", ErrInvalidULEB128, value)
	}
	return int(value), nil
}

func (r *Reader) Address() (Address, error) {
	var addr Address
	b, err := r.take(AddressLength)
	if err != nil {
		return addr, err
	}
	copy(addr[:], b)
	return addr, nil
}

// ByteVector reads a length-prefixed vector<u8>.
func (r *Reader) ByteVector() ([]byte, error) {
	n, err := r.ULEB128()
	if err != nil {
		return nil, err
	}
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *Reader) Str() (string, error) {
	b, err := r.ByteVector()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func (r *Reader) AddressVector() ([]Address, error) {
	n, err := r.ULEB128()
	if err != nil {
		return nil, err
	}
	if n > r.Remaining()/AddressLength {
		return nil, fmt.Errorf("%w: %d addresses declared, %d bytes left", ErrShortBuffer, n, r.Remaining())
	}
	out := make([]Address, 0, n)
	for i := 0; i < n; i++ {
		addr, err := r.Address()
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func (r *Reader) U64Vector() ([]uint64, error) {
	n, err := r.ULEB128()
	if err != nil {
		return nil, err
	}
	if n > r.Remaining()/8 {
		return nil, fmt.Errorf("%w: %d u64 values declared, %d bytes left", ErrShortBuffer, n, r.Remaining())
	}
	out := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.U64()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// OptionAddress reads Option<address>; nil means None.
func (r *Reader) OptionAddress() (*Address, error) {
	tag, err := r.U8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		addr, err := r.Address()
		if err != nil {
			return nil, err
		}
		return &addr, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidOptionTag, tag)
	}
}
