package bcs

import (
	"bytes"
	"encoding/binary"
)

// Writer appends BCS values to an in-memory buffer.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded output.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) U8(v uint8) *Writer {
	w.buf.WriteByte(v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *Writer) U64(v uint64) *Writer {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *Writer) ULEB128(n int) *Writer {
	v := uint32(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf.WriteByte(b | 0x80)
			continue
		}
		w.buf.WriteByte(b)
		return w
	}
}

func (w *Writer) Address(addr Address) *Writer {
	w.buf.Write(addr[:])
	return w
}

func (w *Writer) ByteVector(b []byte) *Writer {
	w.ULEB128(len(b))
	w.buf.Write(b)
	return w
}

func (w *Writer) Str(s string) *Writer {
	return w.ByteVector([]byte(s))
}

func (w *Writer) AddressVector(addrs []Address) *Writer {
	w.ULEB128(len(addrs))
	for _, addr := range addrs {
		w.Address(addr)
	}
	return w
}

func (w *Writer) U64Vector(values []uint64) *Writer {
	w.ULEB128(len(values))
	for _, v := range values {
		w.U64(v)
	}
	return w
}

func (w *Writer) OptionAddress(addr *Address) *Writer {
	if addr == nil {
		return w.U8(0)
	}
	w.U8(1)
	return w.Address(*addr)
}
