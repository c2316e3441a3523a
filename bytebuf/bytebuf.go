// Package bytebuf is a growable byte store with independent reader and writer
// indexes.
//
//	+-------------------+------------------+------------------+
//	| discardable bytes |  readable bytes  |  writable bytes  |
//	+-------------------+------------------+------------------+
//	0      <=      readerIndex   <=   writerIndex    <=    len
//
// Endianness is passed to every multi-byte accessor instead of being baked
// into separate method families.
package bytebuf

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
)

// ErrInsufficientData is returned when a read asks for more bytes than are
// readable.
var ErrInsufficientData = errors.New("insufficient data")

var (
	LE binary.ByteOrder = binary.LittleEndian
	BE binary.ByteOrder = binary.BigEndian
)

type Buffer struct {
	buf         []byte
	readerIndex int
	writerIndex int
	markReader  int
	markWriter  int
}

// New returns an empty buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Wrap returns a buffer whose readable bytes are a copy of data.
func Wrap(data []byte) *Buffer {
	b := &Buffer{buf: make([]byte, len(data))}
	copy(b.buf, data)
	b.writerIndex = len(data)
	return b
}

func (b *Buffer) ReaderIndex() int { return b.readerIndex }
func (b *Buffer) WriterIndex() int { return b.writerIndex }

// Readable is the number of bytes between readerIndex and writerIndex.
func (b *Buffer) Readable() int { return b.writerIndex - b.readerIndex }

// SetReaderIndex moves the reader cursor; it must stay within
// [0, writerIndex].
func (b *Buffer) SetReaderIndex(i int) error {
	if i < 0 || i > b.writerIndex {
		return errors.Wrapf(ErrInsufficientData, "reader index %d outside [0,%d]", i, b.writerIndex)
	}
	b.readerIndex = i
	return nil
}

// SetWriterIndex truncates or extends the readable region. Extending past the
// stored bytes zero-fills.
func (b *Buffer) SetWriterIndex(i int) error {
	if i < b.readerIndex {
		return errors.Wrapf(ErrInsufficientData, "writer index %d below reader index %d", i, b.readerIndex)
	}
	b.grow(i - b.writerIndex)
	b.writerIndex = i
	return nil
}

func (b *Buffer) MarkReaderIndex()  { b.markReader = b.readerIndex }
func (b *Buffer) ResetReaderIndex() { b.readerIndex = b.markReader }
func (b *Buffer) MarkWriterIndex()  { b.markWriter = b.writerIndex }

func (b *Buffer) ResetWriterIndex() {
	b.writerIndex = b.markWriter
	if b.readerIndex > b.writerIndex {
		b.readerIndex = b.writerIndex
	}
}

// Clear resets both indexes without releasing storage.
func (b *Buffer) Clear() {
	b.readerIndex, b.writerIndex = 0, 0
	b.markReader, b.markWriter = 0, 0
	b.buf = b.buf[:0]
}

func (b *Buffer) grow(n int) {
	need := b.writerIndex + n
	if need <= len(b.buf) {
		return
	}
	if need <= cap(b.buf) {
		b.buf = b.buf[:need]
		return
	}
	nb := make([]byte, need, 2*need)
	copy(nb, b.buf)
	b.buf = nb
}

func (b *Buffer) need(n int) error {
	if n < 0 || b.Readable() < n {
		return errors.Wrapf(ErrInsufficientData, "need %d bytes, %d readable", n, b.Readable())
	}
	return nil
}

// Bytes returns the readable region. The slice aliases the buffer until the
// next write.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.readerIndex:b.writerIndex]
}

// Copy returns an independent copy of the readable region.
func (b *Buffer) Copy() []byte {
	out := make([]byte, b.Readable())
	copy(out, b.Bytes())
	return out
}

func (b *Buffer) ReadByte() (byte, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.buf[b.readerIndex]
	b.readerIndex++
	return v, nil
}

// ReadBlock consumes n bytes and returns a copy of them.
func (b *Buffer) ReadBlock(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.buf[b.readerIndex:])
	b.readerIndex += n
	return out, nil
}

// Skip advances the reader cursor by n bytes.
func (b *Buffer) Skip(n int) error {
	if err := b.need(n); err != nil {
		return err
	}
	b.readerIndex += n
	return nil
}

func (b *Buffer) ReadUint16(order binary.ByteOrder) (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := order.Uint16(b.buf[b.readerIndex:])
	b.readerIndex += 2
	return v, nil
}

func (b *Buffer) ReadUint32(order binary.ByteOrder) (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := order.Uint32(b.buf[b.readerIndex:])
	b.readerIndex += 4
	return v, nil
}

func (b *Buffer) ReadUint64(order binary.ByteOrder) (uint64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	v := order.Uint64(b.buf[b.readerIndex:])
	b.readerIndex += 8
	return v, nil
}

// ReadUvarint reads a base-128 varint, least significant group first.
func (b *Buffer) ReadUvarint() (uint64, error) {
	var (
		v     uint64
		shift uint
	)
	for {
		c, err := b.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 64 {
			return 0, errors.New("varint overflows 64 bits")
		}
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

// PeekUint16 reads a uint16 at an absolute readable offset without moving
// the reader cursor. Negative offsets count back from writerIndex.
func (b *Buffer) PeekUint16(order binary.ByteOrder, off int) (uint16, error) {
	if off < 0 {
		off += b.Readable()
	}
	if off < 0 || off+2 > b.Readable() {
		return 0, errors.Wrapf(ErrInsufficientData, "peek at %d of %d readable", off, b.Readable())
	}
	return order.Uint16(b.buf[b.readerIndex+off:]), nil
}

func (b *Buffer) WriteByte(c byte) error {
	b.grow(1)
	b.buf[b.writerIndex] = c
	b.writerIndex++
	return nil
}

func (b *Buffer) WriteBytes(p []byte) {
	b.grow(len(p))
	copy(b.buf[b.writerIndex:], p)
	b.writerIndex += len(p)
}

// WriteString appends the raw bytes of s.
func (b *Buffer) WriteString(s string) {
	b.grow(len(s))
	copy(b.buf[b.writerIndex:], s)
	b.writerIndex += len(s)
}

func (b *Buffer) WriteUint16(order binary.ByteOrder, v uint16) {
	b.grow(2)
	order.PutUint16(b.buf[b.writerIndex:], v)
	b.writerIndex += 2
}

func (b *Buffer) WriteUint32(order binary.ByteOrder, v uint32) {
	b.grow(4)
	order.PutUint32(b.buf[b.writerIndex:], v)
	b.writerIndex += 4
}

func (b *Buffer) WriteUint64(order binary.ByteOrder, v uint64) {
	b.grow(8)
	order.PutUint64(b.buf[b.writerIndex:], v)
	b.writerIndex += 8
}

// WriteUvarint appends v as a base-128 varint.
func (b *Buffer) WriteUvarint(v uint64) {
	for v >= 0x80 {
		_ = b.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	_ = b.WriteByte(byte(v))
}

// Hex renders the readable region, used for debug traces.
func (b *Buffer) Hex() string {
	return hex.EncodeToString(b.Bytes())
}
