package crypto

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// LadonTableRounds is how many entries the table builder derives.
	LadonTableRounds = 72
	// LadonRounds is how many of them the block transform consumes.
	LadonRounds = 34
)

// LadonTable is the per-message round table: 4 seed words followed by the
// derived entries.
type LadonTable [4 + LadonTableRounds]uint64

// NewLadonTable builds the table from a 32-byte seed. The seed is used as raw
// bytes (for Ladon, the ASCII hex of an MD5 digest) and read as four
// little-endian words.
//
// This recurrence is not the SIMON key schedule: it adds instead of XORing and
// draws its second operand from a FIFO window.
func NewLadonTable(seed []byte) (*LadonTable, error) {
	if len(seed) != 32 {
		return nil, errors.Errorf("ladon seed must be 32 bytes, got %d", len(seed))
	}

	t := new(LadonTable)
	window := make([]uint64, 0, 4+LadonTableRounds)
	for i := 0; i < 4; i++ {
		t[i] = binary.LittleEndian.Uint64(seed[i*8:])
		window = append(window, t[i])
	}

	b0, b8 := window[0], window[1]
	window = window[2:]

	for i := 0; i < LadonTableRounds; i++ {
		x9, x8 := b0, b8

		x8 = (rotateRight(x8, 8) + x9) ^ uint64(i)
		window = append(window, x8)
		x8 ^= rotateRight(x9, 61)
		t[i+1] = x8

		b0 = x8
		b8 = window[0]
		window = window[1:]
	}
	return t, nil
}

// EncryptBlock runs the 34-round transform over one block.
func (t *LadonTable) EncryptBlock(b Block) Block {
	data0, data1 := b[0], b[1]
	for i := 0; i < LadonRounds; i++ {
		data1 = t[i] ^ (data0 + rotateRight(data1, 8))
		data0 = data1 ^ rotateRight(data0, 61)
	}
	return Block{data0, data1}
}

// DecryptBlock inverts EncryptBlock.
func (t *LadonTable) DecryptBlock(b Block) Block {
	data0, data1 := b[0], b[1]
	for i := LadonRounds - 1; i >= 0; i-- {
		data0 = rotateLeft(data1^data0, 61)
		data1 = rotateLeft((data1^t[i])-data0, 8)
	}
	return Block{data0, data1}
}

// EncryptECB encrypts src into dst one 16-byte block at a time.
func (t *LadonTable) EncryptECB(dst, src []byte) error {
	return t.ecb(dst, src, t.EncryptBlock)
}

// DecryptECB is the inverse of EncryptECB.
func (t *LadonTable) DecryptECB(dst, src []byte) error {
	return t.ecb(dst, src, t.DecryptBlock)
}

func (t *LadonTable) ecb(dst, src []byte, fn func(Block) Block) error {
	if len(src)%BlockSize != 0 {
		return errors.Wrapf(ErrBlockSize, "%d bytes", len(src))
	}
	if len(dst) < len(src) {
		return errors.New("output smaller than input")
	}
	for i := 0; i < len(src); i += BlockSize {
		out := fn(Block{
			binary.LittleEndian.Uint64(src[i:]),
			binary.LittleEndian.Uint64(src[i+8:]),
		})
		binary.LittleEndian.PutUint64(dst[i:], out[0])
		binary.LittleEndian.PutUint64(dst[i+8:], out[1])
	}
	return nil
}
