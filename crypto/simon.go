// simon.go
package crypto

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"
)

const (
	// SimonZ is the constant sequence mixed into the key schedule.
	SimonZ uint64 = 0x3DC94C3A046D678B

	SimonRounds = 72
	BlockSize   = 16
)

// ErrBlockSize is returned when ECB input is not a whole number of blocks.
var ErrBlockSize = errors.New("input not a multiple of the block size")

// Variant selects the round function.
type Variant int

const (
	// SIMON uses f(x) = rotl(x,1) & rotl(x,8).
	SIMON Variant = iota
	// SSIMON uses f(x) = rotl(x,1) ^ rotl(x,8).
	SSIMON
)

func (v Variant) String() string {
	if v == SSIMON {
		return "SSIMON"
	}
	return "SIMON"
}

// Key is the 256-bit cipher key as four 64-bit words.
type Key [4]uint64

// KeyFromBytes reads four little-endian words from b, which must be 32 bytes.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != 32 {
		return k, errors.Errorf("simon key must be 32 bytes, got %d", len(b))
	}
	for i := range k {
		k[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return k, nil
}

// Schedule holds the expanded round keys.
type Schedule [SimonRounds]uint64

// Block is one 16-byte chunk as two little-endian words.
type Block [2]uint64

func getBit(val uint64, pos uint) uint64 {
	return (val >> pos) & 1
}

func rotateLeft(v uint64, n int) uint64 {
	return bits.RotateLeft64(v, n)
}

func rotateRight(v uint64, n int) uint64 {
	return bits.RotateLeft64(v, -n)
}

// ExpandKey derives the 72 round keys for k.
func ExpandKey(k Key) Schedule {
	var key Schedule
	copy(key[:4], k[:])

	for i := 4; i < SimonRounds; i++ {
		tmp := rotateRight(key[i-1], 3)
		tmp ^= key[i-3]
		tmp ^= rotateRight(tmp, 1)
		key[i] = ^key[i-4] ^ tmp ^ getBit(SimonZ, uint((i-4)%62)) ^ 3
	}
	return key
}

func round(x uint64, v Variant) uint64 {
	if v == SSIMON {
		return rotateLeft(x, 1) ^ rotateLeft(x, 8)
	}
	return rotateLeft(x, 1) & rotateLeft(x, 8)
}

// EncryptBlock runs the 72 forward rounds over pt.
func EncryptBlock(pt Block, key *Schedule, v Variant) Block {
	x, y := pt[0], pt[1]
	for i := 0; i < SimonRounds; i++ {
		tmp := y
		y = x ^ round(y, v) ^ rotateLeft(y, 2) ^ key[i]
		x = tmp
	}
	return Block{x, y}
}

// DecryptBlock runs the rounds of EncryptBlock backwards.
func DecryptBlock(ct Block, key *Schedule, v Variant) Block {
	x, y := ct[0], ct[1]
	for i := SimonRounds - 1; i >= 0; i-- {
		tmp := x
		x = y ^ round(x, v) ^ rotateLeft(x, 2) ^ key[i]
		y = tmp
	}
	return Block{x, y}
}

// Simon is a keyed cipher with its schedule expanded once.
type Simon struct {
	schedule Schedule
	variant  Variant
}

func NewSimon(k Key, v Variant) *Simon {
	return &Simon{schedule: ExpandKey(k), variant: v}
}

func (s *Simon) Variant() Variant { return s.variant }

// EncryptECB encrypts src into dst block by block. dst and src may overlap
// exactly.
func (s *Simon) EncryptECB(dst, src []byte) error {
	return s.ecb(dst, src, EncryptBlock)
}

// DecryptECB is the inverse of EncryptECB.
func (s *Simon) DecryptECB(dst, src []byte) error {
	return s.ecb(dst, src, DecryptBlock)
}

func (s *Simon) ecb(dst, src []byte, fn func(Block, *Schedule, Variant) Block) error {
	if len(src)%BlockSize != 0 {
		return errors.Wrapf(ErrBlockSize, "%d bytes", len(src))
	}
	if len(dst) < len(src) {
		return errors.New("output smaller than input")
	}
	for i := 0; i < len(src); i += BlockSize {
		in := Block{
			binary.LittleEndian.Uint64(src[i:]),
			binary.LittleEndian.Uint64(src[i+8:]),
		}
		out := fn(in, &s.schedule, s.variant)
		binary.LittleEndian.PutUint64(dst[i:], out[0])
		binary.LittleEndian.PutUint64(dst[i+8:], out[1])
	}
	return nil
}
