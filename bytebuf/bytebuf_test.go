package bytebuf

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndianAccessors(t *testing.T) {
	b := New(0)
	b.WriteUint16(LE, 0x81f2)
	b.WriteUint16(BE, 0x81f2)
	b.WriteUint32(LE, 0x4ec5e0ea)
	b.WriteUint64(BE, 0x0102030405060708)

	assert.Equal(t, "f28181f2eae0c54e0102030405060708", b.Hex())

	v16, err := b.ReadUint16(LE)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x81f2), v16)
	v16, err = b.ReadUint16(BE)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x81f2), v16)
	v32, err := b.ReadUint32(LE)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x4ec5e0ea), v32)
	v64, err := b.ReadUint64(LE)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0807060504030201), v64)
	assert.Equal(t, 0, b.Readable())
}

func TestIndexDiscipline(t *testing.T) {
	b := Wrap([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, 0, b.ReaderIndex())
	assert.Equal(t, 5, b.WriterIndex())

	b.MarkReaderIndex()
	blk, err := b.ReadBlock(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, blk)
	b.ResetReaderIndex()
	assert.Equal(t, 0, b.ReaderIndex())

	assert.Error(t, b.SetReaderIndex(6))
	require.NoError(t, b.SetWriterIndex(2))
	assert.Equal(t, []byte{1, 2}, b.Bytes())
	assert.Error(t, b.SetReaderIndex(3))

	_, err = b.ReadBlock(3)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestWrapCopies(t *testing.T) {
	src := []byte{9, 9}
	b := Wrap(src)
	src[0] = 0
	assert.Equal(t, []byte{9, 9}, b.Bytes())
}

func TestPeekFromEnd(t *testing.T) {
	b := Wrap([]byte{0xaa, 0xbb, 0x3a, 0x57})
	v, err := b.PeekUint16(LE, -2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x573a), v)
	assert.Equal(t, 0, b.ReaderIndex())

	_, err = b.PeekUint16(LE, 3)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestUvarint(t *testing.T) {
	for _, v := range []uint64{0, 1, 0x7f, 0x80, 0x40401252, 1<<63 + 5} {
		b := New(10)
		b.WriteUvarint(v)
		got, err := b.ReadUvarint()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	b := Wrap([]byte{0x80, 0x80})
	_, err := b.ReadUvarint()
	assert.True(t, errors.Is(err, ErrInsufficientData))
}
