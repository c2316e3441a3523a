package crypto

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = Key{0xd743168ff0c465a4, 0xdb8a0e364afced16, 0x6d1c003a02af01b1, 0x69fc8b81cba594f5}

func TestExpandKey(t *testing.T) {
	s := ExpandKey(testKey)
	assert.Equal(t, testKey[:], s[:4])
	assert.Equal(t, uint64(0x6553b9954577ea15), s[4])
	assert.Equal(t, uint64(0x61542e4d0c5a9b7d), s[71])
	assert.Equal(t, s, ExpandKey(testKey))
}

func TestEncryptBlockVectors(t *testing.T) {
	pt := Block{0x0210048280a4d208, 0x04220db8da95ce18}
	s := ExpandKey(testKey)

	tests := []struct {
		variant Variant
		ct      Block
	}{
		{SIMON, Block{0xccff53ed8cedf82c, 0x1a5fa50121b6aa2e}},
		{SSIMON, Block{0xabe39e36b837c82e, 0xcc010df9cd302de8}},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			ct := EncryptBlock(pt, &s, tt.variant)
			assert.Equal(t, tt.ct, ct)
			assert.Equal(t, pt, DecryptBlock(ct, &s, tt.variant))
		})
	}
}

func TestBlockRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		k := Key{r.Uint64(), r.Uint64(), r.Uint64(), r.Uint64()}
		b := Block{r.Uint64(), r.Uint64()}
		s := ExpandKey(k)
		for _, v := range []Variant{SIMON, SSIMON} {
			ct := EncryptBlock(b, &s, v)
			require.Equal(t, b, DecryptBlock(ct, &s, v), "key %x variant %s", k, v)
		}
	}
}

func TestSimonECB(t *testing.T) {
	c := NewSimon(testKey, SIMON)
	src := make([]byte, 48)
	for i := range src {
		src[i] = byte(i * 7)
	}

	ct := make([]byte, len(src))
	require.NoError(t, c.EncryptECB(ct, src))
	assert.NotEqual(t, src, ct)

	pt := make([]byte, len(ct))
	require.NoError(t, c.DecryptECB(pt, ct))
	assert.Equal(t, src, pt)

	// in place
	buf := append([]byte(nil), src...)
	require.NoError(t, c.EncryptECB(buf, buf))
	assert.Equal(t, ct, buf)

	err := c.EncryptECB(make([]byte, 17), make([]byte, 17))
	assert.True(t, errors.Is(err, ErrBlockSize))
}

func TestSimonECBBlockLayout(t *testing.T) {
	src := make([]byte, 16)
	binary.LittleEndian.PutUint64(src, 0x0210048280a4d208)
	binary.LittleEndian.PutUint64(src[8:], 0x04220db8da95ce18)

	dst := make([]byte, 16)
	require.NoError(t, NewSimon(testKey, SIMON).EncryptECB(dst, src))
	assert.Equal(t, uint64(0xccff53ed8cedf82c), binary.LittleEndian.Uint64(dst))
	assert.Equal(t, uint64(0x1a5fa50121b6aa2e), binary.LittleEndian.Uint64(dst[8:]))
}

func TestKeyFromBytes(t *testing.T) {
	_, err := KeyFromBytes(make([]byte, 31))
	assert.Error(t, err)

	b := make([]byte, 32)
	b[0], b[8], b[16], b[24] = 1, 2, 3, 4
	k, err := KeyFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, Key{1, 2, 3, 4}, k)
}
