package signer

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtoBufReencode(t *testing.T) {
	raw, err := hex.DecodeString(goldenPayload)
	require.NoError(t, err)

	pb, err := NewProtoBufFromBytes(raw)
	require.NoError(t, err)
	assert.Len(t, pb.Fields, 16)

	again, err := pb.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, raw, again)

	nested, err := pb.GetBytes(15)
	require.NoError(t, err)
	inner, err := NewProtoBufFromBytes(nested)
	require.NoError(t, err)
	v, err := inner.GetInt(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v)
}

func TestProtoBufFixedWidth(t *testing.T) {
	pb := &ProtoBuf{}
	pb.PutInt32(1, 0xdeadbeef)
	pb.PutInt64(2, 0x0102030405060708)
	pb.PutUtf8(3, "x")
	raw, err := pb.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, "0defbeadde1108070605040302011a0178", hex.EncodeToString(raw))

	back, err := NewProtoBufFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, pb, back)
	assert.Equal(t, "1(INT32): 3735928559\n2(INT64): 72623859790382856\n3(STRING): \"x\"", back.String())
}

func TestProtoBufMalformed(t *testing.T) {
	for name, s := range map[string]string{
		"truncated string": "0a05ab",
		"truncated varint": "08ff",
		"field zero":       "0001",
		"group":            "0b",
	} {
		t.Run(name, func(t *testing.T) {
			raw, _ := hex.DecodeString(s)
			_, err := NewProtoBufFromBytes(raw)
			assert.Error(t, err)
		})
	}

	pb := &ProtoBuf{}
	pb.PutVarint(1, 3)
	_, err := pb.GetBytes(1)
	assert.Error(t, err)
	_, err = pb.GetInt(5)
	assert.NoError(t, err)
}

func TestBeanRejectsGarbage(t *testing.T) {
	_, err := (&ArgusToken{Payload: []byte{0xff, 0xff}}).Bean()
	assert.ErrorIs(t, err, ErrDecodeMismatch)
	_, err = (&ArgusToken{}).Bean()
	assert.ErrorIs(t, err, ErrDecodeMismatch)
}
