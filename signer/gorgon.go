package signer

import (
	"encoding/hex"
	"math/bits"
	"strconv"

	"github.com/Skill/ttcodec/bytebuf"
	"github.com/Skill/ttcodec/crypto"
)

const (
	gorgonLength  = 0x14
	gorgonVersion = "0404b0d30000"
)

var gorgonKey = [gorgonLength]byte{
	0xDF, 0x77, 0xB9, 0x40, 0xB9,
	0x9B, 0x84, 0x83, 0xD1, 0xB9,
	0xCB, 0xD1, 0xF7, 0xC2, 0xB9,
	0x85, 0xC3, 0xD0, 0xFB, 0xC3,
}

// Gorgon computes the legacy x-gorgon header that travels with Argus and
// Ladon.
type Gorgon struct {
	Khronos uint32
	Params  string
	Data    string
	Cookies string
}

// input takes the first 4 bytes of MD5(params), MD5(data) and MD5(cookies)
// (zeros for an empty data or cookie string), a fixed tag, and the
// big-endian timestamp.
func (g *Gorgon) input() []byte {
	b := bytebuf.New(gorgonLength)
	for i, s := range []string{g.Params, g.Data, g.Cookies} {
		if s == "" && i > 0 {
			b.WriteBytes(make([]byte, 4))
			continue
		}
		sum := crypto.MD5([]byte(s))
		b.WriteBytes(sum[:4])
	}
	b.WriteBytes([]byte{0x00, 0x06, 0x0B, 0x1C})
	b.WriteUint32(bytebuf.BE, g.Khronos)
	return b.Bytes()
}

// Value returns the x-gorgon header value.
func (g *Gorgon) Value() string {
	eor := g.input()
	for i := range eor {
		eor[i] ^= gorgonKey[i]
	}

	for i := 0; i < gorgonLength; i++ {
		c := eor[i]<<4 | eor[i]>>4
		e := c ^ eor[(i+1)%gorgonLength]
		eor[i] = ^bits.Reverse8(e) ^ gorgonLength
	}
	return gorgonVersion + hex.EncodeToString(eor)
}

// Headers returns the gorgon header set keyed by header name.
func (g *Gorgon) Headers() map[string]string {
	return map[string]string{
		"x-ss-req-ticket": strconv.FormatUint(uint64(g.Khronos)*1000, 10),
		"x-khronos":       strconv.FormatUint(uint64(g.Khronos), 10),
		"x-gorgon":        g.Value(),
	}
}
