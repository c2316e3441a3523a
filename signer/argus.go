package signer

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Skill/ttcodec/bytebuf"
	"github.com/Skill/ttcodec/config"
	"github.com/Skill/ttcodec/crypto"
)

var (
	// ErrInsufficientData marks a token too short for one of the decode
	// stages. Treat it as an unparseable or forged token.
	ErrInsufficientData = bytebuf.ErrInsufficientData
	// ErrDecodeMismatch is returned when a decoded payload is not a protobuf
	// message, which is the only sign of a wrong key.
	ErrDecodeMismatch = errors.New("decoded payload is not a protobuf message")
)

const (
	argusHeaderSize = 9
	argusPrefixSize = 8
	// random low half + at least the header
	argusMinRawSize = 2 + argusHeaderSize
)

// ArgusToken is a decoded Argus token.
type ArgusToken struct {
	Random uint32
	// Header is passed through opaque.
	Header [argusHeaderSize]byte
	// Prefix is the 8-byte block ahead of the SIMON ciphertext. Its first four
	// bytes are the obfuscation key.
	Prefix  [argusPrefixSize]byte
	Payload []byte
}

func (t *ArgusToken) RandomLow() uint16  { return uint16(t.Random) }
func (t *ArgusToken) RandomHigh() uint16 { return uint16(t.Random >> 16) }

// PrefixMatches reports whether Prefix is the one the client derives from
// Random. A mismatch is not treated as an error anywhere.
func (t *ArgusToken) PrefixMatches() bool {
	return t.Prefix == argusPrefix(t.Random)
}

// Bean parses the payload as a protobuf message.
func (t *ArgusToken) Bean() (*ProtoBuf, error) {
	pb, err := NewProtoBufFromBytes(t.Payload)
	if err != nil {
		return nil, errors.Wrap(ErrDecodeMismatch, err.Error())
	}
	if len(pb.Fields) == 0 {
		return nil, errors.Wrap(ErrDecodeMismatch, "empty payload")
	}
	return pb, nil
}

// Argus encodes and decodes Argus tokens under one signing key. It is safe
// for concurrent use.
type Argus struct {
	signKey []byte
	aesKey  [md5.Size]byte
	aesIV   [md5.Size]byte
	log     *zap.SugaredLogger
}

// NewArgus derives the AES key and IV from the 32-byte signing key.
func NewArgus(signKey []byte, log *zap.SugaredLogger) (*Argus, error) {
	if len(signKey) != config.SigningKeySize {
		return nil, errors.Wrapf(config.ErrKeySize, "got %d", len(signKey))
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &Argus{
		signKey: append([]byte(nil), signKey...),
		log:     log,
	}
	a.aesKey = crypto.MD5(signKey[:16])
	a.aesIV = crypto.MD5(signKey[16:])
	return a, nil
}

// simon keys the block cipher with SM3(signKey || random || signKey).
func (a *Argus) simon(random uint32) (*crypto.Simon, error) {
	b := bytebuf.New(2*len(a.signKey) + 4)
	b.WriteBytes(a.signKey)
	b.WriteUint32(bytebuf.LE, random)
	b.WriteBytes(a.signKey)

	sum := crypto.SM3(b.Bytes())
	key, err := crypto.KeyFromBytes(sum[:])
	if err != nil {
		return nil, err
	}
	return crypto.NewSimon(key, crypto.SIMON), nil
}

// Decode recovers the signed payload and the intermediate fields of token.
func (a *Argus) Decode(token string) (*ArgusToken, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Wrap(err, "argus base64")
	}
	if len(raw) < argusMinRawSize {
		return nil, errors.Wrapf(ErrInsufficientData, "argus token of %d bytes", len(raw))
	}

	in := bytebuf.Wrap(raw)
	randomLow, err := in.ReadUint16(bytebuf.LE)
	if err != nil {
		return nil, err
	}
	body := in.Bytes()
	if len(body)%crypto.BlockSize != 0 {
		return nil, errors.Wrapf(ErrInsufficientData, "aes body of %d bytes", len(body))
	}

	plain, err := crypto.AESCBCDecrypt(a.aesKey[:], a.aesIV[:], body)
	if err != nil {
		return nil, err
	}
	plain, ok := crypto.PKCS7UnpadLenient(plain, crypto.BlockSize)
	if !ok {
		a.log.Debugw("argus aes padding inconsistent, keeping it", "len", len(plain))
	}
	a.log.Debugw("argus aes stage", "plain", hex.EncodeToString(plain))

	if len(plain) < argusHeaderSize+2 {
		return nil, errors.Wrapf(ErrInsufficientData, "aes plaintext of %d bytes", len(plain))
	}
	pb := bytebuf.Wrap(plain)
	randomHigh, err := pb.PeekUint16(bytebuf.LE, -2)
	if err != nil {
		return nil, err
	}
	t := &ArgusToken{Random: uint32(randomHigh)<<16 | uint32(randomLow)}

	header, err := pb.ReadBlock(argusHeaderSize)
	if err != nil {
		return nil, err
	}
	copy(t.Header[:], header)
	if err := pb.SetWriterIndex(pb.WriterIndex() - 2); err != nil {
		return nil, err
	}

	block, err := deobfuscate(pb.Bytes())
	if err != nil {
		return nil, err
	}
	copy(t.Prefix[:], block)
	a.log.Debugw("argus deobfuscated", "random", t.Random, "block", hex.EncodeToString(block))

	ct := block[argusPrefixSize:]
	ct = ct[:len(ct)/crypto.BlockSize*crypto.BlockSize]

	c, err := a.simon(t.Random)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, len(ct))
	if err := c.DecryptECB(payload, ct); err != nil {
		return nil, err
	}
	t.Payload, _ = crypto.PKCS7UnpadLenient(payload, crypto.BlockSize)
	a.log.Debugw("argus payload", "payload", hex.EncodeToString(t.Payload))
	return t, nil
}

// Encode builds a token for payload. The token decodes back to payload
// under the same signing key.
func (a *Argus) Encode(payload []byte, random uint32, header [argusHeaderSize]byte) (string, error) {
	c, err := a.simon(random)
	if err != nil {
		return "", err
	}
	padded := crypto.PKCS7Pad(payload, crypto.BlockSize)

	block := make([]byte, argusPrefixSize+len(padded))
	prefix := argusPrefix(random)
	copy(block, prefix[:])
	if err := c.EncryptECB(block[argusPrefixSize:], padded); err != nil {
		return "", err
	}
	block, err = obfuscate(block)
	if err != nil {
		return "", err
	}

	plain := bytebuf.New(argusHeaderSize + len(block) + 2)
	plain.WriteBytes(header[:])
	plain.WriteBytes(block)
	plain.WriteUint16(bytebuf.LE, uint16(random>>16))
	a.log.Debugw("argus aes input", "plain", plain.Hex())

	ct, err := crypto.AESCBCEncrypt(a.aesKey[:], a.aesIV[:], plain.Bytes())
	if err != nil {
		return "", err
	}

	out := bytebuf.New(2 + len(ct))
	out.WriteUint16(bytebuf.LE, uint16(random))
	out.WriteBytes(ct)
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// argusPrefix derives the 8-byte block the client writes ahead of the
// ciphertext from the upper half of random.
func argusPrefix(random uint32) [argusPrefixSize]byte {
	hi := uint32(byte(random >> 24))
	lo := uint32(byte(random >> 16))
	w := ^(((lo << 11) | hi) ^ (lo >> 5) ^ lo)

	var p [argusPrefixSize]byte
	binary.LittleEndian.PutUint32(p[:4], w)
	binary.LittleEndian.PutUint32(p[4:], w)
	return p
}

// obfuscate reverses b, then XORs all but the last 8 bytes with a 4-byte key
// taken from the leading 8 bytes of the input. The reversed leading block ends
// up last and carries the key for deobfuscate.
func obfuscate(b []byte) ([]byte, error) {
	if len(b) < argusPrefixSize {
		return nil, errors.Wrapf(ErrInsufficientData, "obfuscate %d bytes", len(b))
	}
	var x [argusPrefixSize]byte
	copy(x[:], b)

	out := slices.Clone(b)
	slices.Reverse(out)
	for i := 0; i < len(out)-argusPrefixSize; i++ {
		out[i] ^= x[7-i%4]
	}
	return out, nil
}

// deobfuscate inverts obfuscate.
func deobfuscate(b []byte) ([]byte, error) {
	if len(b) < argusPrefixSize {
		return nil, errors.Wrapf(ErrInsufficientData, "deobfuscate %d bytes", len(b))
	}
	out := slices.Clone(b)
	var k [argusPrefixSize]byte
	copy(k[:], out[len(out)-argusPrefixSize:])

	for i := 0; i < len(out)-argusPrefixSize; i++ {
		out[i] ^= k[i%4]
	}
	slices.Reverse(out)
	return out, nil
}
