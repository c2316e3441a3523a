package signer

import (
	"encoding/hex"
	"strconv"

	"github.com/Skill/ttcodec/crypto"
)

const argusMagic = 0x20200929

// ArgusBean is the message carried inside an Argus token. Zero-valued
// optional fields are left off the wire, the way the client omits them.
type ArgusBean struct {
	Version       uint64
	Rand          uint64
	AppID         string
	DeviceID      string
	LicenseID     string
	AppVersion    string
	SDKVersion    string
	SDKVersionInt uint64
	// EnvCode is 8 bytes; nil means all zero.
	EnvCode        []byte
	CreateTime     uint64
	BodyHash       []byte
	QueryHash      []byte
	SecDeviceToken string
	PSKVersion     string
	CallType       uint64
}

// Proto lays the bean out with the client's field numbers and order.
func (b *ArgusBean) Proto() *ProtoBuf {
	pb := &ProtoBuf{}
	pb.PutVarint(1, argusMagic<<1)
	pb.PutVarint(2, b.Version)
	pb.PutVarint(3, b.Rand)
	pb.PutUtf8(4, b.AppID)
	if b.DeviceID != "" {
		pb.PutUtf8(5, b.DeviceID)
	}
	pb.PutUtf8(6, b.LicenseID)
	pb.PutUtf8(7, b.AppVersion)
	pb.PutUtf8(8, b.SDKVersion)
	pb.PutVarint(9, b.SDKVersionInt)
	env := b.EnvCode
	if env == nil {
		env = make([]byte, 8)
	}
	pb.PutBytes(10, env)
	pb.PutVarint(12, b.CreateTime<<1)
	pb.PutBytes(13, b.BodyHash)
	pb.PutBytes(14, b.QueryHash)
	if b.SecDeviceToken != "" {
		pb.PutUtf8(16, b.SecDeviceToken)
	}
	pb.PutUtf8(20, b.PSKVersion)
	pb.PutVarint(21, b.CallType)
	pb.PutVarint(25, 2)
	return pb
}

// Bytes serialises the bean.
func (b *ArgusBean) Bytes() ([]byte, error) {
	return b.Proto().ToBytes()
}

// BodyHash is the first 6 bytes of SM3 over the hex-decoded x-ss-stub, or
// over 16 zero bytes when there is no stub.
func BodyHash(stub string) []byte {
	data := make([]byte, 16)
	if stub != "" {
		if decoded, err := hex.DecodeString(stub); err == nil {
			data = decoded
		}
	}
	sum := crypto.SM3(data)
	return sum[:6]
}

// QueryHash is the first 6 bytes of SM3 over the raw query string, or over 16
// zero bytes for an empty query.
func QueryHash(query string) []byte {
	data := []byte(query)
	if query == "" {
		data = make([]byte, 16)
	}
	sum := crypto.SM3(data)
	return sum[:6]
}

// ParseArgusBean reads the well-known fields back out of a decoded payload.
func ParseArgusBean(pb *ProtoBuf) (*ArgusBean, error) {
	b := &ArgusBean{}
	var err error
	ints := []struct {
		idx int
		dst *uint64
	}{
		{2, &b.Version}, {3, &b.Rand}, {9, &b.SDKVersionInt}, {12, &b.CreateTime}, {21, &b.CallType},
	}
	for _, f := range ints {
		if *f.dst, err = pb.GetInt(f.idx); err != nil {
			return nil, err
		}
	}
	b.CreateTime >>= 1

	strs := []struct {
		idx int
		dst *string
	}{
		{4, &b.AppID}, {5, &b.DeviceID}, {6, &b.LicenseID}, {7, &b.AppVersion},
		{8, &b.SDKVersion}, {16, &b.SecDeviceToken}, {20, &b.PSKVersion},
	}
	for _, f := range strs {
		if *f.dst, err = pb.GetUtf8(f.idx); err != nil {
			return nil, err
		}
	}

	if b.EnvCode, err = pb.GetBytes(10); err != nil {
		return nil, err
	}
	if b.BodyHash, err = pb.GetBytes(13); err != nil {
		return nil, err
	}
	if b.QueryHash, err = pb.GetBytes(14); err != nil {
		return nil, err
	}
	return b, nil
}

// String is used by the command line dump.
func (b *ArgusBean) String() string {
	return "app=" + b.AppID + " license=" + b.LicenseID + " version=" + b.AppVersion +
		" sdk=" + b.SDKVersion + " create=" + strconv.FormatUint(b.CreateTime, 10)
}
