package signer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Skill/ttcodec/bytebuf"
)

// ProtoError reports a malformed or unsupported protobuf encoding.
type ProtoError struct {
	Msg string
}

func (e *ProtoError) Error() string {
	return "protobuf: " + e.Msg
}

// ------------------------------------------------------------
// Field Types
// ------------------------------------------------------------

type ProtoFieldType int

const (
	TypeVarint     ProtoFieldType = 0
	TypeInt64      ProtoFieldType = 1
	TypeString     ProtoFieldType = 2
	TypeGroupStart ProtoFieldType = 3
	TypeGroupEnd   ProtoFieldType = 4
	TypeInt32      ProtoFieldType = 5
)

func (t ProtoFieldType) String() string {
	switch t {
	case TypeVarint:
		return "VARINT"
	case TypeInt64:
		return "INT64"
	case TypeString:
		return "STRING"
	case TypeGroupStart:
		return "GROUPSTART"
	case TypeGroupEnd:
		return "GROUPEND"
	case TypeInt32:
		return "INT32"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// ------------------------------------------------------------
// ProtoField
// ------------------------------------------------------------

type ProtoField struct {
	Idx      int
	Type     ProtoFieldType
	IntVal   uint64
	BytesVal []byte
}

func (pf *ProtoField) IsASCII() bool {
	for _, b := range pf.BytesVal {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

func (pf *ProtoField) String() string {
	switch pf.Type {
	case TypeInt32, TypeInt64, TypeVarint:
		return fmt.Sprintf("%d(%s): %d", pf.Idx, pf.Type, pf.IntVal)
	case TypeString:
		if pf.IsASCII() {
			return fmt.Sprintf(`%d(%s): "%s"`, pf.Idx, pf.Type, pf.BytesVal)
		}
		return fmt.Sprintf(`%d(%s): h"%x"`, pf.Idx, pf.Type, pf.BytesVal)
	}
	return fmt.Sprintf("%d(%s): %v", pf.Idx, pf.Type, pf.IntVal)
}

// ------------------------------------------------------------
// ProtoBuf (main container)
// ------------------------------------------------------------

// ProtoBuf is an ordered list of fields. Field order is preserved on the wire,
// which the signed payloads depend on.
type ProtoBuf struct {
	Fields []*ProtoField
}

// NewProtoBufFromBytes parses data. Unknown wire types and truncated fields
// are errors.
func NewProtoBufFromBytes(data []byte) (*ProtoBuf, error) {
	pb := &ProtoBuf{}
	if err := pb.parse(bytebuf.Wrap(data)); err != nil {
		return nil, err
	}
	return pb, nil
}

func (pb *ProtoBuf) parse(r *bytebuf.Buffer) error {
	for r.Readable() > 0 {
		key, err := r.ReadUvarint()
		if err != nil {
			return errors.Wrap(err, "field key")
		}
		ftype := ProtoFieldType(key & 7)
		idx := int(key >> 3)
		if idx == 0 {
			return &ProtoError{Msg: "field number 0"}
		}

		f := &ProtoField{Idx: idx, Type: ftype}
		switch ftype {
		case TypeInt32:
			v, err := r.ReadUint32(bytebuf.LE)
			if err != nil {
				return errors.Wrapf(err, "field %d", idx)
			}
			f.IntVal = uint64(v)
		case TypeInt64:
			f.IntVal, err = r.ReadUint64(bytebuf.LE)
		case TypeVarint:
			f.IntVal, err = r.ReadUvarint()
		case TypeString:
			var l uint64
			if l, err = r.ReadUvarint(); err == nil {
				if l > uint64(r.Readable()) {
					err = errors.Wrapf(bytebuf.ErrInsufficientData, "length %d", l)
				} else {
					f.BytesVal, err = r.ReadBlock(int(l))
				}
			}
		default:
			return &ProtoError{Msg: fmt.Sprintf("unexpected wire type %s in field %d", ftype, idx)}
		}
		if err != nil {
			return errors.Wrapf(err, "field %d", idx)
		}
		pb.Put(f)
	}
	return nil
}

// ToBytes serialises the fields in order.
func (pb *ProtoBuf) ToBytes() ([]byte, error) {
	w := bytebuf.New(64)

	for _, f := range pb.Fields {
		w.WriteUvarint(uint64(f.Idx)<<3 | uint64(f.Type))

		switch f.Type {
		case TypeInt32:
			w.WriteUint32(bytebuf.LE, uint32(f.IntVal))
		case TypeInt64:
			w.WriteUint64(bytebuf.LE, f.IntVal)
		case TypeVarint:
			w.WriteUvarint(f.IntVal)
		case TypeString:
			w.WriteUvarint(uint64(len(f.BytesVal)))
			w.WriteBytes(f.BytesVal)
		default:
			return nil, &ProtoError{Msg: fmt.Sprintf("cannot encode wire type %s", f.Type)}
		}
	}
	return w.Copy(), nil
}

func (pb *ProtoBuf) String() string {
	var sb strings.Builder
	for i, f := range pb.Fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}

// ------------------------------------------------------------
// Field getters / setters
// ------------------------------------------------------------

func (pb *ProtoBuf) Put(f *ProtoField) {
	pb.Fields = append(pb.Fields, f)
}

// Get returns the first field numbered idx, or nil.
func (pb *ProtoBuf) Get(idx int) *ProtoField {
	for _, f := range pb.Fields {
		if f.Idx == idx {
			return f
		}
	}
	return nil
}

func (pb *ProtoBuf) GetInt(idx int) (uint64, error) {
	f := pb.Get(idx)
	if f == nil {
		return 0, nil
	}
	switch f.Type {
	case TypeInt32, TypeInt64, TypeVarint:
		return f.IntVal, nil
	}
	return 0, &ProtoError{Msg: fmt.Sprintf("field %d is not an integer", idx)}
}

func (pb *ProtoBuf) GetBytes(idx int) ([]byte, error) {
	f := pb.Get(idx)
	if f == nil {
		return nil, nil
	}
	if f.Type != TypeString {
		return nil, &ProtoError{Msg: fmt.Sprintf("field %d is not length-delimited", idx)}
	}
	return f.BytesVal, nil
}

func (pb *ProtoBuf) GetUtf8(idx int) (string, error) {
	bs, err := pb.GetBytes(idx)
	return string(bs), err
}

func (pb *ProtoBuf) PutInt32(idx int, v uint32) {
	pb.Put(&ProtoField{Idx: idx, Type: TypeInt32, IntVal: uint64(v)})
}

func (pb *ProtoBuf) PutInt64(idx int, v uint64) {
	pb.Put(&ProtoField{Idx: idx, Type: TypeInt64, IntVal: v})
}

func (pb *ProtoBuf) PutVarint(idx int, v uint64) {
	pb.Put(&ProtoField{Idx: idx, Type: TypeVarint, IntVal: v})
}

func (pb *ProtoBuf) PutBytes(idx int, b []byte) {
	pb.Put(&ProtoField{Idx: idx, Type: TypeString, BytesVal: b})
}

func (pb *ProtoBuf) PutUtf8(idx int, s string) {
	pb.Put(&ProtoField{Idx: idx, Type: TypeString, BytesVal: []byte(s)})
}
