// Package msgpack implements encoding/decoding of the MessagePack binary
// format as used by the SDK to persist and transmit log events.
//
// The encoding API is an append-only Writer that always produces the most
// compact encoding of a value (small integers and short string/array/map
// lengths are inlined into the header byte). The decoding API is a
// cursor-based Reader that consumes a buffer strictly in order, with exact
// type and width checking on every read.
//
// Extension types (fixext/ext header bytes) are recognized by the tag table
// but their payloads are not implemented; reading one fails with
// ErrNotImplemented.
package msgpack

// Wire-format header bytes. All multi-byte arguments and payloads that
// follow a header are big-endian.
const (
	codeFixIntMax = 0x7f

	codeFixMapLow    = 0x80
	codeFixMapHigh   = 0x8f
	codeFixArrayLow  = 0x90
	codeFixArrayHigh = 0x9f
	codeFixStrLow    = 0xa0
	codeFixStrHigh   = 0xbf

	codeNil      = 0xc0
	codeReserved = 0xc1
	codeFalse    = 0xc2
	codeTrue     = 0xc3

	codeBin8  = 0xc4
	codeBin16 = 0xc5
	codeBin32 = 0xc6

	codeExt8  = 0xc7
	codeExt16 = 0xc8
	codeExt32 = 0xc9

	codeFloat32 = 0xca
	codeFloat64 = 0xcb

	codeUint8  = 0xcc
	codeUint16 = 0xcd
	codeUint32 = 0xce
	codeUint64 = 0xcf

	codeInt8  = 0xd0
	codeInt16 = 0xd1
	codeInt32 = 0xd2
	codeInt64 = 0xd3

	codeFixExt1  = 0xd4
	codeFixExt2  = 0xd5
	codeFixExt4  = 0xd6
	codeFixExt8  = 0xd7
	codeFixExt16 = 0xd8

	codeStr8  = 0xd9
	codeStr16 = 0xda
	codeStr32 = 0xdb

	codeArray16 = 0xdc
	codeArray32 = 0xdd
	codeMap16   = 0xde
	codeMap32   = 0xdf

	codeNegFixIntLow = 0xe0

	fixStrMask       = 0x1f
	fixContainerMask = 0x0f
	negFixIntMask    = 0x1f
)

// Inline capacity limits of the fix forms.
const (
	maxFixInt       = 127
	minNegFixInt    = -32
	maxFixStrLen    = 31
	maxFixContainer = 15
)

// Kind identifies a wire-format header category.
type Kind byte

// Enumeration of header categories. The table is complete: every header
// byte 0x00-0xff maps to exactly one Kind.
const (
	KindNil Kind = iota
	KindReserved
	KindBool
	KindFixInt
	KindNegFixInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindFixStr
	KindStr8
	KindStr16
	KindStr32
	KindBin8
	KindBin16
	KindBin32
	KindFixArray
	KindArray16
	KindArray32
	KindFixMap
	KindMap16
	KindMap32
	KindFixExt1
	KindFixExt2
	KindFixExt4
	KindFixExt8
	KindFixExt16
	KindExt8
	KindExt16
	KindExt32
)

// IsInteger reports whether the kind is any integer form, signed or
// unsigned, inline or fixed-width.
func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

// IsSigned reports whether the kind encodes a signed integer. The inline
// forms count as signed: a positive fixint is a signed value that happens
// to be non-negative.
func (k Kind) IsSigned() bool {
	switch k {
	case KindFixInt, KindNegFixInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsUnsigned reports whether the kind encodes an unsigned fixed-width
// integer.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

// IsFloat reports whether the kind is a float form.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsString reports whether the kind is a string form.
func (k Kind) IsString() bool {
	switch k {
	case KindFixStr, KindStr8, KindStr16, KindStr32:
		return true
	}
	return false
}

// IsBinary reports whether the kind is a binary form.
func (k Kind) IsBinary() bool {
	switch k {
	case KindBin8, KindBin16, KindBin32:
		return true
	}
	return false
}

// IsArray reports whether the kind is an array form.
func (k Kind) IsArray() bool {
	switch k {
	case KindFixArray, KindArray16, KindArray32:
		return true
	}
	return false
}

// IsMap reports whether the kind is a map form.
func (k Kind) IsMap() bool {
	switch k {
	case KindFixMap, KindMap16, KindMap32:
		return true
	}
	return false
}

// IsExt reports whether the kind belongs to the unimplemented extension
// family.
func (k Kind) IsExt() bool {
	switch k {
	case KindFixExt1, KindFixExt2, KindFixExt4, KindFixExt8, KindFixExt16,
		KindExt8, KindExt16, KindExt32:
		return true
	}
	return false
}

// Tag is one decoded wire-format header. For the inline kinds (fixint,
// negative fixint, bool, fixstr, fixarray, fixmap) Arg carries the payload
// bits masked out of the header byte; for every other kind it is zero.
type Tag struct {
	Kind Kind
	Arg  byte
}

// TagForByte decodes a header byte. It is total: every byte value yields a
// tag, including the reserved byte 0xc1 (KindReserved) and the extension
// family.
func TagForByte(b byte) Tag {
	switch {
	case b <= codeFixIntMax:
		return Tag{Kind: KindFixInt, Arg: b}
	case b <= codeFixMapHigh:
		return Tag{Kind: KindFixMap, Arg: b & fixContainerMask}
	case b <= codeFixArrayHigh:
		return Tag{Kind: KindFixArray, Arg: b & fixContainerMask}
	case b <= codeFixStrHigh:
		return Tag{Kind: KindFixStr, Arg: b & fixStrMask}
	case b >= codeNegFixIntLow:
		return Tag{Kind: KindNegFixInt, Arg: b & negFixIntMask}
	}

	switch b {
	case codeNil:
		return Tag{Kind: KindNil}
	case codeReserved:
		return Tag{Kind: KindReserved}
	case codeFalse:
		return Tag{Kind: KindBool, Arg: 0}
	case codeTrue:
		return Tag{Kind: KindBool, Arg: 1}
	case codeBin8:
		return Tag{Kind: KindBin8}
	case codeBin16:
		return Tag{Kind: KindBin16}
	case codeBin32:
		return Tag{Kind: KindBin32}
	case codeExt8:
		return Tag{Kind: KindExt8}
	case codeExt16:
		return Tag{Kind: KindExt16}
	case codeExt32:
		return Tag{Kind: KindExt32}
	case codeFloat32:
		return Tag{Kind: KindFloat32}
	case codeFloat64:
		return Tag{Kind: KindFloat64}
	case codeUint8:
		return Tag{Kind: KindUint8}
	case codeUint16:
		return Tag{Kind: KindUint16}
	case codeUint32:
		return Tag{Kind: KindUint32}
	case codeUint64:
		return Tag{Kind: KindUint64}
	case codeInt8:
		return Tag{Kind: KindInt8}
	case codeInt16:
		return Tag{Kind: KindInt16}
	case codeInt32:
		return Tag{Kind: KindInt32}
	case codeInt64:
		return Tag{Kind: KindInt64}
	case codeFixExt1:
		return Tag{Kind: KindFixExt1}
	case codeFixExt2:
		return Tag{Kind: KindFixExt2}
	case codeFixExt4:
		return Tag{Kind: KindFixExt4}
	case codeFixExt8:
		return Tag{Kind: KindFixExt8}
	case codeFixExt16:
		return Tag{Kind: KindFixExt16}
	case codeStr8:
		return Tag{Kind: KindStr8}
	case codeStr16:
		return Tag{Kind: KindStr16}
	case codeStr32:
		return Tag{Kind: KindStr32}
	case codeArray16:
		return Tag{Kind: KindArray16}
	case codeArray32:
		return Tag{Kind: KindArray32}
	case codeMap16:
		return Tag{Kind: KindMap16}
	default: // codeMap32
		return Tag{Kind: KindMap32}
	}
}

// HeaderByte encodes the tag back to its header byte. It is the left
// inverse of TagForByte for every byte value.
func (t Tag) HeaderByte() byte {
	switch t.Kind {
	case KindFixInt:
		return t.Arg
	case KindNegFixInt:
		return codeNegFixIntLow | (t.Arg & negFixIntMask)
	case KindFixStr:
		return codeFixStrLow | (t.Arg & fixStrMask)
	case KindFixArray:
		return codeFixArrayLow | (t.Arg & fixContainerMask)
	case KindFixMap:
		return codeFixMapLow | (t.Arg & fixContainerMask)
	case KindBool:
		if t.Arg != 0 {
			return codeTrue
		}
		return codeFalse
	case KindNil:
		return codeNil
	case KindReserved:
		return codeReserved
	case KindBin8:
		return codeBin8
	case KindBin16:
		return codeBin16
	case KindBin32:
		return codeBin32
	case KindExt8:
		return codeExt8
	case KindExt16:
		return codeExt16
	case KindExt32:
		return codeExt32
	case KindFloat32:
		return codeFloat32
	case KindFloat64:
		return codeFloat64
	case KindUint8:
		return codeUint8
	case KindUint16:
		return codeUint16
	case KindUint32:
		return codeUint32
	case KindUint64:
		return codeUint64
	case KindInt8:
		return codeInt8
	case KindInt16:
		return codeInt16
	case KindInt32:
		return codeInt32
	case KindInt64:
		return codeInt64
	case KindFixExt1:
		return codeFixExt1
	case KindFixExt2:
		return codeFixExt2
	case KindFixExt4:
		return codeFixExt4
	case KindFixExt8:
		return codeFixExt8
	case KindFixExt16:
		return codeFixExt16
	case KindStr8:
		return codeStr8
	case KindStr16:
		return codeStr16
	case KindStr32:
		return codeStr32
	case KindArray16:
		return codeArray16
	case KindArray32:
		return codeArray32
	case KindMap16:
		return codeMap16
	default: // KindMap32
		return codeMap32
	}
}

// FixInt returns the integer value inlined in a fixint or negative fixint
// header. The result is meaningful only for those two kinds.
func (t Tag) FixInt() int64 {
	if t.Kind == KindNegFixInt {
		return int64(t.Arg) + minNegFixInt
	}
	return int64(t.Arg)
}

// FixLen returns the length inlined in a fixstr, fixarray or fixmap
// header. The result is meaningful only for those kinds.
func (t Tag) FixLen() int {
	return int(t.Arg)
}

// Bool returns the truth value of a bool header. The result is meaningful
// only for KindBool.
func (t Tag) Bool() bool {
	return t.Arg != 0
}
