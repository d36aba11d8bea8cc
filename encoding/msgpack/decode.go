package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Preallocation cap for decoded containers; the declared count of a
// foreign message is not trusted for allocation sizing.
const maxPrealloc = 0xff

// Reader consumes a msgpack message strictly in the order it was written.
// There is no seeking and no field naming; the schema is positional.
//
// The first failed read poisons the Reader: the cursor position is no
// longer meaningful and every subsequent call returns the original error.
// A poisoned Reader must be discarded.
//
// A Reader is cheap to construct and must not be shared between
// goroutines.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader positioned at the start of p. The Reader
// aliases p; the caller must not mutate it while reading.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// Err returns the error that poisoned the Reader, or nil if it is still
// live.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return err
}

func (r *Reader) readByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, r.fail(ErrUnexpectedEnd)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *Reader) readN(n int) ([]byte, error) {
	if len(r.buf)-r.off < n {
		return nil, r.fail(ErrUnexpectedEnd)
	}
	p := r.buf[r.off : r.off+n]
	r.off += n
	return p, nil
}

func (r *Reader) readTag() (Tag, error) {
	b, err := r.readByte()
	if err != nil {
		return Tag{}, err
	}
	return TagForByte(b), nil
}

// PeekByte returns the next header byte without advancing the cursor.
func (r *Reader) PeekByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.off >= len(r.buf) {
		return 0, r.fail(ErrUnexpectedEnd)
	}
	return r.buf[r.off], nil
}

// TryReadNil consumes a nil header if one is next and reports whether it
// did. It is the only read that can decline without error: on any other
// header, or at the end of the message, the cursor is left untouched.
func (r *Reader) TryReadNil() bool {
	if r.err != nil || r.off >= len(r.buf) {
		return false
	}
	if r.buf[r.off] == codeNil {
		r.off++
		return true
	}
	return false
}

// ReadBool reads a boolean.
func (r *Reader) ReadBool() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return false, err
	}
	if t.Kind != KindBool {
		return false, r.fail(fmt.Errorf("%w: expected bool, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
	return t.Bool(), nil
}

// readInteger decodes any integer form to sign-and-magnitude. A negative
// result always has neg set, with mag holding the absolute value; the
// magnitude of math.MinInt64 fits uint64 exactly.
func (r *Reader) readInteger() (neg bool, mag uint64, err error) {
	t, err := r.readTag()
	if err != nil {
		return false, 0, err
	}

	switch t.Kind {
	case KindFixInt:
		return false, uint64(t.Arg), nil
	case KindNegFixInt:
		return true, uint64(-t.FixInt()), nil
	case KindUint8, KindUint16, KindUint32, KindUint64:
		u, err := r.readUintPayload(t.Kind)
		if err != nil {
			return false, 0, err
		}
		return false, u, nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		i, err := r.readIntPayload(t.Kind)
		if err != nil {
			return false, 0, err
		}
		if i < 0 {
			// Negating in uint64 space is exact even for MinInt64.
			return true, -uint64(i), nil
		}
		return false, uint64(i), nil
	default:
		return false, 0, r.fail(fmt.Errorf("%w: expected integer, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

func (r *Reader) readUintPayload(k Kind) (uint64, error) {
	switch k {
	case KindUint8:
		b, err := r.readByte()
		return uint64(b), err
	case KindUint16:
		p, err := r.readN(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(p)), nil
	case KindUint32:
		p, err := r.readN(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(p)), nil
	default: // KindUint64
		p, err := r.readN(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(p), nil
	}
}

func (r *Reader) readIntPayload(k Kind) (int64, error) {
	switch k {
	case KindInt8:
		b, err := r.readByte()
		return int64(int8(b)), err
	case KindInt16:
		p, err := r.readN(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(p))), nil
	case KindInt32:
		p, err := r.readN(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(p))), nil
	default: // KindInt64
		p, err := r.readN(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(p)), nil
	}
}

// readIntBits reads any integer form and checks it fits losslessly in a
// signed integer of the given bit width.
func (r *Reader) readIntBits(bits uint) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	neg, mag, err := r.readInteger()
	if err != nil {
		return 0, err
	}
	if neg {
		if mag > 1<<(bits-1) {
			return 0, r.fail(fmt.Errorf("%w: -%d does not fit int%d", ErrOutOfRange, mag, bits))
		}
		return -int64(mag), nil
	}
	if mag > 1<<(bits-1)-1 {
		return 0, r.fail(fmt.Errorf("%w: %d does not fit int%d", ErrOutOfRange, mag, bits))
	}
	return int64(mag), nil
}

// readUintBits reads any integer form and checks it fits losslessly in an
// unsigned integer of the given bit width. Negative wire values always
// fail, whatever the width.
func (r *Reader) readUintBits(bits uint) (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	neg, mag, err := r.readInteger()
	if err != nil {
		return 0, err
	}
	if neg {
		return 0, r.fail(fmt.Errorf("%w: -%d is negative, requested unsigned", ErrOutOfRange, mag))
	}
	if bits < 64 && mag > 1<<bits-1 {
		return 0, r.fail(fmt.Errorf("%w: %d does not fit uint%d", ErrOutOfRange, mag, bits))
	}
	return mag, nil
}

// ReadInt64 reads any integer form as int64, failing with ErrOutOfRange
// if the wire value does not fit.
func (r *Reader) ReadInt64() (int64, error) {
	return r.readIntBits(64)
}

// ReadInt32 reads any integer form as int32 with an exact-fit check.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.readIntBits(32)
	return int32(v), err
}

// ReadInt16 reads any integer form as int16 with an exact-fit check.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.readIntBits(16)
	return int16(v), err
}

// ReadInt8 reads any integer form as int8 with an exact-fit check.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.readIntBits(8)
	return int8(v), err
}

// ReadInt reads any integer form as int with an exact-fit check.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.readIntBits(uint(intSize))
	return int(v), err
}

// ReadUint64 reads any integer form as uint64, failing with ErrOutOfRange
// for negative wire values.
func (r *Reader) ReadUint64() (uint64, error) {
	return r.readUintBits(64)
}

// ReadUint32 reads any integer form as uint32 with an exact-fit check.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.readUintBits(32)
	return uint32(v), err
}

// ReadUint16 reads any integer form as uint16 with an exact-fit check.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.readUintBits(16)
	return uint16(v), err
}

// ReadUint8 reads any integer form as uint8 with an exact-fit check.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.readUintBits(8)
	return uint8(v), err
}

// ReadUint reads any integer form as uint with an exact-fit check.
func (r *Reader) ReadUint() (uint, error) {
	v, err := r.readUintBits(uint(intSize))
	return uint(v), err
}

// ReadFloat32 reads a 32-bit float. A value encoded as a 64-bit float
// fails with ErrOutOfRange rather than being narrowed, mirroring the
// writer's no-narrowing policy.
func (r *Reader) ReadFloat32() (float32, error) {
	if r.err != nil {
		return 0, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case KindFloat32:
		p, err := r.readN(4)
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(p)), nil
	case KindFloat64:
		return 0, r.fail(fmt.Errorf("%w: float64 wire value cannot narrow to float32", ErrOutOfRange))
	default:
		return 0, r.fail(fmt.Errorf("%w: expected float, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

// ReadFloat64 reads a float, transparently widening a 32-bit wire value.
func (r *Reader) ReadFloat64() (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case KindFloat32:
		p, err := r.readN(4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(p))), nil
	case KindFloat64:
		p, err := r.readN(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(p)), nil
	default:
		return 0, r.fail(fmt.Errorf("%w: expected float, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

// ReadString reads a string of any string form and validates it is UTF-8.
func (r *Reader) ReadString() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	t, err := r.readTag()
	if err != nil {
		return "", err
	}
	n, err := r.stringLen(t)
	if err != nil {
		return "", err
	}
	p, err := r.readN(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", r.fail(ErrInvalidUTF8)
	}
	return string(p), nil
}

// ReadBinary reads a binary blob of any binary form. The returned slice
// aliases the message buffer.
func (r *Reader) ReadBinary() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return nil, err
	}
	var n int
	switch t.Kind {
	case KindBin8, KindBin16, KindBin32:
		n, err = r.lenPayload(t.Kind)
	default:
		return nil, r.fail(fmt.Errorf("%w: expected binary, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
	if err != nil {
		return nil, err
	}
	return r.readN(n)
}

// ReadArrayHeader reads an array header and returns the declared element
// count without consuming any elements. The caller is expected to read
// exactly that many values.
func (r *Reader) ReadArrayHeader() (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case KindFixArray:
		return t.FixLen(), nil
	case KindArray16, KindArray32:
		return r.lenPayload(t.Kind)
	default:
		return 0, r.fail(fmt.Errorf("%w: expected array, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

// ReadMapHeader reads a map header and returns the declared pair count
// without consuming any pairs. The caller is expected to read exactly that
// many alternating keys and values.
func (r *Reader) ReadMapHeader() (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case KindFixMap:
		return t.FixLen(), nil
	case KindMap16, KindMap32:
		return r.lenPayload(t.Kind)
	default:
		return 0, r.fail(fmt.Errorf("%w: expected map, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

// ReadArrayFunc reads an array header and invokes elem once per declared
// element. The closure must consume exactly one logical value per call.
func (r *Reader) ReadArrayFunc(elem func(*Reader) error) error {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := elem(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadMapFunc reads a map header and invokes pair once per declared pair.
// The closure must consume exactly one key and one value per call.
func (r *Reader) ReadMapFunc(pair func(*Reader) error) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := pair(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadArray reads an array and reconstructs every element through
// ReadAny.
func (r *Reader) ReadArray() ([]any, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, minInt(n, maxPrealloc))
	for i := 0; i < n; i++ {
		v, err := r.ReadAny()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// ReadMap reads a map and reconstructs every pair through ReadAny. A key
// whose wire form is an array, a map or a binary blob fails with
// ErrUnhashableKey: none of those can be a Go map key.
func (r *Reader) ReadMap() (map[any]any, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	m := make(map[any]any, minInt(n, maxPrealloc))
	for i := 0; i < n; i++ {
		b, err := r.PeekByte()
		if err != nil {
			return nil, err
		}
		if k := TagForByte(b).Kind; k.IsArray() || k.IsMap() || k.IsBinary() {
			return nil, r.fail(fmt.Errorf("%w: %s", ErrUnhashableKey, kindName(k)))
		}
		key, err := r.ReadAny()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadAny()
		if err != nil {
			return nil, err
		}
		m[key] = value
	}
	return m, nil
}

// ReadAny reads the next value of whatever type is on the wire and
// reconstructs it as the dynamic union: nil, bool, int64, uint64,
// float32, float64, string, []byte, []any or map[any]any.
//
// Integers are widened to int64 regardless of their encoded width, with
// uint64 used only for values above the int64 range. The writer's chosen
// width is not recoverable from a generic read; callers that need the
// width must use the typed reads.
func (r *Reader) ReadAny() (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, err := r.PeekByte()
	if err != nil {
		return nil, err
	}

	t := TagForByte(b)
	switch {
	case t.Kind == KindNil:
		r.off++
		return nil, nil
	case t.Kind == KindBool:
		return r.ReadBool()
	case t.Kind.IsInteger():
		neg, mag, err := r.readInteger()
		if err != nil {
			return nil, err
		}
		if neg {
			if mag == 1<<63 {
				return int64(math.MinInt64), nil
			}
			return -int64(mag), nil
		}
		if mag > math.MaxInt64 {
			return mag, nil
		}
		return int64(mag), nil
	case t.Kind == KindFloat32:
		return r.ReadFloat32()
	case t.Kind == KindFloat64:
		return r.ReadFloat64()
	case t.Kind.IsString():
		return r.ReadString()
	case t.Kind.IsBinary():
		return r.ReadBinary()
	case t.Kind.IsArray():
		return r.ReadArray()
	case t.Kind.IsMap():
		return r.ReadMap()
	case t.Kind.IsExt():
		return nil, r.fail(fmt.Errorf("%w: %s", ErrNotImplemented, kindName(t.Kind)))
	default: // KindReserved
		return nil, r.fail(fmt.Errorf("%w: header byte %#02x", ErrUnknownType, b))
	}
}

// UnsafeReadRaw advances the cursor past n bytes and returns them with no
// tag interpretation, for manual or partial parsing. The returned slice
// aliases the message buffer.
func (r *Reader) UnsafeReadRaw(n int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if n < 0 {
		return nil, r.fail(ErrNegativeLength)
	}
	return r.readN(n)
}

// stringLen resolves the payload length of any string form.
func (r *Reader) stringLen(t Tag) (int, error) {
	switch t.Kind {
	case KindFixStr:
		return t.FixLen(), nil
	case KindStr8, KindStr16, KindStr32:
		return r.lenPayload(t.Kind)
	default:
		return 0, r.fail(fmt.Errorf("%w: expected string, found %s", ErrTypeMismatch, kindName(t.Kind)))
	}
}

// lenPayload reads the 8/16/32-bit big-endian length argument that
// follows a size-prefixed header.
func (r *Reader) lenPayload(k Kind) (int, error) {
	switch k {
	case KindStr8, KindBin8:
		b, err := r.readByte()
		return int(b), err
	case KindStr16, KindBin16, KindArray16, KindMap16:
		p, err := r.readN(2)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint16(p)), nil
	default: // KindStr32, KindBin32, KindArray32, KindMap32
		p, err := r.readN(4)
		if err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint32(p)
		if uint64(n) > uint64(maxInt) {
			return 0, r.fail(fmt.Errorf("%w: length %d overflows int", ErrOutOfRange, n))
		}
		return int(n), nil
	}
}

const (
	intSize = 32 << (^uint(0) >> 63)
	maxInt  = 1<<(intSize-1) - 1
)

func minInt(i, j int) int {
	if i < j {
		return i
	}
	return j
}

func kindName(k Kind) string {
	switch {
	case k == KindNil:
		return "nil"
	case k == KindBool:
		return "bool"
	case k.IsUnsigned():
		return "unsigned integer"
	case k.IsSigned():
		return "integer"
	case k.IsFloat():
		return "float"
	case k.IsString():
		return "string"
	case k.IsBinary():
		return "binary"
	case k.IsArray():
		return "array"
	case k.IsMap():
		return "map"
	case k.IsExt():
		return "extension"
	default:
		return "reserved"
	}
}
