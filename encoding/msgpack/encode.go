package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FlatValue is an opaque pre-encoded byte span holding one or more already
// serialized values. It carries no type information; the caller is
// responsible for it being well-formed msgpack and for the enclosing
// container's declared count matching the logical values it represents.
type FlatValue []byte

// Writer appends msgpack-encoded values to an in-memory buffer. The buffer
// is append-only: size-prefixed forms have their size written before their
// payload and nothing is rewritten after the fact.
//
// A Writer is cheap to construct and must not be shared between
// goroutines.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded buffer. The slice aliases the Writer's
// internal storage; the caller must not pack further values while holding
// on to it.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of encoded bytes.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset discards the buffer contents, retaining capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// PackNil appends the nil header.
func (w *Writer) PackNil() {
	w.buf = append(w.buf, codeNil)
}

// PackBool appends a boolean.
func (w *Writer) PackBool(v bool) {
	if v {
		w.buf = append(w.buf, codeTrue)
		return
	}
	w.buf = append(w.buf, codeFalse)
}

// PackInt appends a signed integer using the most compact encoding that
// holds the value exactly. Non-negative values use the same forms as
// PackUint, so two writers given the same logical integer produce the same
// bytes regardless of the Go type it arrived in.
func (w *Writer) PackInt(v int64) {
	if v >= 0 {
		w.PackUint(uint64(v))
		return
	}

	switch {
	case v >= minNegFixInt:
		w.buf = append(w.buf, byte(v))
	case v >= math.MinInt8:
		w.buf = append(w.buf, codeInt8, byte(v))
	case v >= math.MinInt16:
		w.buf = append(w.buf, codeInt16, byte(v>>8), byte(v))
	case v >= math.MinInt32:
		w.buf = appendUint32(append(w.buf, codeInt32), uint32(v))
	default:
		w.buf = appendUint64(append(w.buf, codeInt64), uint64(v))
	}
}

// PackUint appends an unsigned integer using the most compact encoding
// that holds the value exactly.
func (w *Writer) PackUint(v uint64) {
	switch {
	case v <= maxFixInt:
		w.buf = append(w.buf, byte(v))
	case v <= math.MaxUint8:
		w.buf = append(w.buf, codeUint8, byte(v))
	case v <= math.MaxUint16:
		w.buf = append(w.buf, codeUint16, byte(v>>8), byte(v))
	case v <= math.MaxUint32:
		w.buf = appendUint32(append(w.buf, codeUint32), uint32(v))
	default:
		w.buf = appendUint64(append(w.buf, codeUint64), v)
	}
}

// PackFloat32 appends a 32-bit float as its IEEE-754 bit pattern.
func (w *Writer) PackFloat32(v float32) {
	w.buf = appendUint32(append(w.buf, codeFloat32), math.Float32bits(v))
}

// PackFloat64 appends a 64-bit float as its IEEE-754 bit pattern. The
// value is never narrowed to 32 bits to save space.
func (w *Writer) PackFloat64(v float64) {
	w.buf = appendUint64(append(w.buf, codeFloat64), math.Float64bits(v))
}

// PackString appends a UTF-8 string with the smallest length prefix that
// fits, inlining the length into the header for strings of 31 bytes or
// fewer.
func (w *Writer) PackString(s string) error {
	n := len(s)
	switch {
	case n <= maxFixStrLen:
		w.buf = append(w.buf, codeFixStrLow|byte(n))
	case n <= math.MaxUint8:
		w.buf = append(w.buf, codeStr8, byte(n))
	case n <= math.MaxUint16:
		w.buf = append(w.buf, codeStr16, byte(n>>8), byte(n))
	case uint64(n) <= math.MaxUint32:
		w.buf = appendUint32(append(w.buf, codeStr32), uint32(n))
	default:
		return ErrStringTooLarge
	}
	w.buf = append(w.buf, s...)
	return nil
}

// PackBinary appends a binary blob with the smallest length prefix that
// fits. The binary family has no inline form; the shortest header is two
// bytes.
func (w *Writer) PackBinary(p []byte) error {
	n := len(p)
	switch {
	case n <= math.MaxUint8:
		w.buf = append(w.buf, codeBin8, byte(n))
	case n <= math.MaxUint16:
		w.buf = append(w.buf, codeBin16, byte(n>>8), byte(n))
	case uint64(n) <= math.MaxUint32:
		w.buf = appendUint32(append(w.buf, codeBin32), uint32(n))
	default:
		return ErrBinaryTooLarge
	}
	w.buf = append(w.buf, p...)
	return nil
}

// PackArray appends an array header followed by each element through
// PackAny. If any element fails to encode the buffer is restored to its
// state before the call: not even the header is committed.
func (w *Writer) PackArray(items []any) error {
	mark := len(w.buf)
	if err := w.packArrayHeader(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := w.PackAny(item); err != nil {
			w.buf = w.buf[:mark]
			return err
		}
	}
	return nil
}

// PackMap appends a map header followed by alternating key/value pairs
// through PackAny. Pair order follows Go map iteration order. The same
// all-or-nothing guarantee as PackArray applies.
func (w *Writer) PackMap(m map[any]any) error {
	mark := len(w.buf)
	if err := w.packMapHeader(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := w.PackAny(k); err != nil {
			w.buf = w.buf[:mark]
			return err
		}
		if err := w.PackAny(v); err != nil {
			w.buf = w.buf[:mark]
			return err
		}
	}
	return nil
}

// PackAny appends a dynamically-typed value, dispatching on the supported
// union: nil, bool, all Go integer widths, float32/float64, string,
// []byte, []any, and map[string]any / map[any]any. Anything else fails
// with ErrUnsupportedType naming the offending type, with nothing
// committed to the buffer.
func (w *Writer) PackAny(v any) error {
	switch v := v.(type) {
	case nil:
		w.PackNil()
	case bool:
		w.PackBool(v)
	case int:
		w.PackInt(int64(v))
	case int8:
		w.PackInt(int64(v))
	case int16:
		w.PackInt(int64(v))
	case int32:
		w.PackInt(int64(v))
	case int64:
		w.PackInt(v)
	case uint:
		w.PackUint(uint64(v))
	case uint8:
		w.PackUint(uint64(v))
	case uint16:
		w.PackUint(uint64(v))
	case uint32:
		w.PackUint(uint64(v))
	case uint64:
		w.PackUint(v)
	case float32:
		w.PackFloat32(v)
	case float64:
		w.PackFloat64(v)
	case string:
		return w.PackString(v)
	case []byte:
		return w.PackBinary(v)
	case []any:
		return w.PackArray(v)
	case map[any]any:
		return w.PackMap(v)
	case map[string]any:
		return w.packStringMap(v)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}

// PackFlatArray appends an array header declaring count logical elements,
// then splices the given pre-encoded spans verbatim.
//
// This is an unchecked operation: nothing validates that the spliced bytes
// are well-formed or that they amount to count values. It exists so a
// caller can compose a container from sub-messages that were encoded
// ahead of time, without re-decoding them.
func (w *Writer) PackFlatArray(count int, values ...FlatValue) error {
	if err := w.packArrayHeader(count); err != nil {
		return err
	}
	for _, fv := range values {
		w.buf = append(w.buf, fv...)
	}
	return nil
}

// PackFlatMap appends a map header declaring count logical key/value
// pairs, then splices the given pre-encoded spans verbatim. The same
// caller-responsibility contract as PackFlatArray applies.
func (w *Writer) PackFlatMap(count int, values ...FlatValue) error {
	if err := w.packMapHeader(count); err != nil {
		return err
	}
	for _, fv := range values {
		w.buf = append(w.buf, fv...)
	}
	return nil
}

// PackRaw appends arbitrary bytes with no header and no validation. The
// caller is responsible for the bytes being valid msgpack in the position
// they land in.
func (w *Writer) PackRaw(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *Writer) packArrayHeader(n int) error {
	switch {
	case n < 0:
		return ErrNegativeLength
	case n <= maxFixContainer:
		w.buf = append(w.buf, codeFixArrayLow|byte(n))
	case n <= math.MaxUint16:
		w.buf = append(w.buf, codeArray16, byte(n>>8), byte(n))
	case uint64(n) <= math.MaxUint32:
		w.buf = appendUint32(append(w.buf, codeArray32), uint32(n))
	default:
		return ErrArrayTooLarge
	}
	return nil
}

func (w *Writer) packMapHeader(n int) error {
	switch {
	case n < 0:
		return ErrNegativeLength
	case n <= maxFixContainer:
		w.buf = append(w.buf, codeFixMapLow|byte(n))
	case n <= math.MaxUint16:
		w.buf = append(w.buf, codeMap16, byte(n>>8), byte(n))
	case uint64(n) <= math.MaxUint32:
		w.buf = appendUint32(append(w.buf, codeMap32), uint32(n))
	default:
		return ErrMapTooLarge
	}
	return nil
}

func (w *Writer) packStringMap(m map[string]any) error {
	mark := len(w.buf)
	if err := w.packMapHeader(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := w.PackString(k); err != nil {
			w.buf = w.buf[:mark]
			return err
		}
		if err := w.PackAny(v); err != nil {
			w.buf = w.buf[:mark]
			return err
		}
	}
	return nil
}

func appendUint32(p []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(p, v)
}

func appendUint64(p []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(p, v)
}
