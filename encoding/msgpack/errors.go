package msgpack

import "errors"

// Writer-side errors. All are raised before any bytes for the offending
// value are committed to the buffer, so the caller can recover and retry.
var (
	// ErrStringTooLarge indicates a string whose UTF-8 length exceeds the
	// 32-bit length prefix of the str32 form.
	ErrStringTooLarge = errors.New("msgpack: string exceeds maximum encodable length")

	// ErrBinaryTooLarge indicates a binary blob longer than the bin32 form
	// can describe.
	ErrBinaryTooLarge = errors.New("msgpack: binary exceeds maximum encodable length")

	// ErrArrayTooLarge indicates an array element count beyond the array32
	// form.
	ErrArrayTooLarge = errors.New("msgpack: array exceeds maximum encodable length")

	// ErrMapTooLarge indicates a map pair count beyond the map32 form.
	ErrMapTooLarge = errors.New("msgpack: map exceeds maximum encodable length")

	// ErrNegativeLength indicates a negative element count passed to a flat
	// container pack.
	ErrNegativeLength = errors.New("msgpack: negative length")

	// ErrUnsupportedType indicates a value outside the dynamic-value union
	// handled by PackAny.
	ErrUnsupportedType = errors.New("msgpack: unsupported type")
)

// Reader-side errors. Any failure poisons the Reader: the cursor position
// is no longer meaningful and every subsequent call returns the first
// error.
var (
	// ErrUnexpectedEnd indicates a read that would advance past the end of
	// the message.
	ErrUnexpectedEnd = errors.New("msgpack: unexpected end of message")

	// ErrUnknownType indicates a header byte with no assigned meaning in
	// the format (the reserved byte 0xc1).
	ErrUnknownType = errors.New("msgpack: unknown type")

	// ErrTypeMismatch indicates a header of the wrong category for the
	// requested read.
	ErrTypeMismatch = errors.New("msgpack: type mismatch")

	// ErrOutOfRange indicates a decoded value that does not fit losslessly
	// in the requested numeric type, including sign mismatches.
	ErrOutOfRange = errors.New("msgpack: value out of range for requested type")

	// ErrUnhashableKey indicates a decoded map key that cannot be used as a
	// Go map key (arrays, maps and binary blobs).
	ErrUnhashableKey = errors.New("msgpack: map key is not hashable")

	// ErrInvalidUTF8 indicates string payload bytes that are not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("msgpack: string payload is not valid UTF-8")

	// ErrNotImplemented indicates an extension-family header. The tag table
	// recognizes the extension forms but their payloads are not
	// implemented.
	ErrNotImplemented = errors.New("msgpack: extension types are not implemented")
)
