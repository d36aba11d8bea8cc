// Package event defines the log event model and its wire encoding.
//
// Events encode as a positional msgpack array; there is no field naming on
// the wire and a decoder must consume fields in exactly the order the
// encoder wrote them.
package event

import (
	"fmt"
	"time"

	"github.com/logpack/logpack-go/encoding/msgpack"
)

// Level is the severity of a log event.
type Level int8

// Event severities, ordered from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// ParseLevel resolves an upper-case level name.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return 0, fmt.Errorf("event: unknown level %q", s)
}

// Event is one structured log record.
type Event struct {
	// Time is the moment the event was recorded. It travels on the wire
	// as Unix milliseconds; sub-millisecond precision is not preserved.
	Time time.Time

	Level   Level
	Scope   string
	Message string

	// Metadata carries arbitrary structured context. Values are limited
	// to the dynamic union the codec supports.
	Metadata map[string]any

	// Attachment is an optional raw binary payload.
	Attachment []byte
}

// Field count of the positional wire schema.
const wireFields = 6

// Encode appends the event to w. On failure nothing is committed to w:
// the event body is assembled separately and spliced in as one pre-encoded
// span.
func (e *Event) Encode(w *msgpack.Writer) error {
	body := msgpack.NewWriter()
	body.PackInt(e.Time.UnixMilli())
	body.PackInt(int64(e.Level))
	if err := body.PackString(e.Scope); err != nil {
		return fmt.Errorf("encode scope: %w", err)
	}
	if err := body.PackString(e.Message); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if e.Metadata == nil {
		body.PackNil()
	} else if err := body.PackAny(e.Metadata); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if e.Attachment == nil {
		body.PackNil()
	} else if err := body.PackBinary(e.Attachment); err != nil {
		return fmt.Errorf("encode attachment: %w", err)
	}

	return w.PackFlatArray(wireFields, msgpack.FlatValue(body.Bytes()))
}

// Decode reads one event from r.
func Decode(r *msgpack.Reader) (Event, error) {
	var e Event

	n, err := r.ReadArrayHeader()
	if err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if n != wireFields {
		return Event{}, fmt.Errorf("decode event: expected %d fields, got %d", wireFields, n)
	}

	ms, err := r.ReadInt64()
	if err != nil {
		return Event{}, fmt.Errorf("decode time: %w", err)
	}
	e.Time = time.UnixMilli(ms).UTC()

	lv, err := r.ReadInt8()
	if err != nil {
		return Event{}, fmt.Errorf("decode level: %w", err)
	}
	if lv < int8(LevelDebug) || lv > int8(LevelCritical) {
		return Event{}, fmt.Errorf("decode level: unknown level %d", lv)
	}
	e.Level = Level(lv)

	if e.Scope, err = r.ReadString(); err != nil {
		return Event{}, fmt.Errorf("decode scope: %w", err)
	}
	if e.Message, err = r.ReadString(); err != nil {
		return Event{}, fmt.Errorf("decode message: %w", err)
	}

	if !r.TryReadNil() {
		e.Metadata = map[string]any{}
		err := r.ReadMapFunc(func(r *msgpack.Reader) error {
			k, err := r.ReadString()
			if err != nil {
				return err
			}
			v, err := r.ReadAny()
			if err != nil {
				return err
			}
			e.Metadata[k] = v
			return nil
		})
		if err != nil {
			return Event{}, fmt.Errorf("decode metadata: %w", err)
		}
	}

	if !r.TryReadNil() {
		p, err := r.ReadBinary()
		if err != nil {
			return Event{}, fmt.Errorf("decode attachment: %w", err)
		}
		e.Attachment = append([]byte(nil), p...)
	}

	return e, nil
}

// EncodeBatch encodes events as one msgpack array. Each event is encoded
// independently and the bodies are spliced under a single header, so a
// failing event is reported before any bytes are produced.
func EncodeBatch(events []Event) ([]byte, error) {
	bodies := make([]msgpack.FlatValue, 0, len(events))
	for i := range events {
		body := msgpack.NewWriter()
		if err := events[i].Encode(body); err != nil {
			return nil, fmt.Errorf("encode event %d: %w", i, err)
		}
		bodies = append(bodies, msgpack.FlatValue(body.Bytes()))
	}

	w := msgpack.NewWriter()
	if err := w.PackFlatArray(len(events), bodies...); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeBatch decodes an array of events produced by EncodeBatch.
func DecodeBatch(p []byte) ([]Event, error) {
	r := msgpack.NewReader(p)

	var events []Event
	err := r.ReadArrayFunc(func(r *msgpack.Reader) error {
		e, err := Decode(r)
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
