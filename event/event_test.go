package event

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/logpack/logpack-go/encoding/msgpack"
)

func TestEvent_RoundTrip(t *testing.T) {
	for name, c := range map[string]struct {
		In     Event
		Expect Event
	}{
		"full": {
			In: Event{
				Time:    time.UnixMilli(1700000000123).UTC(),
				Level:   LevelError,
				Scope:   "checkout",
				Message: "payment declined",
				Metadata: map[string]any{
					"attempt": 3,
					"user":    "alice",
					"tags":    []any{"billing", "retry"},
				},
				Attachment: []byte{0xde, 0xad},
			},
			Expect: Event{
				Time:    time.UnixMilli(1700000000123).UTC(),
				Level:   LevelError,
				Scope:   "checkout",
				Message: "payment declined",
				Metadata: map[string]any{
					"attempt": int64(3),
					"user":    "alice",
					"tags":    []any{"billing", "retry"},
				},
				Attachment: []byte{0xde, 0xad},
			},
		},
		"minimal": {
			In: Event{
				Time:    time.UnixMilli(1).UTC(),
				Level:   LevelDebug,
				Message: "hi",
			},
			Expect: Event{
				Time:    time.UnixMilli(1).UTC(),
				Level:   LevelDebug,
				Message: "hi",
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			w := msgpack.NewWriter()
			if err := c.In.Encode(w); err != nil {
				t.Fatalf("expect no err, got %v", err)
			}

			r := msgpack.NewReader(w.Bytes())
			got, err := Decode(r)
			if err != nil {
				t.Fatalf("expect no err, got %v", err)
			}
			if r.Remaining() != 0 {
				t.Errorf("didn't consume whole buffer, %d bytes left", r.Remaining())
			}
			if diff := cmp.Diff(c.Expect, got); diff != "" {
				t.Errorf("event mismatch (-expect +got):\n%s", diff)
			}
		})
	}
}

func TestEvent_EncodeAtomic(t *testing.T) {
	w := msgpack.NewWriter()
	w.PackInt(1)
	mark := w.Len()

	e := Event{
		Time:     time.Now(),
		Message:  "bad metadata",
		Metadata: map[string]any{"ch": make(chan int)},
	}
	err := e.Encode(w)
	if !errors.Is(err, msgpack.ErrUnsupportedType) {
		t.Errorf("expect ErrUnsupportedType, got %v", err)
	}
	if w.Len() != mark {
		t.Errorf("expect untouched buffer, got %d bytes", w.Len())
	}
}

func TestEvent_DecodeWrongShape(t *testing.T) {
	w := msgpack.NewWriter()
	if err := w.PackArray([]any{1, 2}); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	_, err := Decode(msgpack.NewReader(w.Bytes()))
	if err == nil || !strings.Contains(err.Error(), "expected 6 fields") {
		t.Errorf("expect field count error, got %v", err)
	}

	w.Reset()
	if err := w.PackString("not an event"); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if _, err := Decode(msgpack.NewReader(w.Bytes())); !errors.Is(err, msgpack.ErrTypeMismatch) {
		t.Errorf("expect ErrTypeMismatch, got %v", err)
	}
}

func TestEvent_DecodeUnknownLevel(t *testing.T) {
	e := Event{Time: time.UnixMilli(0), Level: Level(9), Message: "m"}
	w := msgpack.NewWriter()
	if err := e.Encode(w); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	_, err := Decode(msgpack.NewReader(w.Bytes()))
	if err == nil || !strings.Contains(err.Error(), "unknown level 9") {
		t.Errorf("expect level error, got %v", err)
	}
}

func TestBatch_RoundTrip(t *testing.T) {
	events := []Event{
		{Time: time.UnixMilli(10).UTC(), Level: LevelInfo, Scope: "a", Message: "one"},
		{Time: time.UnixMilli(20).UTC(), Level: LevelWarn, Scope: "b", Message: "two",
			Metadata: map[string]any{"n": int64(1)}},
	}

	p, err := EncodeBatch(events)
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}

	got, err := DecodeBatch(p)
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("batch mismatch (-expect +got):\n%s", diff)
	}
}

func TestBatch_Empty(t *testing.T) {
	p, err := EncodeBatch(nil)
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}

	got, err := DecodeBatch(p)
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expect no events, got %v", got)
	}
}

func TestLevel_Parse(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical} {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Errorf("expect no err, got %v", err)
		}
		if got != l {
			t.Errorf("expect %v, got %v", l, got)
		}
	}
	if _, err := ParseLevel("LOUD"); err == nil {
		t.Error("expect err")
	}
}
