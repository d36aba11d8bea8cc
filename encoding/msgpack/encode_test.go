package msgpack

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestWriter_PackInt(t *testing.T) {
	for name, c := range map[string]struct {
		In     int64
		Expect []byte
	}{
		"zero":          {0, []byte{0x00}},
		"fixint/max":    {127, []byte{0x7f}},
		"negfixint/-1":  {-1, []byte{0xff}},
		"negfixint/min": {-32, []byte{0xe0}},
		"uint8/min":     {128, []byte{0xcc, 0x80}},
		"uint8/max":     {255, []byte{0xcc, 0xff}},
		"uint16/min":    {256, []byte{0xcd, 0x01, 0x00}},
		"uint16/max":    {65535, []byte{0xcd, 0xff, 0xff}},
		"uint32/min":    {65536, []byte{0xce, 0x00, 0x01, 0x00, 0x00}},
		"uint32/max":    {math.MaxUint32, []byte{0xce, 0xff, 0xff, 0xff, 0xff}},
		"uint64/min":    {math.MaxUint32 + 1, []byte{0xcf, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
		"int8/max":      {-33, []byte{0xd0, 0xdf}},
		"int8/min":      {-128, []byte{0xd0, 0x80}},
		"int16/max":     {-129, []byte{0xd1, 0xff, 0x7f}},
		"int16/min":     {-32768, []byte{0xd1, 0x80, 0x00}},
		"int32/max":     {-32769, []byte{0xd2, 0xff, 0xff, 0x7f, 0xff}},
		"int32/min":     {math.MinInt32, []byte{0xd2, 0x80, 0x00, 0x00, 0x00}},
		"int64/max":     {math.MinInt32 - 1, []byte{0xd3, 0xff, 0xff, 0xff, 0xff, 0x7f, 0xff, 0xff, 0xff}},
		"int64/min":     {math.MinInt64, []byte{0xd3, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	} {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			w.PackInt(c.In)
			if !bytes.Equal(c.Expect, w.Bytes()) {
				t.Errorf("expect % x, got % x", c.Expect, w.Bytes())
			}
		})
	}
}

func TestWriter_PackUint(t *testing.T) {
	for name, c := range map[string]struct {
		In     uint64
		Expect []byte
	}{
		"zero":       {0, []byte{0x00}},
		"fixint/max": {127, []byte{0x7f}},
		"uint8/min":  {128, []byte{0xcc, 0x80}},
		"uint64/max": {math.MaxUint64, []byte{0xcf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	} {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			w.PackUint(c.In)
			if !bytes.Equal(c.Expect, w.Bytes()) {
				t.Errorf("expect % x, got % x", c.Expect, w.Bytes())
			}
		})
	}
}

func TestWriter_SameIntegerSameBytes(t *testing.T) {
	// The most-compact guarantee makes the encoding a function of the
	// logical value, not the Go type it arrived in.
	w1, w2 := NewWriter(), NewWriter()
	if err := w1.PackAny(int8(100)); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if err := w2.PackAny(uint64(100)); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if !bytes.Equal(w1.Bytes(), w2.Bytes()) {
		t.Errorf("% x != % x", w1.Bytes(), w2.Bytes())
	}
}

func TestWriter_PackFloat(t *testing.T) {
	w := NewWriter()
	w.PackFloat32(1.5)
	expect := []byte{0xca, 0x3f, 0xc0, 0x00, 0x00}
	if !bytes.Equal(expect, w.Bytes()) {
		t.Errorf("expect % x, got % x", expect, w.Bytes())
	}

	w.Reset()
	w.PackFloat64(1.5)
	expect = []byte{0xcb, 0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(expect, w.Bytes()) {
		t.Errorf("expect % x, got % x", expect, w.Bytes())
	}
}

func TestWriter_PackString(t *testing.T) {
	for name, c := range map[string]struct {
		In           string
		ExpectHeader []byte
	}{
		"empty":      {"", []byte{0xa0}},
		"fixstr":     {"hello", []byte{0xa5}},
		"fixstr/max": {strings.Repeat("a", 31), []byte{0xbf}},
		"str8/min":   {strings.Repeat("a", 32), []byte{0xd9, 0x20}},
		"str8/max":   {strings.Repeat("a", 255), []byte{0xd9, 0xff}},
		"str16/min":  {strings.Repeat("a", 256), []byte{0xda, 0x01, 0x00}},
		"str16/max":  {strings.Repeat("a", 65535), []byte{0xda, 0xff, 0xff}},
		"str32/min":  {strings.Repeat("a", 65536), []byte{0xdb, 0x00, 0x01, 0x00, 0x00}},
	} {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			if err := w.PackString(c.In); err != nil {
				t.Fatalf("expect no err, got %v", err)
			}
			expect := append(c.ExpectHeader, c.In...)
			if !bytes.Equal(expect, w.Bytes()) {
				t.Errorf("expect %d bytes with header % x, got % x", len(expect), c.ExpectHeader, w.Bytes()[:len(c.ExpectHeader)])
			}
		})
	}
}

func TestWriter_PackBinary(t *testing.T) {
	for name, c := range map[string]struct {
		In           []byte
		ExpectHeader []byte
	}{
		"empty":     {nil, []byte{0xc4, 0x00}},
		"bin8/max":  {bytes.Repeat([]byte{1}, 255), []byte{0xc4, 0xff}},
		"bin16/min": {bytes.Repeat([]byte{1}, 256), []byte{0xc5, 0x01, 0x00}},
		"bin32/min": {bytes.Repeat([]byte{1}, 65536), []byte{0xc6, 0x00, 0x01, 0x00, 0x00}},
	} {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			if err := w.PackBinary(c.In); err != nil {
				t.Fatalf("expect no err, got %v", err)
			}
			expect := append(c.ExpectHeader, c.In...)
			if !bytes.Equal(expect, w.Bytes()) {
				t.Errorf("expect %d bytes with header % x, got header % x", len(expect), c.ExpectHeader, w.Bytes()[:len(c.ExpectHeader)])
			}
		})
	}
}

func TestWriter_ContainerHeaders(t *testing.T) {
	w := NewWriter()
	if err := w.PackFlatArray(15); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if err := w.PackFlatArray(16); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if err := w.PackFlatMap(15); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if err := w.PackFlatMap(16); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if err := w.PackFlatArray(65536); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	expect := []byte{
		0x9f,
		0xdc, 0x00, 0x10,
		0x8f,
		0xde, 0x00, 0x10,
		0xdd, 0x00, 0x01, 0x00, 0x00,
	}
	if !bytes.Equal(expect, w.Bytes()) {
		t.Errorf("expect % x, got % x", expect, w.Bytes())
	}
}

func TestWriter_NegativeCount(t *testing.T) {
	w := NewWriter()
	if err := w.PackFlatArray(-1); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("expect ErrNegativeLength, got %v", err)
	}
	if err := w.PackFlatMap(-1); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("expect ErrNegativeLength, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expect empty buffer, got % x", w.Bytes())
	}
}

type unsupportedCustomType struct{}

func TestWriter_ArrayAtomicity(t *testing.T) {
	w := NewWriter()
	err := w.PackArray([]any{1, "ok", unsupportedCustomType{}})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expect ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupportedCustomType") {
		t.Errorf("expect offending type in error, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expect untouched buffer, got % x", w.Bytes())
	}
}

func TestWriter_ArrayAtomicityPreservesPrefix(t *testing.T) {
	w := NewWriter()
	w.PackInt(7)
	prefix := append([]byte(nil), w.Bytes()...)

	if err := w.PackArray([]any{nil, unsupportedCustomType{}}); err == nil {
		t.Fatal("expect err")
	}
	if !bytes.Equal(prefix, w.Bytes()) {
		t.Errorf("expect % x, got % x", prefix, w.Bytes())
	}
}

func TestWriter_MapAtomicity(t *testing.T) {
	w := NewWriter()
	err := w.PackMap(map[any]any{"bad": unsupportedCustomType{}})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expect ErrUnsupportedType, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expect untouched buffer, got % x", w.Bytes())
	}

	err = w.PackAny(map[string]any{"bad": unsupportedCustomType{}})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expect ErrUnsupportedType, got %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expect untouched buffer, got % x", w.Bytes())
	}
}

func TestWriter_PackFlatArray(t *testing.T) {
	sub := NewWriter()
	sub.PackInt(1)
	if err := sub.PackString("two"); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}

	w := NewWriter()
	if err := w.PackFlatArray(2, FlatValue(sub.Bytes())); err != nil {
		t.Fatalf("expect no err, got %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadArray()
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if len(got) != 2 || got[0] != int64(1) || got[1] != "two" {
		t.Errorf("expect [1 two], got %v", got)
	}
}

func TestWriter_PackRaw(t *testing.T) {
	w := NewWriter()
	w.PackRaw([]byte{0xc3})
	b, err := NewReader(w.Bytes()).ReadBool()
	if err != nil {
		t.Fatalf("expect no err, got %v", err)
	}
	if !b {
		t.Error("expect true")
	}
}
