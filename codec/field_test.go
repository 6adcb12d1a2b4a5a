// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/tagforge/tagcodec/schema"
)

func roundTripField(t *testing.T, ctx Context, field *schema.Field, value interface{}) interface{} {
	t.Helper()
	c := CoderFor(field.Kind)
	if c == nil {
		t.Fatalf("no coder registered for %q", field.Kind)
	}
	buf := new(bytes.Buffer)
	if err := c.Encode(buf, ctx, field, value); err != nil {
		t.Fatalf("Encode(%q) failed: %v", field.Kind, err)
	}
	if buf.Len() != c.Size() {
		t.Fatalf("%q encoded %d bytes, coder size is %d", field.Kind, buf.Len(), c.Size())
	}
	got, err := c.Decode(bytes.NewReader(buf.Bytes()), ctx, field)
	if err != nil {
		t.Fatalf("Decode(%q) failed: %v", field.Kind, err)
	}
	return got
}

func TestScalarCoderRoundTrip(t *testing.T) {
	ctx := Context{Engine: EngineBLM}
	tests := []struct {
		kind  schema.FieldKind
		value interface{}
	}{
		{schema.KindReal, float64(float32(1.5))},
		{schema.KindRealFraction, float64(float32(0.25))},
		{schema.KindCharInteger, int64(-5)},
		{schema.KindShortInteger, int64(-1234)},
		{schema.KindLongInteger, int64(-123456)},
		{schema.KindByteFlags, int64(0x81 - 0x100)},
		{schema.KindWordFlags, int64(0x4001)},
		{schema.KindLongFlags, int64(0x70000001)},
		{schema.KindShortBlockIndex, int64(-1)},
		{schema.KindLongBlockIndex, int64(42)},
		{schema.KindTag, "bipd"},
		{schema.KindRealBounds, Bounds{Min: -1, Max: 2.5}},
		{schema.KindShortBounds, Bounds{Min: -3, Max: 7}},
		{schema.KindRealVector3D, []float64{1, -2, 3}},
		{schema.KindRealQuaternion, []float64{0, 0, 0, 1}},
		{schema.KindMatrix3x3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}},
		{schema.KindPoint2D, []float64{-4, 9}},
		{schema.KindRealArgbColor, Color{HasAlpha: true, A: 1, R: 0.5, G: 0.25, B: 0}},
		{schema.KindRealRgbColor, Color{R: 0.125, G: 1, B: 0.5}},
		{schema.KindArgbColor, Color{HasAlpha: true, A: 127, R: 64, G: 32, B: 16}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			field := &schema.Field{Name: "f", Kind: tt.kind}
			for _, bigEndian := range []bool{false, true} {
				ctx.BigEndian = bigEndian
				got := roundTripField(t, ctx, field, tt.value)
				if !reflect.DeepEqual(got, tt.value) {
					t.Errorf("bigEndian=%v: got %#v, want %#v", bigEndian, got, tt.value)
				}
			}
		})
	}
}

func TestUnsignedIntegerDecode(t *testing.T) {
	ctx := Context{Engine: EngineBLM}
	signed := &schema.Field{Name: "f", Kind: schema.KindShortInteger}
	unsigned := &schema.Field{Name: "f", Kind: schema.KindShortInteger, Unsigned: true}

	raw := []byte{0xFF, 0xFF}
	got, err := CoderFor(schema.KindShortInteger).Decode(bytes.NewReader(raw), ctx, signed)
	if err != nil {
		t.Fatalf("signed decode failed: %v", err)
	}
	if got.(int64) != -1 {
		t.Errorf("signed decode = %d, want -1", got)
	}
	got, err = CoderFor(schema.KindShortInteger).Decode(bytes.NewReader(raw), ctx, unsigned)
	if err != nil {
		t.Fatalf("unsigned decode failed: %v", err)
	}
	if got.(int64) != 0xFFFF {
		t.Errorf("unsigned decode = %d, want %d", got, 0xFFFF)
	}
}

func TestEndianOverride(t *testing.T) {
	ctx := Context{Engine: EngineBLM, BigEndian: false}
	field := &schema.Field{Name: "f", Kind: schema.KindLongInteger, EndianOverride: ">"}
	buf := new(bytes.Buffer)
	if err := CoderFor(field.Kind).Encode(buf, ctx, field, int64(1)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 1}) {
		t.Errorf("override field bytes = %v, want big-endian 1", buf.Bytes())
	}
}

func TestAngleRadianConversion(t *testing.T) {
	field := &schema.Field{Name: "f", Kind: schema.KindAngle}
	ctx := Context{Engine: EngineBLM, ConvertRadians: true}

	buf := new(bytes.Buffer)
	if err := CoderFor(field.Kind).Encode(buf, ctx, field, float64(180)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	stored := math.Float32frombits(order(false).Uint32(buf.Bytes()))
	if math.Abs(float64(stored)-math.Pi) > 1e-6 {
		t.Errorf("stored radians = %v, want pi", stored)
	}

	got, err := CoderFor(field.Kind).Decode(bytes.NewReader(buf.Bytes()), ctx, field)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if math.Abs(got.(float64)-180) > 1e-4 {
		t.Errorf("decoded degrees = %v, want 180", got)
	}

	// with conversion off the raw radian value passes through
	ctx.ConvertRadians = false
	got, err = CoderFor(field.Kind).Decode(bytes.NewReader(buf.Bytes()), ctx, field)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if math.Abs(got.(float64)-math.Pi) > 1e-6 {
		t.Errorf("raw decode = %v, want pi", got)
	}
}

func TestEnumCoder(t *testing.T) {
	ctx := Context{Engine: EngineBLM}
	field := &schema.Field{
		Name:        "response type",
		Kind:        schema.KindShortEnum,
		EnumOptions: []string{"shielded", "unshielded", "all"},
	}
	got := roundTripField(t, ctx, field, EnumValue{Value: 2})
	ev := got.(EnumValue)
	if ev.Value != 2 {
		t.Errorf("enum value = %d, want 2", ev.Value)
	}
	if ev.ValueName != "all" {
		t.Errorf("enum value name = %q, want %q", ev.ValueName, "all")
	}

	// out-of-range values keep their integer and get no label
	got = roundTripField(t, ctx, field, EnumValue{Value: 9})
	if ev := got.(EnumValue); ev.Value != 9 || ev.ValueName != "" {
		t.Errorf("out-of-range enum = %+v", ev)
	}
}

// Negative zero must survive a float round trip bit-for-bit; the
// decoder keeps the sign natively rather than via a sentinel.
func TestNegativeZeroPreserved(t *testing.T) {
	ctx := Context{Engine: EngineBLM}
	field := &schema.Field{Name: "f", Kind: schema.KindReal}
	negZero := math.Copysign(0, -1)

	got := roundTripField(t, ctx, field, negZero)
	f := got.(float64)
	if f != 0 || !math.Signbit(f) {
		t.Errorf("negative zero not preserved: got %v (signbit %v)", f, math.Signbit(f))
	}
	if !IsNegativeZero(f) {
		t.Error("IsNegativeZero must report the decoded value")
	}
	if IsNegativeZero(0) {
		t.Error("IsNegativeZero must reject +0")
	}
}

func TestVariableStringRoundTrip(t *testing.T) {
	ctx := Context{Engine: EngineBLM}

	buf := new(bytes.Buffer)
	WriteVariableString(buf, "grunt", nil, 32, ctx, 1, false)
	if buf.Len() != 32 {
		t.Fatalf("fixed string encoded %d bytes, want 32", buf.Len())
	}
	s, raw, err := ReadVariableString(bytes.NewReader(buf.Bytes()), 32, ctx, 1, false)
	if err != nil {
		t.Fatalf("ReadVariableString failed: %v", err)
	}
	if raw != nil || s != "grunt" {
		t.Errorf("decoded %q (raw %v), want %q", s, raw, "grunt")
	}

	// preserved strings round-trip raw bytes untouched
	ctx.PreserveStrings = true
	s, raw, err = ReadVariableString(bytes.NewReader(buf.Bytes()), 32, ctx, 1, false)
	if err != nil {
		t.Fatalf("ReadVariableString failed: %v", err)
	}
	if s != "" || len(raw) != 32 {
		t.Fatalf("preserve decode: s=%q len(raw)=%d", s, len(raw))
	}
	out := new(bytes.Buffer)
	WriteVariableString(out, "", raw, 32, ctx, 1, false)
	if !bytes.Equal(out.Bytes(), buf.Bytes()) {
		t.Error("preserved bytes did not round trip")
	}
}

func TestVariableStringAppendTerminator(t *testing.T) {
	ctx := Context{Engine: EngineBLM}
	path := "objects\\weapons\\rifle\\rifle"

	buf := new(bytes.Buffer)
	WriteVariableString(buf, path, nil, len(path), ctx, 1, true)
	if buf.Len() != len(path)+1 {
		t.Fatalf("path encoded %d bytes, want %d", buf.Len(), len(path)+1)
	}
	if buf.Bytes()[len(path)] != 0 {
		t.Error("path terminator byte missing")
	}
	s, _, err := ReadVariableString(bytes.NewReader(buf.Bytes()), len(path), ctx, 1, true)
	if err != nil {
		t.Fatalf("ReadVariableString failed: %v", err)
	}
	if s != path {
		t.Errorf("decoded %q, want %q", s, path)
	}

	// zero-length paths carry no terminator either
	empty := new(bytes.Buffer)
	WriteVariableString(empty, "", nil, 0, ctx, 1, true)
	if empty.Len() != 0 {
		t.Errorf("empty path encoded %d bytes, want 0", empty.Len())
	}
}
