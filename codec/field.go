// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tagforge/tagcodec/schema"
)

// FieldCoder decodes and encodes one fixed-width leaf FieldKind's
// on-disk bytes to and from its Go value representation. The split
// mirrors the dispatch-table shape of a col-oriented binary coder:
// one small type per kind instead of one long branch chain, so adding
// a kind means adding a coder, not editing a switch everyone else
// touches.
//
// Kinds that pull bytes from the resource stream (strings, tag
// references, data blobs) or that nest their own field sets (Block,
// Struct) are walked by the tag package instead; CoderFor returns nil
// for those.
type FieldCoder interface {
	// Size returns the coder's fixed inline byte size.
	Size() int
	// Decode reads one value of this kind from r.
	Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error)
	// Encode appends one value of this kind's bytes to buf.
	Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error
}

// coders is the FieldKind -> FieldCoder dispatch table for the
// fixed-width inline kinds.
var coders = map[schema.FieldKind]FieldCoder{
	schema.KindAngle:        realCoder{angle: true},
	schema.KindReal:         realCoder{},
	schema.KindRealFraction: realCoder{},

	schema.KindCharInteger:  intCoder{width: 1},
	schema.KindShortInteger: intCoder{width: 2},
	schema.KindLongInteger:  intCoder{width: 4},
	schema.KindByteFlags:    intCoder{width: 1},
	schema.KindWordFlags:    intCoder{width: 2},
	schema.KindLongFlags:    intCoder{width: 4},

	schema.KindCharBlockIndex:        intCoder{width: 1},
	schema.KindShortBlockIndex:       intCoder{width: 2},
	schema.KindLongBlockIndex:        intCoder{width: 4},
	schema.KindCustomShortBlockIndex: intCoder{width: 2},
	schema.KindCustomLongBlockIndex:  intCoder{width: 4},

	schema.KindCharEnum:  enumCoder{width: 1},
	schema.KindShortEnum: enumCoder{width: 2},
	schema.KindLongEnum:  enumCoder{width: 4},

	schema.KindAngleBounds:        boundsCoder{width: 4, angle: true},
	schema.KindRealBounds:         boundsCoder{width: 4},
	schema.KindShortBounds:        boundsCoder{width: 2},
	schema.KindRealFractionBounds: boundsCoder{width: 4},

	schema.KindPoint2D:     vectorCoder{width: 2, count: 2},
	schema.KindRectangle2D: vectorCoder{width: 2, count: 4},
	schema.KindRealPoint2D: vectorCoder{width: 4, count: 2},
	schema.KindRealPoint3D: vectorCoder{width: 4, count: 3},

	schema.KindRealVector2D:      vectorCoder{width: 4, count: 2},
	schema.KindRealVector3D:      vectorCoder{width: 4, count: 3},
	schema.KindRealPlane2D:       vectorCoder{width: 4, count: 3},
	schema.KindRealPlane3D:       vectorCoder{width: 4, count: 4},
	schema.KindRealEulerAngles2D: vectorCoder{width: 4, count: 2, angle: true},
	schema.KindRealEulerAngles3D: vectorCoder{width: 4, count: 3, angle: true},
	schema.KindRealQuaternion:    vectorCoder{width: 4, count: 4},
	schema.KindMatrix3x3:         vectorCoder{width: 4, count: 9},

	schema.KindArgbColor:     colorCoder{width: 1, hasAlpha: true},
	schema.KindRealRgbColor:  colorCoder{width: 4},
	schema.KindRealArgbColor: colorCoder{width: 4, hasAlpha: true},

	schema.KindTag: tagCoder{},
}

// CoderFor returns the registered FieldCoder for kind, or nil if kind
// is composite or resource-backed and handled by the tag walker.
func CoderFor(kind schema.FieldKind) FieldCoder {
	return coders[kind]
}

// FieldOrder resolves the byte order in force for one field: its own
// endian override when declared, the file-wide order otherwise.
func FieldOrder(ctx Context, field *schema.Field) binary.ByteOrder {
	if field != nil {
		switch field.EndianOverride {
		case "<":
			return binary.LittleEndian
		case ">":
			return binary.BigEndian
		}
	}
	return order(ctx.BigEndian)
}

func readExact(r *bytes.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := r.Read(buf)
	if err != nil {
		return nil, err
	}
	for got < n {
		m, err := r.Read(buf[got:])
		if m == 0 && err != nil {
			return nil, err
		}
		got += m
	}
	return buf, nil
}

// --- scalar coders ---

type realCoder struct{ angle bool }

func (realCoder) Size() int { return 4 }
func (c realCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	raw, err := readExact(r, 4)
	if err != nil {
		return float64(0), err
	}
	v := float64(math.Float32frombits(FieldOrder(ctx, field).Uint32(raw)))
	if c.angle && ctx.ConvertRadians {
		v = radToDeg(v)
	}
	return v, nil
}
func (c realCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	f, _ := toFloat(value)
	if c.angle && ctx.ConvertRadians {
		f = degToRad(f)
	}
	var b [4]byte
	FieldOrder(ctx, field).PutUint32(b[:], math.Float32bits(float32(f)))
	buf.Write(b[:])
	return nil
}

func radToDeg(r float64) float64 { return r * (180.0 / math.Pi) }
func degToRad(d float64) float64 { return d * (math.Pi / 180.0) }

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

type intCoder struct {
	width int
}

func (c intCoder) Size() int { return c.width }
func (c intCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	raw, err := readExact(r, c.width)
	if err != nil {
		return int64(0), err
	}
	ord := FieldOrder(ctx, field)
	var u uint64
	switch c.width {
	case 1:
		u = uint64(raw[0])
	case 2:
		u = uint64(ord.Uint16(raw))
	case 4:
		u = uint64(ord.Uint32(raw))
	}
	if field != nil && field.Unsigned {
		return int64(u), nil
	}
	switch c.width {
	case 1:
		return int64(int8(u)), nil
	case 2:
		return int64(int16(u)), nil
	default:
		return int64(int32(u)), nil
	}
}
func (c intCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	n, ok := toInt(value)
	if !ok {
		n = 0
	}
	ord := FieldOrder(ctx, field)
	switch c.width {
	case 1:
		buf.WriteByte(byte(n))
	case 2:
		var b [2]byte
		ord.PutUint16(b[:], uint16(n))
		buf.Write(b[:])
	case 4:
		var b [4]byte
		ord.PutUint32(b[:], uint32(n))
		buf.Write(b[:])
	}
	return nil
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

type enumCoder struct{ width int }

func (c enumCoder) Size() int { return c.width }
func (c enumCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	raw, err := readExact(r, c.width)
	if err != nil {
		return EnumValue{}, err
	}
	ord := FieldOrder(ctx, field)
	var v int64
	switch c.width {
	case 1:
		v = int64(int8(raw[0]))
	case 2:
		v = int64(int16(ord.Uint16(raw)))
	case 4:
		v = int64(int32(ord.Uint32(raw)))
	}
	ev := EnumValue{Value: v}
	if field != nil && v >= 0 && int(v) < len(field.EnumOptions) {
		ev.ValueName = field.EnumOptions[v]
	}
	return ev, nil
}
func (c enumCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	var v int64
	switch ev := value.(type) {
	case EnumValue:
		v = ev.Value
	default:
		v, _ = toInt(value)
	}
	ord := FieldOrder(ctx, field)
	switch c.width {
	case 1:
		buf.WriteByte(byte(v))
	case 2:
		var b [2]byte
		ord.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	case 4:
		var b [4]byte
		ord.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	}
	return nil
}

type boundsCoder struct {
	width int
	angle bool
}

func (c boundsCoder) Size() int { return c.width * 2 }
func (c boundsCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	ord := FieldOrder(ctx, field)
	lo, err := decodeScalar(r, ord, c.width)
	if err != nil {
		return Bounds{}, err
	}
	hi, err := decodeScalar(r, ord, c.width)
	if err != nil {
		return Bounds{}, err
	}
	if c.angle && ctx.ConvertRadians {
		lo, hi = radToDeg(lo), radToDeg(hi)
	}
	return Bounds{Min: lo, Max: hi}, nil
}
func (c boundsCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	b, _ := value.(Bounds)
	lo, hi := b.Min, b.Max
	if c.angle && ctx.ConvertRadians {
		lo, hi = degToRad(lo), degToRad(hi)
	}
	ord := FieldOrder(ctx, field)
	encodeScalar(buf, ord, c.width, lo)
	encodeScalar(buf, ord, c.width, hi)
	return nil
}

type vectorCoder struct {
	width int
	count int
	angle bool
}

func (c vectorCoder) Size() int { return c.width * c.count }
func (c vectorCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	ord := FieldOrder(ctx, field)
	out := make([]float64, c.count)
	for i := range out {
		v, err := decodeScalar(r, ord, c.width)
		if err != nil {
			return out, err
		}
		if c.angle && ctx.ConvertRadians {
			v = radToDeg(v)
		}
		out[i] = v
	}
	return out, nil
}
func (c vectorCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	vals := toFloatSlice(value)
	ord := FieldOrder(ctx, field)
	for i := 0; i < c.count; i++ {
		var v float64
		if i < len(vals) {
			v = vals[i]
		}
		if c.angle && ctx.ConvertRadians {
			v = degToRad(v)
		}
		encodeScalar(buf, ord, c.width, v)
	}
	return nil
}

func toFloatSlice(value interface{}) []float64 {
	switch vs := value.(type) {
	case []float64:
		return vs
	case []interface{}:
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i], _ = toFloat(v)
		}
		return out
	default:
		return nil
	}
}

func decodeScalar(r *bytes.Reader, ord binary.ByteOrder, width int) (float64, error) {
	raw, err := readExact(r, width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return float64(int8(raw[0])), nil
	case 2:
		return float64(int16(ord.Uint16(raw))), nil
	case 4:
		return float64(math.Float32frombits(ord.Uint32(raw))), nil
	default:
		return 0, fmt.Errorf("codec: unsupported scalar width %d", width)
	}
}

func encodeScalar(buf *bytes.Buffer, ord binary.ByteOrder, width int, v float64) {
	switch width {
	case 1:
		buf.WriteByte(byte(int8(v)))
	case 2:
		var b [2]byte
		ord.PutUint16(b[:], uint16(int16(v)))
		buf.Write(b[:])
	case 4:
		var b [4]byte
		ord.PutUint32(b[:], math.Float32bits(float32(v)))
		buf.Write(b[:])
	}
}

type colorCoder struct {
	width    int // 1 = signed byte channel, 4 = float channel
	hasAlpha bool
}

func (c colorCoder) Size() int {
	n := 3
	if c.hasAlpha {
		n = 4
	}
	return c.width * n
}
func (c colorCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	ord := FieldOrder(ctx, field)
	col := Color{HasAlpha: c.hasAlpha}
	channels := []*float64{&col.R, &col.G, &col.B}
	if c.hasAlpha {
		channels = []*float64{&col.A, &col.R, &col.G, &col.B}
	}
	for _, ch := range channels {
		v, err := decodeScalar(r, ord, c.width)
		if err != nil {
			return col, err
		}
		*ch = v
	}
	return col, nil
}
func (c colorCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	col, _ := value.(Color)
	channels := []float64{col.R, col.G, col.B}
	if c.hasAlpha {
		channels = []float64{col.A, col.R, col.G, col.B}
	}
	ord := FieldOrder(ctx, field)
	for _, v := range channels {
		encodeScalar(buf, ord, c.width, v)
	}
	return nil
}

type tagCoder struct{}

func (tagCoder) Size() int { return 4 }
func (tagCoder) Decode(r *bytes.Reader, ctx Context, field *schema.Field) (interface{}, error) {
	raw, err := readExact(r, 4)
	if err != nil {
		return "", err
	}
	s := string(raw)
	if FieldOrder(ctx, field) == binary.LittleEndian {
		s = reverseString(s)
	}
	return s, nil
}
func (tagCoder) Encode(buf *bytes.Buffer, ctx Context, field *schema.Field, value interface{}) error {
	s, _ := value.(string)
	if FieldOrder(ctx, field) == binary.LittleEndian {
		s = reverseString(s)
	}
	buf.WriteString(padString(s, 4))
	return nil
}
