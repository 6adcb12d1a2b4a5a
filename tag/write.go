// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tag

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/schema"
)

// blockWriter accumulates one block's bytes in the two regions the
// format separates: the fixed count*size inline area, and the tail
// the resource payloads and nested block bodies are appended to in
// encounter order. Buffering the tail and splicing it after the
// padded inline area yields the same layout a seek-to-end writer
// would produce, without any seeking.
type blockWriter struct {
	inline bytes.Buffer
	tail   bytes.Buffer
}

// padInline zero-fills the inline area up to n bytes.
func (b *blockWriter) padInline(n int) {
	if b.inline.Len() < n {
		b.inline.Write(make([]byte, n-b.inline.Len()))
	}
}

// bytes assembles the block's final layout: optional framing header,
// the padded inline area, then the tail.
func (b *blockWriter) bytes(header []byte) []byte {
	out := make([]byte, 0, len(header)+b.inline.Len()+b.tail.Len())
	out = append(out, header...)
	out = append(out, b.inline.Bytes()...)
	out = append(out, b.tail.Bytes()...)
	return out
}

type writer struct {
	ctx codec.Context
}

// Encode serializes t back into a whole tag file, re-deriving the
// header checksum when ctx.GenerateChecksum is set. With every
// preserve flag on, the output of Encode(Decode(f)) is f itself,
// byte for byte.
func Encode(t *Tag, ctx codec.Context) ([]byte, error) {
	if t == nil || t.Group == nil {
		return nil, fmt.Errorf("%w: nil tag", ErrNoFieldSet)
	}
	ctx.Engine = t.Header.Engine
	if !ctx.Engine.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, string(t.Header.Engine))
	}
	w := &writer{ctx: ctx}

	headerKey := "TagBlockHeader_" + t.Group.Name
	fs, bh, err := w.selectFieldSet(t.Fields, headerKey, t.Group.Versions, "tbfd")
	if err != nil {
		return nil, fmt.Errorf("tag: %s: %w", t.Group.Fourcc, err)
	}
	t.Fields[headerKey] = blockHeaderFields(bh.Name, int64(bh.Version), int64(bh.Size))

	size := int(bh.Size)
	bw := &blockWriter{}
	if err := w.encodeElement(bw, fs, t.Fields, 0, size); err != nil {
		return nil, fmt.Errorf("tag: %s: %w", t.Group.Fourcc, err)
	}

	var framing []byte
	if ctx.Engine != codec.EngineBlam {
		bh.Count = 1
		framing = codec.WriteBlockHeader(bh, ctx)
	}
	body := bw.bytes(framing)

	header := t.Header
	if ctx.GenerateChecksum {
		header.Checksum = codec.Checksum(body)
	}
	headerBytes, err := codec.WriteHeader(header, ctx.BigEndian)
	if err != nil {
		return nil, err
	}
	return append(headerBytes, body...), nil
}

// selectFieldSet resolves which versioned field set to encode with:
// the sidecar header's version when one is present and versions are
// being preserved, the latest otherwise. The returned BlockHeader
// carries the (name, version, size) triple the framing will use.
func (w *writer) selectFieldSet(fields Fields, sidecarKey string, sets []*schema.FieldSet, defaultName string) (*schema.FieldSet, codec.BlockHeader, error) {
	sidecar, ok := asFields(fields[sidecarKey])
	if !ok || !w.ctx.PreserveVersion {
		fs := latestFieldSet(sets)
		if fs == nil {
			return nil, codec.BlockHeader{}, fmt.Errorf("%w: no latest field set", ErrNoFieldSet)
		}
		return fs, codec.BlockHeader{Name: defaultName, Version: int32(fs.Version), Size: int32(fs.Size)}, nil
	}
	version := int(asInt(sidecar["version"]))
	fs := pickFieldSet(sets, version)
	if fs == nil {
		return nil, codec.BlockHeader{}, fmt.Errorf("%w: version %d", ErrNoFieldSet, version)
	}
	name, _ := sidecar["name"].(string)
	if name == "" {
		name = defaultName
	}
	return fs, codec.BlockHeader{Name: name, Version: int32(version), Size: int32(asInt(sidecar["size"]))}, nil
}

// encodeElement writes one element's fields then zero-fills its size
// slot.
func (w *writer) encodeElement(bw *blockWriter, fs *schema.FieldSet, elem Fields, idx, size int) error {
	if err := w.encodeFieldList(bw, fs, elem, idx, size); err != nil {
		return err
	}
	bw.padInline((idx + 1) * size)
	return nil
}

// encodeFieldList writes a field set's fields in order, dropping any
// field that would overrun the declared element size the way writing
// an older, shorter version demands.
func (w *writer) encodeFieldList(bw *blockWriter, fs *schema.FieldSet, elem Fields, idx, size int) error {
	for _, f := range fs.Fields {
		if size > 0 && bw.inline.Len() >= (idx+1)*size {
			return nil
		}
		inlineLen, tailLen := bw.inline.Len(), bw.tail.Len()
		if err := w.encodeField(bw, f, elem, idx, size); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if size > 0 && bw.inline.Len() > (idx+1)*size {
			bw.inline.Truncate(inlineLen)
			bw.tail.Truncate(tailLen)
		}
	}
	return nil
}

func (w *writer) encodeField(bw *blockWriter, f *schema.Field, elem Fields, idx, size int) error {
	switch f.Kind {
	case schema.KindExplanation:
		return nil

	case schema.KindPad, schema.KindSkip:
		w.encodeOpaque(bw, elem[f.Name], f.PadLength)
		return nil
	case schema.KindUselessPad:
		if w.ctx.Engine.LegacyPadding() {
			w.encodeOpaque(bw, elem[f.Name], f.PadLength)
		}
		return nil
	case schema.KindPtr:
		w.encodeOpaque(bw, elem[f.Name], 4)
		return nil
	case schema.KindVertexBuffer:
		w.encodeOpaque(bw, elem[f.Name], 32)
		return nil

	case schema.KindString:
		s, raw := w.stringValue(elem[f.Name])
		codec.WriteVariableString(&bw.inline, s, raw, 32, w.ctx, 1, false)
		return nil
	case schema.KindLongString:
		s, raw := w.stringValue(elem[f.Name])
		codec.WriteVariableString(&bw.inline, s, raw, 256, w.ctx, 1, false)
		return nil
	case schema.KindOldStringId:
		if w.ctx.Engine.LegacyStrings() {
			s, raw := w.stringValue(elem[f.Name])
			codec.WriteVariableString(&bw.inline, s, raw, 32, w.ctx, 1, false)
			return nil
		}
		return w.encodeStringID(bw, f, elem)
	case schema.KindStringId:
		return w.encodeStringID(bw, f, elem)

	case schema.KindTagReference:
		return w.encodeTagReference(bw, f, elem)
	case schema.KindData:
		return w.encodeData(bw, f, elem)
	case schema.KindRgbColor:
		return w.encodeRgbColor(bw, f, elem)
	case schema.KindBlock:
		return w.encodeBlock(bw, f, elem)
	case schema.KindStruct:
		return w.encodeStruct(bw, f, elem, idx, size)

	default:
		return w.encodeLeaf(bw, f, elem[f.Name])
	}
}

func (w *writer) encodeLeaf(bw *blockWriter, f *schema.Field, value interface{}) error {
	c := codec.CoderFor(f.Kind)
	if c == nil {
		return fmt.Errorf("no coder for kind %q", f.Kind)
	}
	return c.Encode(&bw.inline, w.ctx, f, treeToLeaf(f, value))
}

// treeToLeaf converts a generic tree value back into the typed form
// the field's coder encodes.
func treeToLeaf(f *schema.Field, value interface{}) interface{} {
	switch f.Kind {
	case schema.KindCharEnum, schema.KindShortEnum, schema.KindLongEnum:
		if m, ok := asFields(value); ok {
			return codec.EnumValue{Value: asInt(m["value"])}
		}
		return codec.EnumValue{Value: asInt(value)}
	case schema.KindAngleBounds, schema.KindRealBounds, schema.KindShortBounds, schema.KindRealFractionBounds:
		m, _ := asFields(value)
		return codec.Bounds{Min: asFloat(m["Min"]), Max: asFloat(m["Max"])}
	case schema.KindArgbColor, schema.KindRealArgbColor:
		m, _ := asFields(value)
		return codec.Color{HasAlpha: true, A: asFloat(m["A"]), R: asFloat(m["R"]), G: asFloat(m["G"]), B: asFloat(m["B"])}
	case schema.KindRealRgbColor:
		m, _ := asFields(value)
		return codec.Color{R: asFloat(m["R"]), G: asFloat(m["G"]), B: asFloat(m["B"])}
	default:
		return value
	}
}

// stringValue resolves a tree string value to either a decoded string
// or, when strings are preserved, the raw byte run (tolerating the
// base64 form a JSON round-trip leaves behind).
func (w *writer) stringValue(value interface{}) (string, []byte) {
	if w.ctx.PreserveStrings {
		if raw := asBytes(value); raw != nil {
			return "", raw
		}
	}
	return asString(value)
}

// asBytes normalizes a preserved byte run: raw []byte from a live
// decode, or the base64 string a JSON round-trip turns it into.
func asBytes(v interface{}) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		if d, err := base64.StdEncoding.DecodeString(b); err == nil {
			return d
		}
		return nil
	default:
		return nil
	}
}

func (w *writer) encodeOpaque(bw *blockWriter, value interface{}, n int) {
	if n == 0 {
		return
	}
	if w.ctx.PreservePadding {
		if raw := asBytes(value); raw != nil {
			out := make([]byte, n)
			copy(out, raw)
			bw.inline.Write(out)
			return
		}
	}
	bw.inline.Write(make([]byte, n))
}

// encodeStringID writes the modern interned-string shape: a
// big-endian (pad, length) pair inline, the string bytes appended to
// the tail without a terminator.
func (w *writer) encodeStringID(bw *blockWriter, f *schema.Field, elem Fields) error {
	s, raw := w.stringValue(elem[f.Name])
	length := len(s)
	if raw != nil {
		length = len(raw)
	}
	pad := asInt(elem[f.Name+"_pad"])
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(pad))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(length))
	bw.inline.Write(hdr[:])
	codec.WriteVariableString(&bw.tail, s, raw, length, w.ctx, 0, false)
	return nil
}

func (w *writer) encodeTagReference(bw *blockWriter, f *schema.Field, elem Fields) error {
	ord := codec.FieldOrder(w.ctx, f)
	ref, ok := asFields(elem[f.Name])
	if !ok {
		writeRefHeader(&bw.inline, ord, nil, 0, 0, 0)
		return nil
	}
	groupName, _ := ref["group name"].(string)
	var unk1, unk2 int64
	if w.ctx.PreservePadding {
		unk1, unk2 = asInt(ref["unk1"]), asInt(ref["unk2"])
	}
	path, rawPath := w.stringValue(ref["path"])
	length := len(path)
	if rawPath != nil {
		// the preserved run includes the trailing terminator
		length = len(rawPath) - 1
	}
	var group []byte
	if groupName != "" {
		name := groupName
		if ord == binary.LittleEndian {
			name = reverse4(padTo4(name))
		}
		group = []byte(padTo4(name))
	}
	writeRefHeader(&bw.inline, ord, group, unk1, int64(length), unk2)
	codec.WriteVariableString(&bw.tail, path, rawPath, length, w.ctx, 1, true)
	return nil
}

func writeRefHeader(buf *bytes.Buffer, ord binary.ByteOrder, group []byte, unk1, length, unk2 int64) {
	if group == nil {
		var b [4]byte
		ord.PutUint32(b[:], 0xFFFFFFFF)
		buf.Write(b[:])
	} else {
		buf.Write(group)
	}
	var b [4]byte
	ord.PutUint32(b[:], uint32(unk1))
	buf.Write(b[:])
	ord.PutUint32(b[:], uint32(length))
	buf.Write(b[:])
	ord.PutUint32(b[:], uint32(unk2))
	buf.Write(b[:])
}

func padTo4(s string) string {
	for len(s) < 4 {
		s += "\x00"
	}
	return s[:4]
}

func (w *writer) encodeData(bw *blockWriter, f *schema.Field, elem Fields) error {
	ord := codec.FieldOrder(w.ctx, f)
	blob, ok := asFields(elem[f.Name])
	var payload []byte
	var unk1, unk2, unk3, unk4 int64
	if ok {
		payload = asBytes(blob["encoded"])
		if w.ctx.PreservePadding {
			unk1, unk2, unk3, unk4 = asInt(blob["unk1"]), asInt(blob["unk2"]), asInt(blob["unk3"]), asInt(blob["unk4"])
		}
	}
	var b [4]byte
	for _, v := range []int64{int64(len(payload)), unk1, unk2, unk3, unk4} {
		ord.PutUint32(b[:], uint32(v))
		bw.inline.Write(b[:])
	}
	bw.tail.Write(payload)
	return nil
}

func (w *writer) encodeRgbColor(bw *blockWriter, f *schema.Field, elem Fields) error {
	col, _ := asFields(elem[f.Name])
	var pad int64
	if w.ctx.PreservePadding {
		pad = asInt(elem[f.Name+"_pad"])
	}
	bw.inline.WriteByte(byte(asInt(col["B"])))
	bw.inline.WriteByte(byte(asInt(col["G"])))
	bw.inline.WriteByte(byte(asInt(col["R"])))
	bw.inline.WriteByte(byte(pad))
	return nil
}

func (w *writer) encodeBlock(bw *blockWriter, f *schema.Field, elem Fields) error {
	ord := codec.FieldOrder(w.ctx, f)
	elems, _ := asBlock(elem[f.Name])
	count := len(elems)

	var unk1, unk2 int64
	if padding, ok := asFields(elem["TagBlock_"+f.Name]); ok && w.ctx.PreservePadding {
		unk1, unk2 = asInt(padding["unk1"]), asInt(padding["unk2"])
	}
	var b [4]byte
	for _, v := range []int64{int64(count), unk1, unk2} {
		ord.PutUint32(b[:], uint32(v))
		bw.inline.Write(b[:])
	}
	if count == 0 {
		return nil
	}

	fs, bh, err := w.selectFieldSet(elem, "TagBlockHeader_"+f.Name, f.Layouts, "tbfd")
	if err != nil {
		return err
	}
	elemSize := int(bh.Size)

	child := &blockWriter{}
	for i, e := range elems {
		if err := w.encodeElement(child, fs, e, i, elemSize); err != nil {
			return err
		}
	}

	var framing []byte
	if w.ctx.Engine != codec.EngineBlam {
		bh.Count = int32(count)
		framing = codec.WriteBlockHeader(bh, w.ctx)
	}
	bw.tail.Write(child.bytes(framing))
	return nil
}

// encodeStruct writes an inline named sub-record: its framing header
// goes to the enclosing block's tail on gen2 engines, its fields
// continue inline within the current element slot.
func (w *writer) encodeStruct(bw *blockWriter, f *schema.Field, elem Fields, idx, size int) error {
	fs, bh, err := w.selectFieldSet(elem, "StructHeader_"+f.StructID, f.Layouts, f.StructTag)
	if err != nil {
		return err
	}
	if w.ctx.Engine != codec.EngineBlam {
		bh.Count = 1
		bw.tail.Write(codec.WriteBlockHeader(bh, w.ctx))
	}
	return w.encodeFieldList(bw, fs, elem, idx, size)
}
