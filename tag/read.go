// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tag

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/schema"
)

// reader walks one file's bytes with the two cursors the format
// demands: main advances through the resource stream (block bodies,
// string pools, tag paths, data blobs) in document order, while each
// Block's inline content is parsed out of its own fixed-size
// substream drawn from main.
type reader struct {
	ctx  codec.Context
	main *bytes.Reader
}

// Decode reads a whole tag file's bytes into a Tag, resolving its
// header against groups and walking the field set the file's own
// framing (or, for gen1 files, the schema's latest version) selects.
func Decode(data []byte, groups map[string]*schema.TagGroupDef, ctx codec.Context) (*Tag, error) {
	header, err := codec.ReadHeader(data, ctx.BigEndian)
	if err != nil {
		return nil, err
	}
	if !header.Engine.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, string(header.Engine))
	}
	group, ok := groups[header.TagGroup]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGroup, header.TagGroup)
	}
	ctx.Engine = header.Engine

	r := &reader{ctx: ctx, main: bytes.NewReader(data[codec.HeaderSize:])}
	t := &Tag{Header: header, Group: group, Fields: Fields{}, BigEndian: ctx.BigEndian}

	headerKey := "TagBlockHeader_" + group.Name
	t.Fields[headerKey] = blockHeaderFields("tbfd", 0, 0)

	var version, size int
	count := 1
	headerName := "tbfd"
	if header.Engine == codec.EngineBlam {
		latest := latestFieldSet(group.Versions)
		if latest == nil {
			return nil, fmt.Errorf("%w: %s has no latest field set", ErrNoFieldSet, group.Fourcc)
		}
		version, size = latest.Version, latest.Size
	} else {
		bh, err := codec.ReadBlockHeader(r.main, ctx)
		if err != nil {
			return nil, err
		}
		headerName = bh.Name
		version, size = int(bh.Version), int(bh.Size)
		count = int(bh.Count)
	}
	t.Fields[headerKey] = blockHeaderFields(headerName, int64(version), int64(size))

	fs := pickFieldSet(group.Versions, version)
	if fs == nil {
		return nil, fmt.Errorf("%w: %s version %d", ErrNoFieldSet, group.Fourcc, version)
	}

	sub, err := r.substream(count * size)
	if err != nil {
		return nil, err
	}
	for idx := 0; idx < count; idx++ {
		if err := r.decodeFields(sub, fs, t.Fields, idx, size); err != nil {
			return nil, err
		}
		skipToElementEnd(sub, idx, size)
	}
	return t, nil
}

// substream draws the next n bytes of main into an independent
// reader, or fewer when the file ends early.
func (r *reader) substream(n int) (*bytes.Reader, error) {
	if n < 0 {
		n = 0
	}
	if n > r.main.Len() {
		n = r.main.Len()
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r.main, buf); err != nil {
			return nil, err
		}
	}
	return bytes.NewReader(buf), nil
}

func streamPos(r *bytes.Reader) int {
	return int(r.Size()) - r.Len()
}

// skipToElementEnd consumes whatever trailing padding remains inside
// element idx's size slot.
func skipToElementEnd(sub *bytes.Reader, idx, size int) {
	target := (idx + 1) * size
	if pos := streamPos(sub); pos < target {
		sub.Seek(int64(target-pos), io.SeekCurrent)
	}
}

// decodeFields reads one field set's fields in order out of sub,
// recursing through Struct fields inline and drawing Block bodies and
// resource payloads from main.
func (r *reader) decodeFields(sub *bytes.Reader, fs *schema.FieldSet, out Fields, idx, size int) error {
	for _, f := range fs.Fields {
		if err := r.decodeField(sub, f, out, idx, size); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

// unread returns how many declared bytes remain for the current
// element; a field whose inline size exceeds it yields its default
// instead of reading, which is what tolerates short-prefix versions
// in older files.
func unread(sub *bytes.Reader, idx, size int) int {
	return (idx+1)*size - streamPos(sub)
}

func (r *reader) decodeField(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	switch f.Kind {
	case schema.KindExplanation:
		return nil

	case schema.KindPad, schema.KindSkip:
		return r.decodeOpaque(sub, f, out, idx, size, f.PadLength)
	case schema.KindUselessPad:
		n := 0
		if r.ctx.Engine.LegacyPadding() {
			n = f.PadLength
		}
		return r.decodeOpaque(sub, f, out, idx, size, n)
	case schema.KindPtr:
		return r.decodeOpaque(sub, f, out, idx, size, 4)
	case schema.KindVertexBuffer:
		return r.decodeOpaque(sub, f, out, idx, size, 32)

	case schema.KindString:
		return r.decodeFixedString(sub, f, out, idx, size, 32)
	case schema.KindLongString:
		return r.decodeFixedString(sub, f, out, idx, size, 256)
	case schema.KindOldStringId:
		if r.ctx.Engine.LegacyStrings() {
			return r.decodeFixedString(sub, f, out, idx, size, 32)
		}
		return r.decodeStringID(sub, f, out, idx, size)
	case schema.KindStringId:
		return r.decodeStringID(sub, f, out, idx, size)

	case schema.KindTagReference:
		return r.decodeTagReference(sub, f, out, idx, size)
	case schema.KindData:
		return r.decodeData(sub, f, out, idx, size)
	case schema.KindRgbColor:
		return r.decodeRgbColor(sub, f, out, idx, size)
	case schema.KindBlock:
		return r.decodeBlock(sub, f, out, idx, size)
	case schema.KindStruct:
		return r.decodeStruct(sub, f, out, idx, size)

	default:
		return r.decodeLeaf(sub, f, out, idx, size)
	}
}

func (r *reader) decodeLeaf(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	c := codec.CoderFor(f.Kind)
	if c == nil {
		return fmt.Errorf("no coder for kind %q", f.Kind)
	}
	var v interface{}
	if unread(sub, idx, size) < c.Size() {
		v = defaultLeaf(f)
	} else {
		decoded, err := c.Decode(sub, r.ctx, f)
		if err != nil {
			return err
		}
		v = decoded
	}
	if f.Name != "" {
		out[f.Name] = leafToTree(f, v)
	}
	return nil
}

// defaultLeaf builds the zero value a truncated leaf decodes to,
// shaped like the coder's own output so leafToTree handles both.
func defaultLeaf(f *schema.Field) interface{} {
	switch f.Kind {
	case schema.KindCharEnum, schema.KindShortEnum, schema.KindLongEnum:
		return codec.EnumValue{}
	case schema.KindAngleBounds, schema.KindRealBounds, schema.KindShortBounds, schema.KindRealFractionBounds:
		return codec.Bounds{}
	case schema.KindArgbColor, schema.KindRealArgbColor:
		return codec.Color{HasAlpha: true}
	case schema.KindRealRgbColor:
		return codec.Color{}
	case schema.KindTag:
		return ""
	case schema.KindAngle, schema.KindReal, schema.KindRealFraction:
		return float64(0)
	case schema.KindPoint2D, schema.KindRealPoint2D, schema.KindRealVector2D, schema.KindRealEulerAngles2D:
		return make([]float64, 2)
	case schema.KindRealPoint3D, schema.KindRealVector3D, schema.KindRealPlane2D, schema.KindRealEulerAngles3D:
		return make([]float64, 3)
	case schema.KindRectangle2D, schema.KindRealPlane3D, schema.KindRealQuaternion:
		return make([]float64, 4)
	case schema.KindMatrix3x3:
		return make([]float64, 9)
	default:
		return int64(0)
	}
}

// leafToTree converts a coder's typed value into the generic tree
// shape migrators and the JSON dump expect.
func leafToTree(f *schema.Field, v interface{}) interface{} {
	switch tv := v.(type) {
	case codec.EnumValue:
		return Fields{"type": string(f.Kind), "value": tv.Value, "value name": tv.ValueName}
	case codec.Bounds:
		return Fields{"Min": tv.Min, "Max": tv.Max}
	case codec.Color:
		if tv.HasAlpha {
			return Fields{"A": tv.A, "R": tv.R, "G": tv.G, "B": tv.B}
		}
		return Fields{"R": tv.R, "G": tv.G, "B": tv.B}
	default:
		return v
	}
}

func (r *reader) decodeOpaque(sub *bytes.Reader, f *schema.Field, out Fields, idx, size, n int) error {
	if n == 0 {
		return nil
	}
	raw := make([]byte, n)
	if unread(sub, idx, size) >= n {
		if _, err := io.ReadFull(sub, raw); err != nil {
			return err
		}
	}
	if r.ctx.PreservePadding && f.Name != "" {
		out[f.Name] = raw
	}
	return nil
}

func (r *reader) decodeFixedString(sub *bytes.Reader, f *schema.Field, out Fields, idx, size, length int) error {
	out[f.Name] = ""
	if unread(sub, idx, size) < length {
		return nil
	}
	s, raw, err := codec.ReadVariableString(sub, length, r.ctx, 1, false)
	if err != nil {
		return err
	}
	if raw != nil {
		out[f.Name] = raw
	} else {
		out[f.Name] = s
	}
	return nil
}

// decodeStringID reads the modern interned-string shape: an inline
// big-endian (pad, length) pair, then length pooled bytes from the
// resource stream with no terminator.
func (r *reader) decodeStringID(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	out[f.Name] = ""
	out[f.Name+"_pad"] = int64(0)
	if unread(sub, idx, size) < 4 {
		return nil
	}
	var raw [4]byte
	if _, err := io.ReadFull(sub, raw[:]); err != nil {
		return err
	}
	pad := int64(raw[0])<<8 | int64(raw[1])
	strLen := int(raw[2])<<8 | int(raw[3])
	out[f.Name+"_pad"] = pad
	s, rawStr, err := codec.ReadVariableString(r.main, strLen, r.ctx, 0, false)
	if err != nil {
		return err
	}
	if rawStr != nil {
		out[f.Name] = rawStr
	} else {
		out[f.Name] = s
	}
	return nil
}

func (r *reader) decodeTagReference(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	ref := Fields{"group name": nil, "unk1": int64(0), "length": int64(0), "unk2": int64(0), "path": ""}
	out[f.Name] = ref
	if unread(sub, idx, size) < 16 {
		return nil
	}
	raw := make([]byte, 16)
	if _, err := io.ReadFull(sub, raw); err != nil {
		return err
	}
	ord := codec.FieldOrder(r.ctx, f)
	groupRaw := raw[:4]
	if groupRaw[0] == 0xFF && groupRaw[1] == 0xFF && groupRaw[2] == 0xFF && groupRaw[3] == 0xFF {
		ref["group name"] = nil
	} else {
		name := string(groupRaw)
		if ord == binary.LittleEndian {
			name = reverse4(name)
		}
		ref["group name"] = name
	}
	ref["unk1"] = int64(int32(ord.Uint32(raw[4:8])))
	length := int(int32(ord.Uint32(raw[8:12])))
	ref["length"] = int64(length)
	ref["unk2"] = int64(int32(ord.Uint32(raw[12:16])))

	s, rawPath, err := codec.ReadVariableString(r.main, length, r.ctx, 1, true)
	if err != nil {
		return err
	}
	if rawPath != nil {
		ref["path"] = rawPath
	} else {
		ref["path"] = s
	}
	return nil
}

func (r *reader) decodeData(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	blob := Fields{"length": int64(0), "unk1": int64(0), "unk2": int64(0), "unk3": int64(0), "unk4": int64(0), "encoded": []byte{}}
	out[f.Name] = blob
	if unread(sub, idx, size) < 20 {
		return nil
	}
	raw := make([]byte, 20)
	if _, err := io.ReadFull(sub, raw); err != nil {
		return err
	}
	ord := codec.FieldOrder(r.ctx, f)
	length := int(int32(ord.Uint32(raw[0:4])))
	blob["length"] = int64(length)
	blob["unk1"] = int64(int32(ord.Uint32(raw[4:8])))
	blob["unk2"] = int64(int32(ord.Uint32(raw[8:12])))
	blob["unk3"] = int64(int32(ord.Uint32(raw[12:16])))
	blob["unk4"] = int64(int32(ord.Uint32(raw[16:20])))
	if length > 0 {
		payload := make([]byte, length)
		if _, err := io.ReadFull(r.main, payload); err != nil {
			return err
		}
		blob["encoded"] = payload
	}
	return nil
}

// decodeRgbColor reads the byte-channel color stored blue, green,
// red, pad; the pad byte survives as a <name>_pad sidecar so a
// preserving write restores it.
func (r *reader) decodeRgbColor(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	out[f.Name] = Fields{"R": int64(0), "G": int64(0), "B": int64(0)}
	out[f.Name+"_pad"] = int64(0)
	if unread(sub, idx, size) < 4 {
		return nil
	}
	var raw [4]byte
	if _, err := io.ReadFull(sub, raw[:]); err != nil {
		return err
	}
	b, g, rr, pad := raw[0], raw[1], raw[2], raw[3]
	out[f.Name] = Fields{"R": int64(rr), "G": int64(g), "B": int64(b)}
	out[f.Name+"_pad"] = int64(pad)
	return nil
}

func (r *reader) decodeBlock(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	out["TagBlock_"+f.Name] = Fields{"unk1": int64(0), "unk2": int64(0)}
	out["TagBlockHeader_"+f.Name] = blockHeaderFields("tbfd", 0, 0)
	out[f.Name] = []Fields{}
	if unread(sub, idx, size) < 12 {
		return nil
	}
	raw := make([]byte, 12)
	if _, err := io.ReadFull(sub, raw); err != nil {
		return err
	}
	ord := codec.FieldOrder(r.ctx, f)
	count := int(int32(ord.Uint32(raw[0:4])))
	out["TagBlock_"+f.Name] = Fields{
		"unk1": int64(int32(ord.Uint32(raw[4:8]))),
		"unk2": int64(int32(ord.Uint32(raw[8:12]))),
	}
	if count <= 0 {
		return nil
	}

	var bh codec.BlockHeader
	if r.ctx.Engine == codec.EngineBlam {
		latest := latestFieldSet(f.Layouts)
		if latest == nil {
			return fmt.Errorf("%w: block %q has no latest field set", ErrNoFieldSet, f.Name)
		}
		bh = codec.BlockHeader{Name: "tbfd", Version: int32(latest.Version), Count: int32(count), Size: int32(latest.Size)}
	} else {
		read, err := codec.ReadBlockHeader(r.main, r.ctx)
		if err != nil {
			return err
		}
		bh = read
	}
	out["TagBlockHeader_"+f.Name] = blockHeaderFields(bh.Name, int64(bh.Version), int64(bh.Size))

	elemFS := pickFieldSet(f.Layouts, int(bh.Version))
	if elemFS == nil {
		return fmt.Errorf("%w: block %q version %d", ErrNoFieldSet, f.Name, bh.Version)
	}

	elemSize := int(bh.Size)
	blockSub, err := r.substream(count * elemSize)
	if err != nil {
		return err
	}
	elems := make([]Fields, 0, count)
	for i := 0; i < count; i++ {
		elem := Fields{}
		if err := r.decodeFields(blockSub, elemFS, elem, i, elemSize); err != nil {
			return err
		}
		skipToElementEnd(blockSub, i, elemSize)
		elems = append(elems, elem)
	}
	out[f.Name] = elems
	return nil
}

// decodeStruct consumes an inline named sub-record. On all gen2
// revisions the record is announced by a framing header in the
// resource stream; a header whose fourcc does not match the schema's
// is pushed back and the whole struct is skipped, landing its inline
// bytes in the element's trailing padding.
func (r *reader) decodeStruct(sub *bytes.Reader, f *schema.Field, out Fields, idx, size int) error {
	version := 0
	if r.ctx.Engine != codec.EngineBlam {
		headerSize := codec.BlockHeaderSize
		if r.ctx.Engine.LegacyHeader() {
			headerSize = codec.LegacyBlockHeaderSize
		}
		if r.main.Len() < headerSize {
			return nil
		}
		bh, err := codec.ReadBlockHeader(r.main, r.ctx)
		if err != nil {
			return err
		}
		if bh.Name != f.StructTag && f.StructTag != "cmtb" {
			r.main.Seek(int64(-headerSize), io.SeekCurrent)
			return nil
		}
		out["StructHeader_"+f.StructID] = blockHeaderFields(bh.Name, int64(bh.Version), int64(bh.Size))
		version = int(bh.Version)
	}
	fs := pickFieldSet(f.Layouts, version)
	if fs == nil {
		return fmt.Errorf("%w: struct %q version %d", ErrNoFieldSet, f.Name, version)
	}
	return r.decodeFields(sub, fs, out, idx, size)
}

func reverse4(s string) string {
	b := []byte(s)
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	return string(b)
}
