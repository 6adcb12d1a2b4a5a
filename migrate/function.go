// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import (
	"bytes"
	"encoding/binary"

	"github.com/tagforge/tagcodec/tag"
)

// A legacy (version-0) function curve record always packed down to
// the same shape regardless of which tag group embedded it: a
// function type byte, a flag byte, four RGB colors (each written
// blue, green, red, pad, the on-disk RgbColor byte order), and a
// trailing run of float32 control-point values.
type legacyFunction struct {
	Type   int8
	Flags  int8
	Colors [4]legacyColor
	Values []float32
}

type legacyColor struct {
	R, G, B, Pad uint8
}

// mappHeaderVersion and friends are the (name, version, size) triple
// every migrated function/mapping struct header is stamped with.
const (
	mappHeaderName    = "MAPP"
	mappHeaderVersion = int64(1)
	mappHeaderSize    = int64(12)
)

// upgradeFunctionsBlock walks every element of the tag block named
// blockKey and, for each element whose structHeaderKey still reports
// version 0, repacks that element's legacy function record into the
// current byte-block form. This is the shape shared by every
// "functions" tag block in the simple device-like groups.
func upgradeFunctionsBlock(fields tag.Fields, blockKey, structHeaderKey string) {
	block, ok := fields[blockKey].([]tag.Fields)
	if !ok {
		return
	}
	for _, elem := range block {
		upgradeFunction(elem, structHeaderKey)
	}
}

// upgradeFunction repacks the legacy function record stored under
// fields[structHeaderKey]'s matching value key (the header key with
// the "StructHeader_" prefix stripped) into the current byte-block
// shape, guarded on the header still reporting version 0.
func upgradeFunction(fields tag.Fields, structHeaderKey string) bool {
	if !isLegacyHeader(fields, structHeaderKey) {
		return false
	}
	key := functionValueKey(structHeaderKey)
	lf := extractLegacyFunction(fields, key)
	packAndReplace(fields, key, packLegacyFunction(lf))
	setHeader(fields, structHeaderKey, mappHeaderName, mappHeaderVersion, mappHeaderSize)
	return true
}

// upgradeEffectFunction fabricates a function record for a curve that
// a version-1 schema introduced but the version-0 format never held:
// a fixed header (type, 0, flag, 0, four zero RGBA quads, and
// four float32 values with only the first populated) written in the
// same byte-block form upgradeFunction produces.
func upgradeEffectFunction(fields tag.Fields, key string, functionType, flagValue int8, minValue float64) {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(functionType))
	buf.WriteByte(0)
	buf.WriteByte(byte(flagValue))
	buf.WriteByte(0)
	for i := 0; i < 4; i++ {
		buf.Write([]byte{0, 0, 0, 0})
	}
	binary.Write(buf, binary.LittleEndian, float32(minValue))
	binary.Write(buf, binary.LittleEndian, float32(0))
	binary.Write(buf, binary.LittleEndian, float32(0))
	binary.Write(buf, binary.LittleEndian, float32(0))
	packAndReplace(fields, key, buf.Bytes())
}

// isLegacyHeader reports whether fields[key] is a header value whose
// "version" entry is still 0, the guard every migrator uses to decide
// whether a function record still needs repacking.
func isLegacyHeader(fields tag.Fields, key string) bool {
	h, ok := fields[key].(tag.Fields)
	if !ok {
		return false
	}
	return asInt(h["version"]) == 0
}

// functionValueKey derives the decoded field's key from its header
// key, stripping the "StructHeader_" prefix the tag decoder
// attaches to every struct header sidecar.
func functionValueKey(structHeaderKey string) string {
	const prefix = "StructHeader_"
	if len(structHeaderKey) > len(prefix) && structHeaderKey[:len(prefix)] == prefix {
		return structHeaderKey[len(prefix):]
	}
	return structHeaderKey
}

// extractLegacyFunction reads a version-0 function record out of
// fields[key], tolerating any individual member being absent by
// falling back to the kind's zero value.
func extractLegacyFunction(fields tag.Fields, key string) legacyFunction {
	src, _ := fields[key].(tag.Fields)
	lf := legacyFunction{
		Type:  int8(asInt(src["type"])),
		Flags: int8(asInt(src["flags"])),
	}
	names := [4]string{"color a", "color b", "color c", "color d"}
	for i, name := range names {
		c, _ := src[name].(tag.Fields)
		lf.Colors[i] = legacyColor{
			R: uint8(asInt(c["R"])),
			G: uint8(asInt(c["G"])),
			B: uint8(asInt(c["B"])),
		}
	}
	values, _ := src["values"].([]tag.Fields)
	lf.Values = make([]float32, len(values))
	for i, v := range values {
		lf.Values[i] = float32(asFloat(v["Value"]))
	}
	return lf
}

// packLegacyFunction serializes lf in version-0 field order: type
// byte, flags byte, the four colors each written blue/green/red/pad,
// then every control-point value as a little-endian float32.
func packLegacyFunction(lf legacyFunction) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(lf.Type))
	buf.WriteByte(byte(lf.Flags))
	for _, c := range lf.Colors {
		buf.Write([]byte{c.B, c.G, c.R, c.Pad})
	}
	for _, v := range lf.Values {
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// packAndReplace stores raw as a byte-array block under fields[key]
// (one {"Value": int8} element per byte, bytes above 127 wrapping
// negative) along with the TagBlock_/TagBlockHeader_ sidecars a block
// field always carries.
func packAndReplace(fields tag.Fields, key string, raw []byte) {
	block := make([]tag.Fields, len(raw))
	for i, b := range raw {
		block[i] = tag.Fields{"Value": int64(int8(b))}
	}
	fields[key] = block
	fields["TagBlock_"+key] = tag.Fields{"unk1": int64(0), "unk2": int64(0)}
	fields["TagBlockHeader_"+key] = tag.Fields{"name": "tbfd", "version": int64(0), "size": int64(1)}
}

func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
