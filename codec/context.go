// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package codec implements the binary reader/writer for tag files
// across both engine generations: file and block framing, string
// interning, and the per-FieldKind value coders the schema package's
// resolved definitions drive.
package codec

// EngineTag identifies the five on-disk header signatures a tag file
// can open with. Each selects a distinct combination of legacy header
// shape, legacy string table and legacy struct-padding behavior.
type EngineTag string

// Recognized engine tag signatures, oldest to newest.
const (
	EngineBlam EngineTag = "blam"
	EngineAmbl EngineTag = "ambl"
	EngineLAMB EngineTag = "LAMB"
	EngineMLAB EngineTag = "MLAB"
	EngineBLM  EngineTag = "BLM!"
)

// LegacyHeader reports whether tag uses the 12-byte legacy block
// header shape instead of the 16-byte modern one.
func (tag EngineTag) LegacyHeader() bool {
	return tag == EngineBlam || tag == EngineAmbl
}

// LegacyStrings reports whether tag stores OldStringId fields as
// fixed 32-byte inline strings instead of the modern (pad, length)
// descriptor plus pooled resource bytes.
func (tag EngineTag) LegacyStrings() bool {
	return tag == EngineBlam || tag == EngineAmbl || tag == EngineLAMB
}

// LegacyPadding reports whether tag still encodes UselessPad runs;
// the newest revision drops them from the layout entirely.
func (tag EngineTag) LegacyPadding() bool {
	return tag == EngineBlam || tag == EngineAmbl || tag == EngineLAMB || tag == EngineMLAB
}

// Valid reports whether tag is one of the five recognized engine tag
// signatures.
func (tag EngineTag) Valid() bool {
	switch tag {
	case EngineBlam, EngineAmbl, EngineLAMB, EngineMLAB, EngineBLM:
		return true
	default:
		return false
	}
}

// Context carries the explicit, per-call decode/encode configuration:
// every Decode/Encode call takes one Context instead of consulting
// package state, so concurrent calls never race on shared flags.
type Context struct {
	// Engine selects the header/framing variant in force for this
	// call. Decode fills this in from the file header; Encode takes
	// it from the caller.
	Engine EngineTag

	// BigEndian selects big-endian field byte order (the consoles'
	// native order) instead of little-endian (the PC tool order).
	BigEndian bool

	// PreserveVersion keeps each Block/Struct header's version field
	// as read, instead of stamping the schema's current version.
	PreserveVersion bool

	// PreserveStrings keeps raw string bytes byte-for-byte; with it
	// off, strings are decoded to text and that text is written back
	// in the same field shape.
	PreserveStrings bool

	// PreservePadding keeps the raw bytes of padding runs and of
	// unknown header words; with it off they are written back as
	// zeros, in the same layout.
	PreservePadding bool

	// ConvertRadians exposes Angle fields in degrees on decode and
	// converts them back to the radians stored on disk on encode.
	ConvertRadians bool

	// GenerateChecksum recomputes the CRC32 checksum stored in the
	// 64-byte file header on encode instead of carrying the source
	// value.
	GenerateChecksum bool
}

// DefaultContext returns a Context with conservative defaults:
// little-endian, nothing preserved, checksums regenerated. The driver
// CLI does not start from it; its flags default every preserve option
// and angle conversion to on.
func DefaultContext() Context {
	return Context{
		BigEndian:        false,
		GenerateChecksum: true,
	}
}
