// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

// FieldKind identifies the wire shape of one leaf or composite field.
// The names are the canonical kind tags the definition files, the
// migration engine and the codec all key off of.
type FieldKind string

// Recognized field kinds.
const (
	KindAngle        FieldKind = "Angle"
	KindReal         FieldKind = "Real"
	KindRealFraction FieldKind = "RealFraction"
	KindCharInteger  FieldKind = "CharInteger"
	KindShortInteger FieldKind = "ShortInteger"
	KindLongInteger  FieldKind = "LongInteger"
	KindCharEnum     FieldKind = "CharEnum"
	KindShortEnum    FieldKind = "ShortEnum"
	KindLongEnum     FieldKind = "LongEnum"
	KindByteFlags    FieldKind = "ByteFlags"
	KindWordFlags    FieldKind = "WordFlags"
	KindLongFlags    FieldKind = "LongFlags"

	KindCharBlockIndex        FieldKind = "CharBlockIndex"
	KindShortBlockIndex       FieldKind = "ShortBlockIndex"
	KindLongBlockIndex        FieldKind = "LongBlockIndex"
	KindCustomShortBlockIndex FieldKind = "CustomShortBlockIndex"
	KindCustomLongBlockIndex  FieldKind = "CustomLongBlockIndex"

	KindAngleBounds        FieldKind = "AngleBounds"
	KindRealBounds         FieldKind = "RealBounds"
	KindShortBounds        FieldKind = "ShortBounds"
	KindRealFractionBounds FieldKind = "RealFractionBounds"

	KindPoint2D           FieldKind = "Point2D"
	KindRectangle2D       FieldKind = "Rectangle2D"
	KindRealPoint2D       FieldKind = "RealPoint2D"
	KindRealPoint3D       FieldKind = "RealPoint3D"
	KindRealVector2D      FieldKind = "RealVector2D"
	KindRealVector3D      FieldKind = "RealVector3D"
	KindRealPlane2D       FieldKind = "RealPlane2D"
	KindRealPlane3D       FieldKind = "RealPlane3D"
	KindRealEulerAngles2D FieldKind = "RealEulerAngles2D"
	KindRealEulerAngles3D FieldKind = "RealEulerAngles3D"
	KindRealQuaternion    FieldKind = "RealQuaternion"
	KindMatrix3x3         FieldKind = "Matrix3x3"

	KindRgbColor      FieldKind = "RgbColor"
	KindArgbColor     FieldKind = "ArgbColor"
	KindRealRgbColor  FieldKind = "RealRgbColor"
	KindRealArgbColor FieldKind = "RealArgbColor"

	KindString      FieldKind = "String"
	KindLongString  FieldKind = "LongString"
	KindStringId    FieldKind = "StringId"
	KindOldStringId FieldKind = "OldStringId"

	KindTag          FieldKind = "Tag"
	KindTagReference FieldKind = "TagReference"

	KindPad          FieldKind = "Pad"
	KindSkip         FieldKind = "Skip"
	KindUselessPad   FieldKind = "UselessPad"
	KindPtr          FieldKind = "Ptr"
	KindVertexBuffer FieldKind = "VertexBuffer"

	KindBlock       FieldKind = "Block"
	KindStruct      FieldKind = "Struct"
	KindData        FieldKind = "Data"
	KindExplanation FieldKind = "Explanation"
)

// padKinds is the set of kinds whose size comes from an explicit
// "length" attribute instead of the fixed size table.
var padKinds = map[FieldKind]bool{
	KindPad:        true,
	KindSkip:       true,
	KindUselessPad: true,
}

// fieldSizes is the fixed per-kind inline byte size table. Resource
// payloads (block bodies, data bytes, pooled strings) are not
// counted; only the inline descriptor is.
var fieldSizes = map[FieldKind]int{
	KindAngle:                 4,
	KindAngleBounds:           8,
	KindArgbColor:             4,
	KindBlock:                 12,
	KindByteFlags:             1,
	KindCharBlockIndex:        1,
	KindCharEnum:              1,
	KindCharInteger:           1,
	KindCustomLongBlockIndex:  4,
	KindCustomShortBlockIndex: 2,
	KindData:                  20,
	KindLongBlockIndex:        4,
	KindLongEnum:              4,
	KindLongFlags:             4,
	KindLongInteger:           4,
	KindLongString:            256,
	KindOldStringId:           32,
	KindPoint2D:               4,
	KindPtr:                   4,
	KindReal:                  4,
	KindRealArgbColor:         16,
	KindRealBounds:            8,
	KindRealEulerAngles2D:     8,
	KindRealEulerAngles3D:     12,
	KindRealFraction:          4,
	KindRealFractionBounds:    8,
	KindRealPlane2D:           12,
	KindRealPlane3D:           16,
	KindRealPoint2D:           8,
	KindRealPoint3D:           12,
	KindRealQuaternion:        16,
	KindRealRgbColor:          12,
	KindRealVector2D:          8,
	KindRealVector3D:          12,
	KindRectangle2D:           8,
	KindRgbColor:              4,
	KindShortBlockIndex:       2,
	KindShortBounds:           4,
	KindShortEnum:             2,
	KindShortInteger:          2,
	KindString:                32,
	KindStringId:              4,
	KindStruct:                0,
	KindTag:                   4,
	KindTagReference:          16,
	KindVertexBuffer:          32,
	KindWordFlags:             2,
	KindMatrix3x3:             36,
	KindExplanation:           0,
	KindUselessPad:            0, // overridden by explicit length, like Pad/Skip
}

// FieldSize returns the fixed inline size of kind, or 0 for Struct
// (whose size is computed from its own field-set) and for pad kinds
// (whose size is schema-declared per field, see Field.PadLength).
func FieldSize(kind FieldKind) int {
	return fieldSizes[kind]
}

// IsPadKind reports whether kind's size comes from an explicit length
// attribute rather than the fixed table.
func IsPadKind(kind FieldKind) bool {
	return padKinds[kind]
}
