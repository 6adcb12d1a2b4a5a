// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package migrate

import (
	"encoding/binary"

	"github.com/tagforge/tagcodec/tag"
)

// migrateBitmap stamps every legacy bitmap element with the version-2
// layout's Skip/Ptr placeholder fields. The real content of those
// placeholders is unknown; the synthesized runs are zero bytes,
// except Skip_2, which is 0xFF-filled, and Skip_3, which holds the
// processed pixel data's byte length. They round-trip the structural
// shape without claiming to reproduce whatever runtime value the game
// itself wrote. The length prefix follows the byte order the tag was
// decoded with.
func migrateBitmap(t *tag.Tag) {
	fields := t.Fields
	bitmaps := fieldsSlice(fields, "bitmaps")
	version := headerVersion(fields, "TagBlockHeader_bitmaps")
	if bitmaps == nil || version == -1 {
		return
	}
	if version != 2 {
		dataLength := int64(0)
		if pixelData, ok := fields["processed pixel data"].(tag.Fields); ok {
			if raw, ok := pixelData["encoded"].([]byte); ok {
				dataLength = int64(len(raw))
			}
		}
		for _, bitmap := range bitmaps {
			bitmap["Skip_0"] = zeroBytes(4)
			bitmap["Skip_1"] = zeroBytes(12)
			bitmap["Skip_2"] = fillBytes(12, 0xFF)
			bitmap["Skip_3"] = lengthPrefixBytes(dataLength, t.BigEndian)
			bitmap["Skip_4"] = zeroBytes(4)
			bitmap["Skip_5"] = zeroBytes(20)
			bitmap["Ptr_0"] = zeroBytes(4)
			bitmap["Ptr_1"] = zeroBytes(4)
			bitmap["Ptr_2"] = zeroBytes(4)
			bitmap["Ptr_3"] = zeroBytes(4)
			bitmap["Ptr_4"] = zeroBytes(4)
			bitmap["Ptr_5"] = zeroBytes(4)
			bitmap["Ptr_6"] = zeroBytes(4)
		}
		setHeader(fields, "TagBlockHeader_bitmaps", "tbfd", 2, 140)
	}
}

func zeroBytes(n int) []byte { return make([]byte, n) }

func fillBytes(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// lengthPrefixBytes packs an int32 length in the given byte order
// followed by eight pad bytes, the "i8x" layout the version-2
// placeholder uses.
func lengthPrefixBytes(length int64, bigEndian bool) []byte {
	out := make([]byte, 12)
	if bigEndian {
		binary.BigEndian.PutUint32(out[:4], uint32(length))
	} else {
		binary.LittleEndian.PutUint32(out[:4], uint32(length))
	}
	return out
}
